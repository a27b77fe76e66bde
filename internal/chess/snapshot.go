package chess

import (
	"fmt"
	"sort"
)

// PieceRecord is one registry entry, captured pieces included.
type PieceRecord struct {
	Handle Handle `json:"handle"`
	Piece
}

// Snapshot is a field-for-field copy of a game: registry, state and history.
// It is what the session layer serializes.
type Snapshot struct {
	Pieces  []PieceRecord `json:"pieces"`
	State   State         `json:"state"`
	History []Move        `json:"history"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{State: g.State(), History: g.History()}
	for _, h := range g.board.Handles() {
		s.Pieces = append(s.Pieces, PieceRecord{Handle: h, Piece: g.board.Piece(h)})
	}
	return s
}

// Restore rebuilds a game from a snapshot. Handles must be exactly 1..n, no
// two live pieces may share a square, and each side needs one live king.
func Restore(s Snapshot) (*Game, error) {
	records := make([]PieceRecord, len(s.Pieces))
	copy(records, s.Pieces)
	sort.Slice(records, func(i, j int) bool { return records[i].Handle < records[j].Handle })

	if len(records) > 255 {
		return nil, fmt.Errorf("%d pieces: %w", len(records), ErrInvalidSnapshot)
	}
	b := NewBoard()
	kings := map[Color]int{}
	for i, r := range records {
		if r.Handle != Handle(i+1) {
			return nil, fmt.Errorf("handle %d out of sequence: %w", r.Handle, ErrInvalidSnapshot)
		}
		if !r.Kind.valid() {
			return nil, fmt.Errorf("handle %d has no kind: %w", r.Handle, ErrInvalidSnapshot)
		}
		if r.Color != White && r.Color != Black {
			return nil, fmt.Errorf("handle %d has color %d: %w", r.Handle, r.Color, ErrInvalidSnapshot)
		}
		b.pieces = append(b.pieces, r.Piece)
		if r.Captured {
			continue
		}
		if !b.IsEmpty(r.Position) {
			return nil, fmt.Errorf("square %s occupied twice: %w", r.Position, ErrInvalidSnapshot)
		}
		b.squares[r.Position.rank][r.Position.file] = r.Handle
		if r.Kind == King {
			kings[r.Color]++
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("need exactly one king per side: %w", ErrInvalidSnapshot)
	}

	if s.State.CurrentPlayer != White && s.State.CurrentPlayer != Black {
		return nil, fmt.Errorf("side to move %d: %w", s.State.CurrentPlayer, ErrInvalidSnapshot)
	}
	if IsKingInCheck(b, s.State.CurrentPlayer.Opposite()) {
		return nil, fmt.Errorf("%s is in check with %s to move: %w",
			s.State.CurrentPlayer.Opposite(), s.State.CurrentPlayer, ErrInvalidSnapshot)
	}

	g := &Game{board: b, state: s.State}
	if s.State.EnPassantTarget != nil {
		ep := *s.State.EnPassantTarget
		g.state.EnPassantTarget = &ep
	}
	g.history = make([]Move, len(s.History))
	copy(g.history, s.History)
	g.evaluate()
	return g, nil
}
