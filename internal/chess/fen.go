package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// InitialFEN is the FEN string for the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewGameFromFEN sets up a game from a FEN string. The halfmove and fullmove
// fields are optional and default to 0 and 1.
func NewGameFromFEN(fen string) (*Game, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("expected 4 to 6 fields, got %d: %w", len(fields), ErrInvalidFEN)
	}

	g := &Game{board: NewBoard(), state: NewState()}
	if err := parsePlacement(g.board, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		g.state.CurrentPlayer = White
	case "b":
		g.state.CurrentPlayer = Black
	default:
		return nil, fmt.Errorf("side to move %q: %w", fields[1], ErrInvalidFEN)
	}

	castling, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	g.state.Castling = castling

	if fields[3] != "-" {
		ep, ok := ParsePosition(fields[3])
		if !ok || !enPassantPlausible(g.board, ep, g.state.CurrentPlayer) {
			return nil, fmt.Errorf("en passant square %q: %w", fields[3], ErrInvalidFEN)
		}
		g.state.EnPassantTarget = &ep
	}

	if IsKingInCheck(g.board, g.state.CurrentPlayer.Opposite()) {
		return nil, fmt.Errorf("%s is in check with %s to move: %w",
			g.state.CurrentPlayer.Opposite(), g.state.CurrentPlayer, ErrInvalidFEN)
	}

	g.state.HalfmoveClock = 0
	g.state.FullmoveNumber = 1
	if len(fields) > 4 {
		n, err := strconv.ParseUint(fields[4], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("halfmove clock %q: %w", fields[4], ErrInvalidFEN)
		}
		g.state.HalfmoveClock = uint32(n)
	}
	if len(fields) > 5 {
		n, err := strconv.ParseUint(fields[5], 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("fullmove number %q: %w", fields[5], ErrInvalidFEN)
		}
		g.state.FullmoveNumber = uint32(n)
	}
	g.state.MoveCount = (g.state.FullmoveNumber-1)*2 + uint32(g.state.CurrentPlayer)

	g.evaluate()
	return g, nil
}

// enPassantPlausible reports whether ep could follow a double step by the side
// that just moved: ep sits on that side's third rank, it and the start square
// are empty, and the pawn that made the step stands in front of it.
func enPassantPlausible(b *Board, ep Position, toMove Color) bool {
	mover := toMove.Opposite()
	if ep.Rank() != mover.PawnStartRank()+mover.PawnDirection() {
		return false
	}
	start, _ := ep.Offset(0, -mover.PawnDirection())
	landed, _ := ep.Offset(0, mover.PawnDirection())
	if !b.IsEmpty(ep) || !b.IsEmpty(start) {
		return false
	}
	p, ok := b.PieceAt(landed)
	return ok && p.Kind == Pawn && p.Color == mover
}

func parsePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != BoardSize {
		return fmt.Errorf("expected %d ranks, got %d: %w", BoardSize, len(ranks), ErrInvalidFEN)
	}
	kings := map[Color]int{}
	for i, row := range ranks {
		rank := BoardSize - 1 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			kind, color, ok := kindFromFEN(c)
			if !ok {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			pos, ok := NewPosition(file, rank)
			if !ok {
				return fmt.Errorf("rank %d overflows: %w", rank+1, ErrInvalidFEN)
			}
			if kind == Pawn && (rank == 0 || rank == BoardSize-1) {
				return fmt.Errorf("pawn on %s: %w", pos, ErrInvalidFEN)
			}
			h := b.Spawn(kind, color, pos)
			if kind == King {
				kings[color]++
			}
			if !onStartSquare(kind, color, pos) {
				b.pieces[h-1].HasMoved = true
			}
			file++
		}
		if file != BoardSize {
			return fmt.Errorf("rank %d has %d files: %w", rank+1, file, ErrInvalidFEN)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("need exactly one king per side: %w", ErrInvalidFEN)
	}
	return nil
}

func onStartSquare(kind Kind, color Color, pos Position) bool {
	if kind == Pawn {
		return pos.Rank() == color.PawnStartRank()
	}
	if pos.Rank() != color.HomeRank() {
		return false
	}
	switch kind {
	case Rook:
		return pos.File() == 0 || pos.File() == 7
	case Knight:
		return pos.File() == 1 || pos.File() == 6
	case Bishop:
		return pos.File() == 2 || pos.File() == 5
	case Queen:
		return pos.File() == 3
	}
	return pos.File() == 4
}

func parseCastling(field string) (CastlingRights, error) {
	var c CastlingRights
	if field == "-" {
		return c, nil
	}
	for _, r := range field {
		switch r {
		case 'K':
			c.WhiteKingside = true
		case 'Q':
			c.WhiteQueenside = true
		case 'k':
			c.BlackKingside = true
		case 'q':
			c.BlackQueenside = true
		default:
			return c, fmt.Errorf("castling field %q: %w", field, ErrInvalidFEN)
		}
	}
	return c, nil
}

// FEN renders the current position.
func (g *Game) FEN() string {
	var sb strings.Builder
	for rank := BoardSize - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < BoardSize; file++ {
			pos, _ := NewPosition(file, rank)
			p, ok := g.board.PieceAt(pos)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Kind.FENChar(p.Color))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if g.state.CurrentPlayer == Black {
		side = "b"
	}
	ep := "-"
	if g.state.EnPassantTarget != nil {
		ep = g.state.EnPassantTarget.Algebraic()
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, g.state.Castling.FEN(), ep, g.state.HalfmoveClock, g.state.FullmoveNumber)
	return sb.String()
}

// ValidateFEN reports whether fen describes a loadable position.
func ValidateFEN(fen string) error {
	_, err := NewGameFromFEN(fen)
	return err
}
