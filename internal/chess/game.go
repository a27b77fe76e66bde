package chess

// Game owns one board, its state and its move history. Instances share
// nothing, so separate games may be driven from separate goroutines; a single
// Game is not safe for concurrent use.
type Game struct {
	board      *Board
	state      State
	history    []Move
	status     GameStatus
	drawReason DrawReason
}

// MoveOutcome is what a committed move hands to collaborators that animate,
// broadcast or persist it.
type MoveOutcome struct {
	Move Move `json:"move"`
	// Captured is the taken piece as it stood before capture, nil if none.
	Captured       *Piece     `json:"captured,omitempty"`
	CapturedHandle Handle     `json:"capturedHandle,omitempty"`
	CapturedAt     *Position  `json:"capturedAt,omitempty"`
	RookFrom       *Position  `json:"rookFrom,omitempty"`
	RookTo         *Position  `json:"rookTo,omitempty"`
	Status         GameStatus `json:"status"`
	DrawReason     DrawReason `json:"drawReason,omitempty"`
}

// NewGame returns a game set up in the standard initial position.
func NewGame() *Game {
	g := &Game{board: NewBoard()}
	g.Reset()
	return g
}

// Reset clears the board, history and state and sets up a new game.
func (g *Game) Reset() {
	g.board.SetupStandard()
	g.state = NewState()
	g.history = nil
	g.evaluate()
}

// Board returns a copy of the current board.
func (g *Game) Board() *Board { return g.board.Clone() }

func (g *Game) State() State {
	s := g.state
	if s.EnPassantTarget != nil {
		ep := *s.EnPassantTarget
		s.EnPassantTarget = &ep
	}
	return s
}

func (g *Game) Turn() Color { return g.state.CurrentPlayer }

// History returns the committed moves in order.
func (g *Game) History() []Move {
	out := make([]Move, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Game) Status() GameStatus     { return g.status }
func (g *Game) DrawReason() DrawReason { return g.drawReason }
func (g *Game) IsOver() bool           { return g.status != StatusActive }

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool {
	return IsKingInCheck(g.board, g.state.CurrentPlayer)
}

// LegalMoves lists every legal move for the side to move, castling and en
// passant included.
func (g *Game) LegalMoves() []Candidate {
	if g.IsOver() {
		return nil
	}
	return legalMoves(g.board, &g.state, g.state.CurrentPlayer)
}

// Select returns the legal destinations of the piece on pos, which must
// belong to the side to move.
func (g *Game) Select(pos Position) ([]Position, error) {
	if g.IsOver() {
		return nil, ErrGameOver
	}
	p, ok := g.board.PieceAt(pos)
	if !ok {
		return nil, ErrNoPieceAtSource
	}
	if p.Color != g.state.CurrentPlayer {
		return nil, ErrWrongPlayerPiece
	}
	var out []Position
	for _, c := range pseudoCandidates(g.board, &g.state, pos) {
		if q, occupied := g.board.PieceAt(c.To); occupied && q.Color == p.Color {
			continue
		}
		if isSafe(g.board, c, p.Color) {
			out = append(out, c.To)
		}
	}
	return out, nil
}

// ValidateMove runs the legality checks for the side to move without
// committing anything.
func (g *Game) ValidateMove(from, to Position) error {
	if g.IsOver() {
		return ErrGameOver
	}
	_, err := validate(g.board, &g.state, from, to, g.state.CurrentPlayer)
	return err
}

// MoveAlgebraic parses square names and an optional promotion ("q", "queen",
// or empty) and plays the move.
func (g *Game) MoveAlgebraic(from, to, promotion string) (MoveOutcome, error) {
	f, ok1 := ParsePosition(from)
	t, ok2 := ParsePosition(to)
	if !ok1 || !ok2 {
		return MoveOutcome{}, ErrInvalidPosition
	}
	promo := NoKind
	if promotion != "" {
		k, ok := ParseKind(promotion)
		if !ok {
			return MoveOutcome{}, ErrInvalidPiece
		}
		promo = k
	}
	return g.Move(f, t, promo)
}

// Move validates and commits a move for the side to move. A pawn reaching the
// last rank promotes to promo, or to a queen when promo is NoKind.
func (g *Game) Move(from, to Position, promo Kind) (MoveOutcome, error) {
	if g.IsOver() {
		return MoveOutcome{}, ErrGameOver
	}
	color := g.state.CurrentPlayer
	cand, err := validate(g.board, &g.state, from, to, color)
	if err != nil {
		return MoveOutcome{}, err
	}

	h, _ := g.board.Get(from)
	moved := g.board.Piece(h)
	promoting := moved.Kind == Pawn && to.Rank() == color.PromotionRank()
	switch {
	case promoting && promo == NoKind:
		promo = Queen
	case promoting && !promo.IsPromotionTarget():
		return MoveOutcome{}, ErrInvalidPiece
	case !promoting && promo != NoKind:
		return MoveOutcome{}, ErrInvalidPiece
	}

	var dis string
	if moved.Kind != Pawn && moved.Kind != King {
		dis = disambiguation(g.board, legalMoves(g.board, &g.state, color), moved.Kind, from, to)
	}

	ply := g.state.MoveCount + 1
	ef := applyCandidate(g.board, cand)
	g.board.markMoved(h, ply)
	if cand.Castling {
		if rook, ok := g.board.Get(ef.rookTo); ok {
			g.board.markMoved(rook, ply)
		}
	}
	if promoting {
		g.board.promote(h, promo)
	}

	out := MoveOutcome{}
	capturedKind := NoKind
	if ef.captured != NoHandle {
		victim := g.board.Piece(ef.captured)
		capturedKind = victim.Kind
		out.Captured = &victim
		out.CapturedHandle = ef.captured
		at := ef.capturedAt
		out.CapturedAt = &at
	}
	if cand.Castling {
		rf, rt := ef.rookFrom, ef.rookTo
		out.RookFrom, out.RookTo = &rf, &rt
	}

	g.state.advance(cand, moved, capturedKind, ef.capturedAt)

	opponent := color.Opposite()
	check := NoCheck
	if IsKingInCheck(g.board, opponent) {
		check = Check
		if !hasLegalMove(g.board, &g.state, opponent) {
			check = Checkmate
		}
	}

	m := Move{
		From:           from,
		To:             to,
		Kind:           moved.Kind,
		Color:          color,
		Captured:       capturedKind,
		IsCastling:     cand.Castling,
		IsEnPassant:    cand.EnPassant,
		CheckStatus:    check,
		Disambiguation: dis,
	}
	if promoting {
		m.Promotion = promo
	}
	g.history = append(g.history, m)
	g.evaluate()

	out.Move = m
	out.Status = g.status
	out.DrawReason = g.drawReason
	return out, nil
}

// evaluate recomputes the game status for the side to move.
func (g *Game) evaluate() {
	g.status, g.drawReason = StatusActive, ""
	c := g.state.CurrentPlayer
	if !hasLegalMove(g.board, &g.state, c) {
		if IsKingInCheck(g.board, c) {
			g.status = winner(c.Opposite())
		} else {
			g.status, g.drawReason = StatusDraw, DrawStalemate
		}
		return
	}
	switch {
	case g.state.HalfmoveClock >= 100:
		g.status, g.drawReason = StatusDraw, DrawFiftyMoveRule
	case InsufficientMaterial(g.board):
		g.status, g.drawReason = StatusDraw, DrawInsufficientMaterial
	}
}

func winner(c Color) GameStatus {
	if c == White {
		return StatusWhiteWon
	}
	return StatusBlackWon
}

// InsufficientMaterial reports positions where neither side can mate: bare
// kings, a single minor piece, or only bishops all on one square colour.
func InsufficientMaterial(b *Board) bool {
	minors, bishops := 0, 0
	lightBishop, darkBishop := false, false
	for _, pl := range b.AllPieces() {
		p := b.Piece(pl.Handle)
		switch p.Kind {
		case King:
		case Knight:
			minors++
		case Bishop:
			minors++
			bishops++
			if pl.Position.IsLightSquare() {
				lightBishop = true
			} else {
				darkBishop = true
			}
		default:
			return false
		}
	}
	if minors <= 1 {
		return true
	}
	return minors == bishops && !(lightBishop && darkBishop)
}

// Material sums the value of the pieces each side still has on the board.
func (g *Game) Material() MaterialCount {
	var mc MaterialCount
	for _, pl := range g.board.AllPieces() {
		p := g.board.Piece(pl.Handle)
		if p.Color == White {
			mc.White += p.Kind.Value()
		} else {
			mc.Black += p.Kind.Value()
		}
	}
	return mc
}

// MaterialBalance is white material minus black material.
func (g *Game) MaterialBalance() int {
	mc := g.Material()
	return mc.White - mc.Black
}
