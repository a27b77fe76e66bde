package chess

import "strings"

// CastlingRights holds the four independent castling permissions.
type CastlingRights struct {
	WhiteKingside  bool `json:"whiteKingside"`
	WhiteQueenside bool `json:"whiteQueenside"`
	BlackKingside  bool `json:"blackKingside"`
	BlackQueenside bool `json:"blackQueenside"`
}

func AllCastlingRights() CastlingRights {
	return CastlingRights{true, true, true, true}
}

func (c CastlingRights) Kingside(color Color) bool {
	if color == White {
		return c.WhiteKingside
	}
	return c.BlackKingside
}

func (c CastlingRights) Queenside(color Color) bool {
	if color == White {
		return c.WhiteQueenside
	}
	return c.BlackQueenside
}

func (c *CastlingRights) revoke(color Color) {
	if color == White {
		c.WhiteKingside, c.WhiteQueenside = false, false
	} else {
		c.BlackKingside, c.BlackQueenside = false, false
	}
}

// revokeRookSquare drops the right tied to a rook's home corner, whether the
// rook moved away or was captured there.
func (c *CastlingRights) revokeRookSquare(sq Position) {
	switch sq.Algebraic() {
	case "h1":
		c.WhiteKingside = false
	case "a1":
		c.WhiteQueenside = false
	case "h8":
		c.BlackKingside = false
	case "a8":
		c.BlackQueenside = false
	}
}

// FEN renders the rights as the FEN castling field.
func (c CastlingRights) FEN() string {
	var sb strings.Builder
	if c.WhiteKingside {
		sb.WriteByte('K')
	}
	if c.WhiteQueenside {
		sb.WriteByte('Q')
	}
	if c.BlackKingside {
		sb.WriteByte('k')
	}
	if c.BlackQueenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// State is the per-game bookkeeping that is not visible on the board. It is
// advanced exactly once per committed move.
type State struct {
	CurrentPlayer   Color          `json:"currentPlayer"`
	MoveCount       uint32         `json:"moveCount"`
	Castling        CastlingRights `json:"castling"`
	EnPassantTarget *Position      `json:"enPassantTarget,omitempty"`
	HalfmoveClock   uint32         `json:"halfmoveClock"`
	FullmoveNumber  uint32         `json:"fullmoveNumber"`
}

func NewState() State {
	return State{
		CurrentPlayer:  White,
		Castling:       AllCastlingRights(),
		FullmoveNumber: 1,
	}
}

// advance records a committed move. moved is the piece as it stood before the
// move; capturedKind is NoKind when nothing was taken.
func (s *State) advance(c Candidate, moved Piece, capturedKind Kind, capturedAt Position) {
	s.EnPassantTarget = nil
	if moved.Kind == Pawn && abs(c.To.Rank()-c.From.Rank()) == 2 {
		skipped, _ := c.From.Offset(0, moved.Color.PawnDirection())
		s.EnPassantTarget = &skipped
	}

	if moved.Kind == King {
		s.Castling.revoke(moved.Color)
	}
	if moved.Kind == Rook {
		s.Castling.revokeRookSquare(c.From)
	}
	if capturedKind == Rook {
		s.Castling.revokeRookSquare(capturedAt)
	}

	if moved.Kind == Pawn || capturedKind != NoKind {
		s.HalfmoveClock = 0
	} else {
		s.HalfmoveClock++
	}
	if moved.Color == Black {
		s.FullmoveNumber++
	}
	s.MoveCount++
	s.CurrentPlayer = moved.Color.Opposite()
}
