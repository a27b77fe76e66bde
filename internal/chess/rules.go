package chess

// Candidate is a (from, to) pair together with the special-move flags needed
// to apply it to a board.
type Candidate struct {
	From      Position `json:"from"`
	To        Position `json:"to"`
	Castling  bool     `json:"castling,omitempty"`
	EnPassant bool     `json:"enPassant,omitempty"`
}

// effects records what applying a candidate did besides moving the piece.
type effects struct {
	captured   Handle
	capturedAt Position
	rookFrom   Position
	rookTo     Position
}

// IsValidMove checks a move on a bare board: no castling rights or en passant
// target are known, so only ordinary moves can be valid. The first failing
// check is returned.
func IsValidMove(b *Board, from, to Position, mover Color) error {
	_, err := validate(b, nil, from, to, mover)
	return err
}

// IsKingInCheck reports whether any opposing piece can reach the king of
// color. A board without that king is never in check.
func IsKingInCheck(b *Board, color Color) bool {
	king, ok := b.KingPosition(color)
	if !ok {
		return false
	}
	for _, pl := range b.PiecesOf(color.Opposite()) {
		for _, to := range PseudoLegalDestinations(b, pl.Position) {
			if to == king {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports check with no legal reply.
func IsCheckmate(b *Board, color Color) bool {
	return IsKingInCheck(b, color) && !hasLegalMove(b, nil, color)
}

// IsStalemate reports no legal move while not in check.
func IsStalemate(b *Board, color Color) bool {
	return !IsKingInCheck(b, color) && !hasLegalMove(b, nil, color)
}

// LegalMoves lists every legal ordinary move for color on a bare board.
func LegalMoves(b *Board, color Color) []Candidate {
	return legalMoves(b, nil, color)
}

func validate(b *Board, st *State, from, to Position, mover Color) (Candidate, error) {
	if !from.valid() || !to.valid() {
		return Candidate{}, ErrInvalidPosition
	}
	if from == to {
		return Candidate{}, ErrSamePosition
	}
	p, ok := b.PieceAt(from)
	if !ok {
		return Candidate{}, ErrNoPieceAtSource
	}
	if p.Color != mover {
		return Candidate{}, ErrWrongPlayerPiece
	}
	if q, occupied := b.PieceAt(to); occupied && q.Color == mover {
		return Candidate{}, ErrOwnPieceBlocking
	}

	var cand Candidate
	found := false
	for _, c := range pseudoCandidates(b, st, from) {
		if c.To == to {
			cand, found = c, true
			break
		}
	}
	if !found {
		if lineBlocked(b, p, from, to) {
			return Candidate{}, ErrPathBlocked
		}
		return Candidate{}, ErrIllegalMove
	}
	if !isSafe(b, cand, mover) {
		return Candidate{}, ErrKingInCheck
	}
	return cand, nil
}

// pseudoCandidates extends PseudoLegalDestinations with castling and en
// passant when a game state is available.
func pseudoCandidates(b *Board, st *State, from Position) []Candidate {
	var out []Candidate
	for _, to := range PseudoLegalDestinations(b, from) {
		out = append(out, Candidate{From: from, To: to})
	}
	if st == nil {
		return out
	}
	p, _ := b.PieceAt(from)
	switch p.Kind {
	case Pawn:
		if c, ok := enPassantCandidate(b, st, from, p.Color); ok {
			out = append(out, c)
		}
	case King:
		out = append(out, castlingCandidates(b, st, from, p.Color)...)
	}
	return out
}

func enPassantCandidate(b *Board, st *State, from Position, color Color) (Candidate, bool) {
	if st.EnPassantTarget == nil {
		return Candidate{}, false
	}
	target := *st.EnPassantTarget
	if target.Rank()-from.Rank() != color.PawnDirection() || abs(target.File()-from.File()) != 1 {
		return Candidate{}, false
	}
	if !b.IsEmpty(target) {
		return Candidate{}, false
	}
	victimSq, _ := NewPosition(target.File(), from.Rank())
	victim, ok := b.PieceAt(victimSq)
	if !ok || victim.Kind != Pawn || victim.Color == color {
		return Candidate{}, false
	}
	return Candidate{From: from, To: target, EnPassant: true}, true
}

func castlingCandidates(b *Board, st *State, from Position, color Color) []Candidate {
	rank := color.HomeRank()
	if from.Rank() != rank || from.File() != 4 {
		return nil
	}
	var out []Candidate
	for _, side := range []struct {
		allowed  bool
		rookFile int
		kingTo   int
	}{
		{st.Castling.Kingside(color), 7, 6},
		{st.Castling.Queenside(color), 0, 2},
	} {
		if !side.allowed {
			continue
		}
		rookSq, _ := NewPosition(side.rookFile, rank)
		rook, ok := b.PieceAt(rookSq)
		if !ok || rook.Kind != Rook || rook.Color != color {
			continue
		}
		clear := true
		for _, sq := range from.Between(rookSq) {
			if !b.IsEmpty(sq) {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		to, _ := NewPosition(side.kingTo, rank)
		out = append(out, Candidate{From: from, To: to, Castling: true})
	}
	return out
}

// isSafe reports whether applying c leaves mover's king out of check. For
// castling the king must also not start in or pass through an attacked square.
func isSafe(b *Board, c Candidate, mover Color) bool {
	if c.Castling {
		if IsAttacked(b, c.From, mover.Opposite()) {
			return false
		}
		for _, sq := range c.From.Between(c.To) {
			if IsAttacked(b, sq, mover.Opposite()) {
				return false
			}
		}
	}
	scratch := b.Clone()
	applyCandidate(scratch, c)
	return !IsKingInCheck(scratch, mover)
}

func applyCandidate(b *Board, c Candidate) effects {
	var e effects
	if c.EnPassant {
		victim, _ := NewPosition(c.To.File(), c.From.Rank())
		e.captured, _ = b.Get(victim)
		e.capturedAt = victim
		b.Set(victim, NoHandle)
	}
	if c.Castling {
		rank := c.From.Rank()
		if c.To.File() > c.From.File() {
			e.rookFrom, _ = NewPosition(7, rank)
			e.rookTo, _ = NewPosition(5, rank)
		} else {
			e.rookFrom, _ = NewPosition(0, rank)
			e.rookTo, _ = NewPosition(3, rank)
		}
		b.Relocate(e.rookFrom, e.rookTo)
	}
	if h := b.Relocate(c.From, c.To); h != NoHandle {
		e.captured = h
		e.capturedAt = c.To
	}
	return e
}

func legalMoves(b *Board, st *State, color Color) []Candidate {
	var out []Candidate
	for _, pl := range b.PiecesOf(color) {
		for _, c := range pseudoCandidates(b, st, pl.Position) {
			if q, occupied := b.PieceAt(c.To); occupied && q.Color == color {
				continue
			}
			if isSafe(b, c, color) {
				out = append(out, c)
			}
		}
	}
	return out
}

func hasLegalMove(b *Board, st *State, color Color) bool {
	for _, pl := range b.PiecesOf(color) {
		for _, c := range pseudoCandidates(b, st, pl.Position) {
			if isSafe(b, c, color) {
				return true
			}
		}
	}
	return false
}
