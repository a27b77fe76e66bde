package chess

type offset struct{ df, dr int }

var (
	orthogonal = []offset{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	diagonal   = []offset{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	royal      = append(append([]offset{}, orthogonal...), diagonal...)
	knightJump = []offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// movement describes a non-pawn kind: leapers step once per offset, sliders
// repeat each ray until blocked.
type movement struct {
	leaps []offset
	rays  []offset
}

var movements = map[Kind]movement{
	Knight: {leaps: knightJump},
	King:   {leaps: royal},
	Bishop: {rays: diagonal},
	Rook:   {rays: orthogonal},
	Queen:  {rays: royal},
}

// PseudoLegalDestinations lists the squares the piece on from can reach by its
// movement pattern and current occupancy, without regard to its own king's
// safety. Castling and en passant are not included here; see Game.
func PseudoLegalDestinations(b *Board, from Position) []Position {
	p, ok := b.PieceAt(from)
	if !ok {
		return nil
	}
	if p.Kind == Pawn {
		return pawnDestinations(b, from, p.Color)
	}

	mv := movements[p.Kind]
	var out []Position
	for _, o := range mv.leaps {
		to, ok := from.Offset(o.df, o.dr)
		if !ok {
			continue
		}
		if q, occupied := b.PieceAt(to); occupied && q.Color == p.Color {
			continue
		}
		out = append(out, to)
	}
	for _, o := range mv.rays {
		for to, ok := from.Offset(o.df, o.dr); ok; to, ok = to.Offset(o.df, o.dr) {
			q, occupied := b.PieceAt(to)
			if occupied {
				if q.Color != p.Color {
					out = append(out, to)
				}
				break
			}
			out = append(out, to)
		}
	}
	return out
}

func pawnDestinations(b *Board, from Position, color Color) []Position {
	var out []Position
	dir := color.PawnDirection()
	if one, ok := from.Offset(0, dir); ok && b.IsEmpty(one) {
		out = append(out, one)
		if from.Rank() == color.PawnStartRank() {
			if two, ok := from.Offset(0, 2*dir); ok && b.IsEmpty(two) {
				out = append(out, two)
			}
		}
	}
	for _, df := range []int{-1, 1} {
		to, ok := from.Offset(df, dir)
		if !ok {
			continue
		}
		if q, occupied := b.PieceAt(to); occupied && q.Color != color {
			out = append(out, to)
		}
	}
	return out
}

// IsAttacked reports whether any piece of color by attacks sq. Unlike
// PseudoLegalDestinations, pawns attack their diagonals whether or not they
// are occupied, which is what castling transit checks need.
func IsAttacked(b *Board, sq Position, by Color) bool {
	// Pawns of color by attack sq from one rank behind it.
	for _, df := range []int{-1, 1} {
		from, ok := sq.Offset(df, -by.PawnDirection())
		if !ok {
			continue
		}
		if q, occupied := b.PieceAt(from); occupied && q.Color == by && q.Kind == Pawn {
			return true
		}
	}
	for _, kind := range []Kind{Knight, King} {
		for _, o := range movements[kind].leaps {
			from, ok := sq.Offset(o.df, o.dr)
			if !ok {
				continue
			}
			if q, occupied := b.PieceAt(from); occupied && q.Color == by && q.Kind == kind {
				return true
			}
		}
	}
	for _, o := range royal {
		straight := o.df == 0 || o.dr == 0
		for from, ok := sq.Offset(o.df, o.dr); ok; from, ok = from.Offset(o.df, o.dr) {
			q, occupied := b.PieceAt(from)
			if !occupied {
				continue
			}
			if q.Color == by && (q.Kind == Queen || (straight && q.Kind == Rook) || (!straight && q.Kind == Bishop)) {
				return true
			}
			break
		}
	}
	return false
}

// lineBlocked reports whether to lies on the mover's line of travel from from
// but an intervening square is occupied. It distinguishes ErrPathBlocked from
// a plain ErrIllegalMove.
func lineBlocked(b *Board, p Piece, from, to Position) bool {
	switch p.Kind {
	case Pawn:
		dir := p.Color.PawnDirection()
		two, ok := from.Offset(0, 2*dir)
		if !ok || two != to || from.Rank() != p.Color.PawnStartRank() {
			return false
		}
		one, _ := from.Offset(0, dir)
		return !b.IsEmpty(one)
	case Rook:
		if !from.IsOrthogonalTo(to) {
			return false
		}
	case Bishop:
		if !from.IsDiagonalTo(to) {
			return false
		}
	case Queen:
		if !from.IsOrthogonalTo(to) && !from.IsDiagonalTo(to) {
			return false
		}
	default:
		return false
	}
	for _, sq := range from.Between(to) {
		if !b.IsEmpty(sq) {
			return true
		}
	}
	return false
}
