package chess

import "fmt"

// Board is the 8x8 occupancy grid plus the registry of pieces it refers to.
// A square holds at most one handle and a handle sits on at most one square.
type Board struct {
	squares [BoardSize][BoardSize]Handle // [rank][file]
	pieces  []Piece                      // registry, indexed by handle-1
}

// Placement pairs a handle with the square it occupies.
type Placement struct {
	Position Position
	Handle   Handle
}

func NewBoard() *Board {
	return &Board{}
}

// Get returns the handle on pos, or NoHandle and false when the square is empty.
func (b *Board) Get(pos Position) (Handle, bool) {
	pos.mustBeValid()
	h := b.squares[pos.rank][pos.file]
	return h, h != NoHandle
}

func (b *Board) IsEmpty(pos Position) bool {
	_, ok := b.Get(pos)
	return !ok
}

// Set puts h on pos, or clears pos when h is NoHandle. Whatever was on pos is
// taken off the board. Placing a handle that already occupies another square
// panics.
func (b *Board) Set(pos Position, h Handle) {
	pos.mustBeValid()
	if prev := b.squares[pos.rank][pos.file]; prev != NoHandle && prev != h {
		b.piece(prev).Captured = true
	}
	if h != NoHandle {
		p := b.piece(h)
		if !p.Captured && p.Position != pos && b.squares[p.Position.rank][p.Position.file] == h {
			panic(fmt.Sprintf("chess: handle %d already on %s", h, p.Position))
		}
		p.Position = pos
		p.Captured = false
	}
	b.squares[pos.rank][pos.file] = h
}

// Relocate moves whatever stands on from to to and returns the handle that
// previously occupied to. A non-empty result is a capture: that piece is now
// off the board.
func (b *Board) Relocate(from, to Position) Handle {
	from.mustBeValid()
	to.mustBeValid()
	if from == to {
		return NoHandle
	}
	moving := b.squares[from.rank][from.file]
	captured := b.squares[to.rank][to.file]
	if captured != NoHandle {
		b.piece(captured).Captured = true
	}
	b.squares[from.rank][from.file] = NoHandle
	b.squares[to.rank][to.file] = moving
	if moving != NoHandle {
		b.piece(moving).Position = to
	}
	return captured
}

// Spawn registers a new piece and places it on pos.
func (b *Board) Spawn(kind Kind, color Color, pos Position) Handle {
	if !kind.valid() {
		panic(fmt.Sprintf("chess: cannot spawn piece of kind %d", kind))
	}
	if len(b.pieces) >= 255 {
		panic("chess: piece registry full")
	}
	b.pieces = append(b.pieces, Piece{Kind: kind, Color: color, Position: pos, Captured: true})
	h := Handle(len(b.pieces))
	b.Set(pos, h)
	return h
}

// Piece returns a copy of the registered piece. Unknown handles panic.
func (b *Board) Piece(h Handle) Piece {
	return *b.piece(h)
}

func (b *Board) piece(h Handle) *Piece {
	if h == NoHandle || int(h) > len(b.pieces) {
		panic(fmt.Sprintf("chess: unknown piece handle %d", h))
	}
	return &b.pieces[h-1]
}

// PieceAt returns the piece standing on pos.
func (b *Board) PieceAt(pos Position) (Piece, bool) {
	h, ok := b.Get(pos)
	if !ok {
		return Piece{}, false
	}
	return *b.piece(h), true
}

// PiecesOf lists the pieces of color on the board in rank-major order
// (a1, b1, ... h8).
func (b *Board) PiecesOf(color Color) []Placement {
	var out []Placement
	for r := 0; r < BoardSize; r++ {
		for f := 0; f < BoardSize; f++ {
			h := b.squares[r][f]
			if h != NoHandle && b.piece(h).Color == color {
				out = append(out, Placement{Position: Position{file: uint8(f), rank: uint8(r)}, Handle: h})
			}
		}
	}
	return out
}

// AllPieces lists every occupied square in rank-major order.
func (b *Board) AllPieces() []Placement {
	var out []Placement
	for r := 0; r < BoardSize; r++ {
		for f := 0; f < BoardSize; f++ {
			if h := b.squares[r][f]; h != NoHandle {
				out = append(out, Placement{Position: Position{file: uint8(f), rank: uint8(r)}, Handle: h})
			}
		}
	}
	return out
}

// Handles returns every registered handle, captured pieces included.
func (b *Board) Handles() []Handle {
	out := make([]Handle, len(b.pieces))
	for i := range b.pieces {
		out[i] = Handle(i + 1)
	}
	return out
}

// KingPosition finds the king of color.
func (b *Board) KingPosition(color Color) (Position, bool) {
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Kind == King && p.Color == color && !p.Captured {
			return p.Position, true
		}
	}
	return Position{}, false
}

// promote changes the kind of a registered piece in place.
func (b *Board) promote(h Handle, kind Kind) {
	b.piece(h).Kind = kind
}

func (b *Board) markMoved(h Handle, ply uint32) {
	p := b.piece(h)
	p.HasMoved = true
	p.MoveCount++
	p.LastMovedPly = ply
}

// Clear empties the grid and drops the registry.
func (b *Board) Clear() {
	b.squares = [BoardSize][BoardSize]Handle{}
	b.pieces = nil
}

// Clone returns an independent copy used for move simulation.
func (b *Board) Clone() *Board {
	c := &Board{squares: b.squares}
	c.pieces = make([]Piece, len(b.pieces))
	copy(c.pieces, b.pieces)
	return c
}

// SetupStandard clears the board and places the 32 pieces of the initial position.
func (b *Board) SetupStandard() {
	b.Clear()
	back := [BoardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for _, color := range []Color{White, Black} {
		for f := 0; f < BoardSize; f++ {
			home, _ := NewPosition(f, color.HomeRank())
			b.Spawn(back[f], color, home)
			pawn, _ := NewPosition(f, color.PawnStartRank())
			b.Spawn(Pawn, color, pawn)
		}
	}
}
