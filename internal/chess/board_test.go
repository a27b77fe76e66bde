package chess

import (
	"math/rand"
	"testing"
)

func TestSpawnAndGet(t *testing.T) {
	b := NewBoard()
	e4 := MustParse("e4")
	h := b.Spawn(Knight, Black, e4)

	got, ok := b.Get(e4)
	if !ok || got != h {
		t.Fatalf("Get(e4) = %d, %v; want %d", got, ok, h)
	}
	p := b.Piece(h)
	if p.Kind != Knight || p.Color != Black || p.Position != e4 || p.Captured {
		t.Errorf("Unexpected piece state %+v", p)
	}
	if !b.IsEmpty(MustParse("e5")) {
		t.Error("Expected e5 to be empty")
	}
}

func TestRelocateReturnsCapture(t *testing.T) {
	b := NewBoard()
	rook := b.Spawn(Rook, White, MustParse("a1"))
	pawn := b.Spawn(Pawn, Black, MustParse("a7"))

	if got := b.Relocate(MustParse("a1"), MustParse("a5")); got != NoHandle {
		t.Errorf("Expected no capture, got handle %d", got)
	}
	if got := b.Relocate(MustParse("a5"), MustParse("a7")); got != pawn {
		t.Errorf("Expected capture of handle %d, got %d", pawn, got)
	}
	if !b.Piece(pawn).Captured {
		t.Error("Expected captured pawn to be marked off the board")
	}
	if h, _ := b.Get(MustParse("a7")); h != rook {
		t.Errorf("Expected rook on a7, got handle %d", h)
	}
	if !b.IsEmpty(MustParse("a5")) {
		t.Error("Expected a5 to be cleared")
	}
	if b.Piece(rook).Position != MustParse("a7") {
		t.Errorf("Expected rook position a7, got %s", b.Piece(rook).Position)
	}
}

func TestRelocateKeepsOccupancyInvariant(t *testing.T) {
	b := NewBoard()
	b.SetupStandard()
	rng := rand.New(rand.NewSource(7))
	all := AllPositions()

	for i := 0; i < 500; i++ {
		from := all[rng.Intn(len(all))]
		to := all[rng.Intn(len(all))]
		b.Relocate(from, to)

		seen := map[Handle]Position{}
		for _, pl := range b.AllPieces() {
			if prev, dup := seen[pl.Handle]; dup {
				t.Fatalf("step %d: handle %d on both %s and %s", i, pl.Handle, prev, pl.Position)
			}
			seen[pl.Handle] = pl.Position
			if p := b.Piece(pl.Handle); p.Position != pl.Position || p.Captured {
				t.Fatalf("step %d: registry says %+v but grid says %s", i, p, pl.Position)
			}
		}
		for _, h := range b.Handles() {
			if _, onBoard := seen[h]; onBoard == b.Piece(h).Captured {
				t.Fatalf("step %d: handle %d captured flag disagrees with grid", i, h)
			}
		}
	}
}

func TestSetupStandard(t *testing.T) {
	b := NewBoard()
	b.SetupStandard()
	if got := len(b.PiecesOf(White)); got != 16 {
		t.Errorf("Expected 16 white pieces, got %d", got)
	}
	if got := len(b.PiecesOf(Black)); got != 16 {
		t.Errorf("Expected 16 black pieces, got %d", got)
	}
	if p, _ := b.PieceAt(MustParse("d1")); p.Kind != Queen || p.Color != White {
		t.Errorf("Expected white queen on d1, got %+v", p)
	}
	if pos, ok := b.KingPosition(Black); !ok || pos != MustParse("e8") {
		t.Errorf("Expected black king on e8, got %v", pos)
	}
}

func TestPiecesOfIsRankMajor(t *testing.T) {
	b := NewBoard()
	b.SetupStandard()
	list := b.PiecesOf(White)
	if list[0].Position != MustParse("a1") || list[7].Position != MustParse("h1") || list[8].Position != MustParse("a2") {
		t.Errorf("Unexpected order: %v %v %v", list[0].Position, list[7].Position, list[8].Position)
	}
	again := b.PiecesOf(White)
	for i := range list {
		if list[i] != again[i] {
			t.Fatalf("Enumeration not stable at index %d", i)
		}
	}
}

func TestSetRejectsHandleOnTwoSquares(t *testing.T) {
	b := NewBoard()
	h := b.Spawn(Bishop, White, MustParse("c1"))
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when placing a handle on a second square")
		}
	}()
	b.Set(MustParse("f4"), h)
}

func TestOutOfRangeAccessPanics(t *testing.T) {
	b := NewBoard()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for out-of-range position")
		}
	}()
	b.Get(Position{file: 8, rank: 0})
}

func TestUnknownHandlePanics(t *testing.T) {
	b := NewBoard()
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown handle")
		}
	}()
	b.Piece(Handle(3))
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewBoard()
	b.SetupStandard()
	c := b.Clone()
	c.Relocate(MustParse("e2"), MustParse("e4"))
	if b.IsEmpty(MustParse("e2")) {
		t.Error("Relocating on a clone changed the original board")
	}
	h, _ := b.Get(MustParse("e2"))
	if b.Piece(h).Position != MustParse("e2") {
		t.Error("Clone shares registry with the original")
	}
}

func TestClear(t *testing.T) {
	b := NewBoard()
	b.SetupStandard()
	b.Clear()
	if len(b.AllPieces()) != 0 || len(b.Handles()) != 0 {
		t.Error("Expected cleared board to be empty")
	}
}
