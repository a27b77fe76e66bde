package chess

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// names sorts square names so destination sets can be compared regardless of
// generation order.
func names(ps []Position) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Algebraic())
	}
	sort.Strings(out)
	return out
}

func boardWith(pieces map[string]string) *Board {
	b := NewBoard()
	for sq, code := range pieces {
		kind, color, ok := kindFromFEN(code[0])
		if !ok {
			panic("bad piece code " + code)
		}
		b.Spawn(kind, color, MustParse(sq))
	}
	return b
}

func TestPawnDoubleStep(t *testing.T) {
	b := boardWith(map[string]string{"a2": "P"})
	got := names(PseudoLegalDestinations(b, MustParse("a2")))
	if diff := cmp.Diff([]string{"a3", "a4"}, got); diff != "" {
		t.Errorf("open file mismatch (-want +got):\n%s", diff)
	}

	b = boardWith(map[string]string{"a2": "P", "a3": "n"})
	if got := PseudoLegalDestinations(b, MustParse("a2")); len(got) != 0 {
		t.Errorf("Expected blocked pawn to have no moves, got %v", names(got))
	}

	b = boardWith(map[string]string{"a2": "P", "a4": "n"})
	got = names(PseudoLegalDestinations(b, MustParse("a2")))
	if diff := cmp.Diff([]string{"a3"}, got); diff != "" {
		t.Errorf("occupied a4 mismatch (-want +got):\n%s", diff)
	}
}

func TestPawnCaptures(t *testing.T) {
	b := boardWith(map[string]string{"e4": "P", "d5": "p", "f5": "N", "e5": "p"})
	got := names(PseudoLegalDestinations(b, MustParse("e4")))
	if diff := cmp.Diff([]string{"d5"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	b = boardWith(map[string]string{"c7": "p", "b6": "P"})
	got = names(PseudoLegalDestinations(b, MustParse("c7")))
	if diff := cmp.Diff([]string{"b6", "c5", "c6"}, got); diff != "" {
		t.Errorf("black pawn mismatch (-want +got):\n%s", diff)
	}
}

func TestRookBlocking(t *testing.T) {
	b := boardWith(map[string]string{"a1": "R", "a3": "N", "b1": "N"})
	got := names(PseudoLegalDestinations(b, MustParse("a1")))
	if diff := cmp.Diff([]string{"a2"}, got); diff != "" {
		t.Errorf("friendly blocker mismatch (-want +got):\n%s", diff)
	}

	b = boardWith(map[string]string{"a1": "R", "a3": "n", "b1": "N"})
	got = names(PseudoLegalDestinations(b, MustParse("a1")))
	if diff := cmp.Diff([]string{"a2", "a3"}, got); diff != "" {
		t.Errorf("enemy blocker mismatch (-want +got):\n%s", diff)
	}
}

func TestSliderCounts(t *testing.T) {
	tests := []struct {
		code string
		sq   string
		want int
	}{
		{"Q", "d4", 27},
		{"R", "d4", 14},
		{"B", "d4", 13},
		{"B", "a1", 7},
		{"N", "d4", 8},
		{"N", "a1", 2},
		{"K", "e1", 5},
		{"K", "d4", 8},
	}
	for _, tt := range tests {
		t.Run(tt.code+tt.sq, func(t *testing.T) {
			b := boardWith(map[string]string{tt.sq: tt.code})
			if got := len(PseudoLegalDestinations(b, MustParse(tt.sq))); got != tt.want {
				t.Errorf("Expected %d destinations, got %d", tt.want, got)
			}
		})
	}
}

func TestKnightIgnoresBlockersButNotAllies(t *testing.T) {
	b := boardWith(map[string]string{
		"b1": "N", "a2": "P", "b2": "P", "c2": "P", "d2": "P", "a3": "P", "c3": "p",
	})
	got := names(PseudoLegalDestinations(b, MustParse("b1")))
	if diff := cmp.Diff([]string{"c3"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptySquareHasNoDestinations(t *testing.T) {
	if got := PseudoLegalDestinations(NewBoard(), MustParse("e4")); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestIsAttacked(t *testing.T) {
	b := boardWith(map[string]string{"e4": "p", "b7": "B", "h1": "r"})
	tests := []struct {
		sq   string
		by   Color
		want bool
	}{
		{"d3", Black, true},  // pawn diagonal, empty
		{"e3", Black, false}, // pawn push is not an attack
		{"a8", White, true},  // bishop
		{"e4", White, true},  // bishop reaches the pawn
		{"h8", Black, true},  // rook up the file
		{"a1", Black, true},  // rook along the rank
	}
	for _, tt := range tests {
		if got := IsAttacked(b, MustParse(tt.sq), tt.by); got != tt.want {
			t.Errorf("IsAttacked(%s, %s) = %v, want %v", tt.sq, tt.by, got, tt.want)
		}
	}
}
