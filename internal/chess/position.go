package chess

import (
	"encoding/json"
	"fmt"
)

// BoardSize is the number of files and ranks on the board.
const BoardSize = 8

// Position is a square on the board. Fields are unexported so the only way to
// obtain one is through NewPosition, ParsePosition or Offset, all of which
// reject coordinates outside 0..7.
type Position struct {
	file uint8
	rank uint8
}

// NewPosition returns the square at (file, rank), both zero-based.
func NewPosition(file, rank int) (Position, bool) {
	if file < 0 || file >= BoardSize || rank < 0 || rank >= BoardSize {
		return Position{}, false
	}
	return Position{file: uint8(file), rank: uint8(rank)}, true
}

// ParsePosition parses exactly two characters, file a-h then rank 1-8.
func ParsePosition(s string) (Position, bool) {
	if len(s) != 2 {
		return Position{}, false
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, false
	}
	return Position{file: s[0] - 'a', rank: s[1] - '1'}, true
}

// MustParse is ParsePosition for fixtures and tables; it panics on bad input.
func MustParse(s string) Position {
	p, ok := ParsePosition(s)
	if !ok {
		panic(fmt.Sprintf("chess: invalid square %q", s))
	}
	return p
}

func (p Position) File() int { return int(p.file) }
func (p Position) Rank() int { return int(p.rank) }

// Algebraic returns the square name, e.g. "e4".
func (p Position) Algebraic() string {
	return string([]byte{'a' + p.file, '1' + p.rank})
}

func (p Position) String() string { return p.Algebraic() }

// FileLetter returns the file as a letter a-h.
func (p Position) FileLetter() byte { return 'a' + p.file }

func (p Position) valid() bool {
	return p.file < BoardSize && p.rank < BoardSize
}

func (p Position) mustBeValid() {
	if !p.valid() {
		panic(fmt.Sprintf("chess: position out of range (%d,%d)", p.file, p.rank))
	}
}

// Offset returns the square shifted by the given deltas, or false when the
// result leaves the board.
func (p Position) Offset(df, dr int) (Position, bool) {
	return NewPosition(int(p.file)+df, int(p.rank)+dr)
}

// DirectionTo returns the signum of the file and rank deltas towards other.
func (p Position) DirectionTo(other Position) (int, int) {
	return sign(int(other.file) - int(p.file)), sign(int(other.rank) - int(p.rank))
}

func (p Position) IsDiagonalTo(other Position) bool {
	df, dr := p.deltas(other)
	return df == dr && df > 0
}

func (p Position) IsOrthogonalTo(other Position) bool {
	df, dr := p.deltas(other)
	return (df == 0) != (dr == 0)
}

func (p Position) IsAdjacentTo(other Position) bool {
	df, dr := p.deltas(other)
	return df <= 1 && dr <= 1 && df+dr > 0
}

func (p Position) ManhattanDistance(other Position) int {
	df, dr := p.deltas(other)
	return df + dr
}

// IsLightSquare reports the square colour; a1 is dark.
func (p Position) IsLightSquare() bool {
	return (p.file+p.rank)%2 == 1
}

// Between returns the squares strictly between p and other when they share a
// rank, file or diagonal. Both endpoints are excluded; the result is empty for
// unaligned or adjacent squares.
func (p Position) Between(other Position) []Position {
	if p == other || !(p.IsOrthogonalTo(other) || p.IsDiagonalTo(other)) {
		return nil
	}
	df, dr := p.DirectionTo(other)
	var squares []Position
	for cur, ok := p.Offset(df, dr); ok && cur != other; cur, ok = cur.Offset(df, dr) {
		squares = append(squares, cur)
	}
	return squares
}

func (p Position) deltas(other Position) (int, int) {
	return abs(int(other.file) - int(p.file)), abs(int(other.rank) - int(p.rank))
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Algebraic())
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParsePosition(s)
	if !ok {
		return fmt.Errorf("invalid square %q", s)
	}
	*p = parsed
	return nil
}

// AllPositions returns the 64 squares in rank-major order (a1, b1, ... h8).
func AllPositions() []Position {
	squares := make([]Position, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for f := 0; f < BoardSize; f++ {
			squares = append(squares, Position{file: uint8(f), rank: uint8(r)})
		}
	}
	return squares
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
