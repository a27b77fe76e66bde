package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PawnDirection is the rank delta of a pawn push.
func (c Color) PawnDirection() int {
	if c == White {
		return 1
	}
	return -1
}

// HomeRank is the rank the king and rooks start on.
func (c Color) HomeRank() int {
	if c == White {
		return 0
	}
	return 7
}

func (c Color) PawnStartRank() int {
	if c == White {
		return 1
	}
	return 6
}

func (c Color) PromotionRank() int {
	if c == White {
		return 7
	}
	return 0
}

// ParseColor accepts "white"/"black" and "w"/"b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return White, false
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseColor(s)
	if !ok {
		return fmt.Errorf("invalid color %q", s)
	}
	*c = parsed
	return nil
}

// Kind is a piece type. NoKind is the zero value and marks "none" in optional
// fields such as Move.Promotion.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindInfo = [...]struct {
	name   string
	letter byte
	value  int
}{
	NoKind: {"", 0, 0},
	Pawn:   {"pawn", 'P', 1},
	Knight: {"knight", 'N', 3},
	Bishop: {"bishop", 'B', 3},
	Rook:   {"rook", 'R', 5},
	Queen:  {"queen", 'Q', 9},
	King:   {"king", 'K', 0},
}

// Kinds lists the six piece kinds in ascending order.
var Kinds = []Kind{Pawn, Knight, Bishop, Rook, Queen, King}

func (k Kind) valid() bool { return k > NoKind && k <= King }

func (k Kind) Name() string {
	if int(k) >= len(kindInfo) {
		return "unknown"
	}
	return kindInfo[k].name
}

func (k Kind) String() string { return k.Name() }

// Value is the conventional material value; the king has none.
func (k Kind) Value() int {
	if !k.valid() {
		return 0
	}
	return kindInfo[k].value
}

// Letter is the upper-case SAN letter. Pawns report 'P' even though SAN omits it.
func (k Kind) Letter() byte {
	if !k.valid() {
		return '?'
	}
	return kindInfo[k].letter
}

// FENChar is the letter used in FEN piece placement: upper case for white.
func (k Kind) FENChar(c Color) byte {
	l := k.Letter()
	if c == Black {
		l += 'a' - 'A'
	}
	return l
}

// IsPromotionTarget reports whether a pawn may promote to k.
func (k Kind) IsPromotionTarget() bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

// ParseKind accepts a kind name ("queen") or letter ("q", "Q").
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(s)
	for _, k := range Kinds {
		if s == k.Name() || (len(s) == 1 && s[0] == k.Letter()+'a'-'A') {
			return k, true
		}
	}
	return NoKind, false
}

func kindFromFEN(c byte) (Kind, Color, bool) {
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
		c -= 'a' - 'A'
	}
	for _, k := range Kinds {
		if k.Letter() == c {
			return k, color, true
		}
	}
	return NoKind, White, false
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Name())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*k = NoKind
		return nil
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("invalid piece kind %q", s)
	}
	*k = parsed
	return nil
}

// Handle identifies a piece in a Board's registry. NoHandle marks an empty square.
type Handle uint8

const NoHandle Handle = 0

// Piece is the authoritative state of one piece. It lives in the Board's
// registry and is only ever mutated through Board methods.
type Piece struct {
	Kind      Kind     `json:"kind"`
	Color     Color    `json:"color"`
	Position  Position `json:"position"`
	HasMoved  bool     `json:"hasMoved"`
	MoveCount uint32   `json:"moveCount"`
	// LastMovedPly is meaningful only when HasMoved is set.
	LastMovedPly uint32 `json:"lastMovedPly"`
	Captured     bool   `json:"captured"`
}

func (p Piece) String() string {
	return fmt.Sprintf("%s %s@%s", p.Color, p.Kind, p.Position)
}
