package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

type CheckStatus uint8

const (
	NoCheck CheckStatus = iota
	Check
	Checkmate
)

func (s CheckStatus) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	}
	return "none"
}

func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CheckStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "none", "":
		*s = NoCheck
	case "check":
		*s = Check
	case "checkmate":
		*s = Checkmate
	default:
		return fmt.Errorf("invalid check status %q", v)
	}
	return nil
}

// Move is the immutable record of a committed move. Captured and Promotion are
// NoKind when absent.
type Move struct {
	From        Position    `json:"from"`
	To          Position    `json:"to"`
	Kind        Kind        `json:"kind"`
	Color       Color       `json:"color"`
	Captured    Kind        `json:"captured,omitempty"`
	Promotion   Kind        `json:"promotion,omitempty"`
	IsCastling  bool        `json:"castling,omitempty"`
	IsEnPassant bool        `json:"enPassant,omitempty"`
	CheckStatus CheckStatus `json:"checkStatus"`
	// Disambiguation is the origin file and/or rank SAN needs when another
	// piece of the same kind could also reach To. Empty otherwise.
	Disambiguation string `json:"disambiguation,omitempty"`
}

func (m Move) IsCapture() bool { return m.Captured != NoKind }

// Notation renders the move in standard algebraic notation.
func (m Move) Notation() string {
	var sb strings.Builder
	switch {
	case m.IsCastling && m.To.File() > m.From.File():
		sb.WriteString("O-O")
	case m.IsCastling:
		sb.WriteString("O-O-O")
	default:
		if m.Kind != Pawn {
			sb.WriteByte(m.Kind.Letter())
			sb.WriteString(m.Disambiguation)
		} else if m.IsCapture() {
			sb.WriteByte(m.From.FileLetter())
		}
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.Algebraic())
		if m.Promotion != NoKind {
			sb.WriteByte('=')
			sb.WriteByte(m.Promotion.Letter())
		}
	}
	switch m.CheckStatus {
	case Check:
		sb.WriteByte('+')
	case Checkmate:
		sb.WriteByte('#')
	}
	return sb.String()
}

// UCI renders the move as coordinate notation, e.g. "e7e8q".
func (m Move) UCI() string {
	s := m.From.Algebraic() + m.To.Algebraic()
	if m.Promotion != NoKind {
		s += string(m.Promotion.Letter() + 'a' - 'A')
	}
	return s
}

func (m Move) String() string { return m.Notation() }

// disambiguation works out the SAN origin qualifier for a piece of kind moving
// from -> to, given every legal move available before it is played.
func disambiguation(b *Board, legal []Candidate, kind Kind, from, to Position) string {
	if kind == Pawn || kind == King {
		return ""
	}
	mover, _ := b.PieceAt(from)
	sameFile, sameRank, rivals := false, false, 0
	for _, c := range legal {
		if c.To != to || c.From == from {
			continue
		}
		p, _ := b.PieceAt(c.From)
		if p.Kind != kind || p.Color != mover.Color {
			continue
		}
		rivals++
		if c.From.File() == from.File() {
			sameFile = true
		}
		if c.From.Rank() == from.Rank() {
			sameRank = true
		}
	}
	switch {
	case rivals == 0:
		return ""
	case !sameFile:
		return string(from.FileLetter())
	case !sameRank:
		return string(byte('1' + from.Rank()))
	}
	return from.Algebraic()
}
