package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/justinabrahms/chess3d/internal/chess"
)

const (
	lightSquare = color.BgHiWhite
	darkSquare  = color.BgGreen
	whitePiece  = color.FgHiBlue
	blackPiece  = color.FgBlack
)

// renderBoard draws b with rank 8 at the top. Plain output marks pieces by
// FEN letter and empty squares with a dot.
func renderBoard(w io.Writer, b *chess.Board, plain bool) {
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(w, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			pos, _ := chess.NewPosition(file, rank)
			fmt.Fprint(w, square(b, pos, plain))
		}
		fmt.Fprintln(w)
	}
	if plain {
		fmt.Fprintln(w, "  abcdefgh")
	} else {
		fmt.Fprintln(w, "   a  b  c  d  e  f  g  h")
	}
}

func square(b *chess.Board, pos chess.Position, plain bool) string {
	p, ok := b.PieceAt(pos)
	if plain {
		if !ok {
			return "."
		}
		return string(p.Kind.FENChar(p.Color))
	}

	text := "   "
	if ok {
		text = " " + string(p.Kind.Letter()) + " "
	}
	attrs := []color.Attribute{darkSquare}
	if pos.IsLightSquare() {
		attrs[0] = lightSquare
	}
	if ok {
		fg := whitePiece
		if p.Color == chess.Black {
			fg = blackPiece
		}
		attrs = append(attrs, fg, color.Bold)
	}
	return color.New(attrs...).Sprint(text)
}

// parseMove accepts "e2e4", "e2 e4", "e7e8q" and "e7 e8 q".
func parseMove(line string) (from, to, promo string, ok bool) {
	s := strings.ToLower(strings.Join(strings.Fields(line), ""))
	switch len(s) {
	case 4:
		return s[:2], s[2:4], "", true
	case 5:
		return s[:2], s[2:4], s[4:], true
	}
	return "", "", "", false
}
