package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chess3d/internal/chess"
)

func TestRenderBoardPlain(t *testing.T) {
	var buf bytes.Buffer
	renderBoard(&buf, chess.NewGame().Board(), true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "8 rnbqkbnr", lines[0])
	assert.Equal(t, "4 ........", lines[4])
	assert.Equal(t, "1 RNBQKBNR", lines[7])
	assert.Equal(t, "  abcdefgh", lines[8])
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in              string
		from, to, promo string
		ok              bool
	}{
		{"e2e4", "e2", "e4", "", true},
		{"e2 e4", "e2", "e4", "", true},
		{"E7E8Q", "e7", "e8", "q", true},
		{"e7 e8 n", "e7", "e8", "n", true},
		{"e2", "", "", "", false},
		{"e2-e4-e5", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			from, to, promo, ok := parseMove(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
			assert.Equal(t, tt.promo, promo)
		})
	}
}

func TestPlayScholarsMate(t *testing.T) {
	in := strings.NewReader("e2e4\ne7e5\nf1c4\nb8c6\ne1e3\nd1h5\ng8f6\nh5f7\n")
	var out bytes.Buffer

	game := chess.NewGame()
	require.NoError(t, play(game, in, &out, true))

	text := out.String()
	assert.Contains(t, text, "Bc4")
	assert.Contains(t, text, "illegal_move:")
	assert.Contains(t, text, "Qxf7#")
	assert.True(t, strings.HasSuffix(text, "1-0 white wins\n"), text)
	assert.Equal(t, chess.StatusWhiteWon, game.Status())
}

func TestPlayStopsAtEndOfInput(t *testing.T) {
	var out bytes.Buffer
	game := chess.NewGame()
	require.NoError(t, play(game, strings.NewReader("d2d4\nfen\n"), &out, true))

	assert.Contains(t, out.String(), "rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 1")
	assert.Len(t, game.History(), 1)
}

func TestPlayStalemateFromFEN(t *testing.T) {
	game, err := chess.NewGameFromFEN("k7/8/1K6/8/8/8/8/2Q5 w - - 0 1")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, play(game, strings.NewReader("c1c7\n"), &out, true))
	assert.True(t, strings.HasSuffix(out.String(), "1/2-1/2 draw by stalemate\n"), out.String())
}
