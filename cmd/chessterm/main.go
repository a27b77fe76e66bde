package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/justinabrahms/chess3d/internal/chess"
	"github.com/justinabrahms/chess3d/internal/spectate"
)

func main() {
	fen := flag.String("fen", "", "start from this FEN instead of the initial position")
	noColor := flag.Bool("no-color", false, "plain board output")
	server := flag.String("server", "http://localhost:8080", "chess3d server for -watch")
	watchID := flag.String("watch", "", "follow the hosted game with this ID instead of playing locally")
	verbose := flag.Bool("v", false, "log connection events to stderr")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}
	if *watchID != "" {
		logger := zerolog.Nop()
		if *verbose {
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		}
		watch(spectate.URL(*server, *watchID), color.Output, *noColor, logger)
		return
	}

	game := chess.NewGame()
	if *fen != "" {
		var err error
		if game, err = chess.NewGameFromFEN(*fen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := play(game, os.Stdin, color.Output, *noColor); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// play reads moves from in until the game ends or input runs out.
func play(game *chess.Game, in io.Reader, out io.Writer, plain bool) error {
	scanner := bufio.NewScanner(in)
	renderBoard(out, game.Board(), plain)
	for !game.IsOver() {
		fmt.Fprintf(out, "%s to move> ", game.Turn())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "fen":
			fmt.Fprintln(out, game.FEN())
			continue
		}

		from, to, promo, ok := parseMove(line)
		if !ok {
			fmt.Fprintln(out, "enter a move like e2e4 or e7e8q")
			continue
		}
		outcome, err := game.MoveAlgebraic(from, to, promo)
		if err != nil {
			var me chess.MoveError
			if errors.As(err, &me) {
				fmt.Fprintf(out, "%s: %s\n", me.Code(), me)
			} else {
				fmt.Fprintln(out, err)
			}
			continue
		}
		fmt.Fprintln(out, outcome.Move.Notation())
		renderBoard(out, game.Board(), plain)
	}

	fmt.Fprintf(out, "%s %s\n", game.Status().Result(), describe(game))
	return nil
}

func describe(game *chess.Game) string {
	switch game.Status() {
	case chess.StatusWhiteWon:
		return "white wins"
	case chess.StatusBlackWon:
		return "black wins"
	case chess.StatusDraw:
		return "draw by " + strings.ReplaceAll(string(game.DrawReason()), "_", " ")
	}
	return ""
}

// watch renders the watched game after every change until interrupted.
func watch(url string, out io.Writer, plain bool, logger zerolog.Logger) {
	tracker := spectate.NewTracker(func(t *spectate.Tracker) {
		game := t.Game()
		if game == nil {
			return
		}
		fmt.Fprintln(out)
		if last := t.LastMove(); last != "" {
			fmt.Fprintln(out, last)
		}
		renderBoard(out, game.Board(), plain)
		if game.IsOver() {
			fmt.Fprintf(out, "%s %s\n", game.Status().Result(), describe(game))
		} else {
			fmt.Fprintf(out, "%s to move, %d watching\n", game.Turn(), t.Spectators())
		}
	})

	client := spectate.NewClient(url, tracker.Handle, spectate.WithLogger(logger))
	client.Start()
	defer client.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
