package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chess3d/internal/auth"
	"github.com/justinabrahms/chess3d/internal/config"
	"github.com/justinabrahms/chess3d/internal/web"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setLogLevel(cfg.Development)

	issuer, err := auth.NewIssuer(cfg.Auth.SigningKey, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create seat token issuer")
	}
	if cfg.Auth.SigningKey == "" {
		log.Warn().Msg("No auth.signing_key configured; seat tokens will not survive a restart")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(cfg, issuer, hub)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      service.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Int("maxGames", cfg.Game.MaxGames).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	// Closes the remaining spectator sockets.
	stop()

	log.Info().Msg("Server exited")
}

func setLogLevel(dev config.DevelopmentConfig) {
	if dev.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	level, err := zerolog.ParseLevel(dev.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("log_level", dev.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func showHelpMessage() {
	fmt.Println(`chess3d server

DESCRIPTION:
    Hosts chess games for the 3D client. Validates every move against the
    full rules of chess, hands out one seat token per color and pushes each
    committed move to websocket spectators.

USAGE:
    chess3d-server [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    Read from config.yaml in the current directory or ./config. Every key
    can be overridden with a CHESS3D_ environment variable, for example
    CHESS3D_SERVER_PORT=9090.

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        development:
          debug: false
          log_level: info

        game:
          show_legal_moves: true
          max_games: 1000

        auth:
          signing_key: "change-me"
          token_ttl: 24h

API ENDPOINTS:
    GET  /api/health                 - Service health check
    GET  /api/games                  - List hosted games
    POST /api/games                  - Create a game (optional {"fen": ...})
    POST /api/games/import           - Create a game from a CAR archive
    GET  /api/games/{id}             - Full game view
    GET  /api/games/{id}/moves       - Legal moves (?from=e2 for one piece)
    POST /api/games/{id}/moves       - Play a move (Bearer seat token)
    POST /api/games/{id}/reset       - Restart the game (either seat)
    GET  /api/games/{id}/snapshot    - DAG-CBOR snapshot block
    GET  /api/games/{id}/archive     - CAR archive of the game
    GET  /ws?gameId={id}             - Spectator websocket

EXAMPLES:
    # Create a game
    curl -X POST http://localhost:8080/api/games

    # Play 1. e4 with the white token
    curl -X POST http://localhost:8080/api/games/$ID/moves \
      -H "Authorization: Bearer $WHITE_TOKEN" \
      -d '{"from": "e2", "to": "e4"}'`)
}
