package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chess3d/internal/auth"
	"github.com/justinabrahms/chess3d/internal/chess"
	"github.com/justinabrahms/chess3d/internal/config"
	"github.com/justinabrahms/chess3d/internal/snapshot"
)

// maxArchiveSize bounds uploaded CAR archives.
const maxArchiveSize = 1 << 20

type Service struct {
	store  *Store
	issuer *auth.Issuer
	hub    *Hub
	config *config.Config
}

func NewService(cfg *config.Config, issuer *auth.Issuer, hub *Hub) *Service {
	return &Service{
		store:  NewStore(cfg.Game.MaxGames),
		issuer: issuer,
		hub:    hub,
		config: cfg,
	}
}

// Handler wires every endpoint onto a gorilla/mux router. CORS wraps the
// router itself because mux skips middleware for unmatched preflight requests.
func (s *Service) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games/import", s.ImportGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.LegalMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/reset", s.ResetGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}/snapshot", s.SnapshotHandler).Methods("GET")
	api.HandleFunc("/games/{id}/archive", s.ArchiveHandler).Methods("GET")
	router.HandleFunc("/ws", s.WebSocketHandler)
	return corsMiddleware(router)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hijacking needs the raw writer.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeMoveError maps a rules rejection onto a 400 with a stable code.
func writeMoveError(w http.ResponseWriter, err error) {
	var me chess.MoveError
	if errors.As(err, &me) {
		status := http.StatusBadRequest
		if me == chess.ErrGameOver {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: me.Error(), Code: me.Code()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// writeAuthError answers 401 for a missing or invalid token and 403 for a
// valid token that names another seat.
func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrWrongSeat) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error(), Code: "wrong_seat"})
		return
	}
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid seat token", Code: "unauthorized"})
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	session, err := s.store.Get(id)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  s.store.Len(),
	})
}

type CreateGameRequest struct {
	FEN string `json:"fen,omitempty"`
}

type CreateGameResponse struct {
	ID         string    `json:"id"`
	WhiteToken string    `json:"white_token"`
	BlackToken string    `json:"black_token"`
	Game       *GameView `json:"game"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	game := chess.NewGame()
	if req.FEN != "" {
		var err error
		if game, err = chess.NewGameFromFEN(req.FEN); err != nil {
			log.Debug().Err(err).Str("fen", req.FEN).Msg("Rejected FEN")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_fen"})
			return
		}
	}
	s.createSession(w, game)
}

// ImportGameHandler hosts a game shipped as a CAR archive.
func (s *Service) ImportGameHandler(w http.ResponseWriter, r *http.Request) {
	archive, err := snapshot.ReadArchive(io.LimitReader(r.Body, maxArchiveSize))
	if err != nil {
		log.Debug().Err(err).Msg("Rejected archive")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_archive"})
		return
	}
	game, err := archive.Game()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_snapshot"})
		return
	}
	s.createSession(w, game)
}

func (s *Service) createSession(w http.ResponseWriter, game *chess.Game) {
	session, err := s.store.Add(game)
	if err != nil {
		log.Warn().Err(err).Int("games", s.store.Len()).Msg("Failed to create game")
		http.Error(w, "Too many games", http.StatusServiceUnavailable)
		return
	}

	resp := CreateGameResponse{ID: session.ID}
	if resp.WhiteToken, err = s.issuer.Issue(session.ID, chess.White); err == nil {
		resp.BlackToken, err = s.issuer.Issue(session.ID, chess.Black)
	}
	if err != nil {
		s.store.Delete(session.ID)
		log.Error().Err(err).Str("gameID", session.ID).Msg("Failed to issue seat tokens")
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}
	resp.Game = s.view(session)

	log.Info().Str("gameID", session.ID).Str("fen", resp.Game.FEN).Msg("Game created")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

type LegalMovesResponse struct {
	From         string            `json:"from,omitempty"`
	Destinations []string          `json:"destinations,omitempty"`
	Moves        []chess.Candidate `json:"moves,omitempty"`
}

// LegalMovesHandler lists the destinations of the piece on ?from=, or every
// legal move when from is omitted.
func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	if !s.config.Game.ShowLegalMoves {
		http.NotFound(w, r)
		return
	}
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	from := r.URL.Query().Get("from")
	if from == "" {
		var resp LegalMovesResponse
		session.With(func(g *chess.Game) { resp.Moves = g.LegalMoves() })
		if resp.Moves == nil {
			resp.Moves = []chess.Candidate{}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	pos, ok := chess.ParsePosition(from)
	if !ok {
		writeMoveError(w, chess.ErrInvalidPosition)
		return
	}
	var dests []chess.Position
	var err error
	session.With(func(g *chess.Game) { dests, err = g.Select(pos) })
	if err != nil {
		writeMoveError(w, err)
		return
	}
	resp := LegalMovesResponse{From: from, Destinations: []string{}}
	for _, d := range dests {
		resp.Destinations = append(resp.Destinations, d.Algebraic())
	}
	writeJSON(w, http.StatusOK, resp)
}

type MakeMoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveUpdate is the spectator payload for a committed move.
type MoveUpdate struct {
	Result  *chess.MoveResult `json:"result"`
	Outcome chess.MoveOutcome `json:"outcome"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	token := bearerToken(r)

	var (
		result  *chess.MoveResult
		outcome chess.MoveOutcome
		authErr error
	)
	err := session.Update(func(g *chess.Game) error {
		if authErr = s.issuer.Authorize(token, session.ID, g.Turn()); authErr != nil {
			return authErr
		}
		var err error
		if outcome, err = g.MoveAlgebraic(req.From, req.To, req.Promotion); err != nil {
			return err
		}
		result = chess.NewMoveResult(outcome, g.FEN())
		return nil
	})
	if authErr != nil {
		log.Debug().Err(authErr).Str("gameID", session.ID).Msg("Move rejected: seat token")
		writeAuthError(w, authErr)
		return
	}
	if err != nil {
		log.Debug().Err(err).Str("gameID", session.ID).Str("from", req.From).Str("to", req.To).Msg("Move rejected")
		writeMoveError(w, err)
		return
	}

	log.Info().
		Str("gameID", session.ID).
		Str("color", outcome.Move.Color.String()).
		Str("san", result.SAN).
		Str("fen", result.FEN).
		Bool("check", result.Check).
		Bool("checkmate", result.Checkmate).
		Msg("Move executed successfully")

	s.hub.BroadcastGameUpdate(GameUpdate{
		GameID: session.ID,
		Type:   UpdateMove,
		Data:   MoveUpdate{Result: result, Outcome: outcome},
	})
	writeJSON(w, http.StatusOK, result)
}

// ResetGameHandler restarts the game from the initial position. Either seat
// may reset.
func (s *Service) ResetGameHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	token := bearerToken(r)
	if err := s.issuer.Authorize(token, session.ID, chess.White); err != nil {
		if err2 := s.issuer.Authorize(token, session.ID, chess.Black); err2 != nil {
			writeAuthError(w, err)
			return
		}
	}

	_ = session.Update(func(g *chess.Game) error {
		g.Reset()
		return nil
	})
	view := s.view(session)

	log.Info().Str("gameID", session.ID).Msg("Game reset")
	s.hub.BroadcastGameUpdate(GameUpdate{GameID: session.ID, Type: UpdateReset, Data: view})
	writeJSON(w, http.StatusOK, view)
}

// SnapshotHandler serves the game as a DAG-CBOR block.
func (s *Service) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var snap chess.Snapshot
	session.With(func(g *chess.Game) { snap = g.Snapshot() })

	data, err := snapshot.Encode(snap)
	if err != nil {
		log.Error().Err(err).Str("gameID", session.ID).Msg("Failed to encode snapshot")
		http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
		return
	}
	c, err := snapshot.Sum(data)
	if err != nil {
		log.Error().Err(err).Str("gameID", session.ID).Msg("Failed to hash snapshot")
		http.Error(w, "Failed to encode snapshot", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", snapshot.ContentType)
	w.Header().Set("X-Snapshot-CID", c.String())
	_, _ = w.Write(data)
}

// ArchiveHandler serves the game as a CAR archive.
func (s *Service) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var (
		buf bytes.Buffer
		err error
	)
	session.With(func(g *chess.Game) { _, err = snapshot.WriteArchive(&buf, g) })
	if err != nil {
		log.Error().Err(err).Str("gameID", session.ID).Msg("Failed to write archive")
		http.Error(w, "Failed to write archive", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", snapshot.ArchiveContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+session.ID+`.car"`)
	_, _ = w.Write(buf.Bytes())
}
