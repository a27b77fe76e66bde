package spectate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/chess3d/internal/chess"
)

// Update types the tracker understands.
const (
	TypeState           = "state"
	TypeMove            = "move"
	TypeReset           = "reset"
	TypeSpectatorJoined = "spectator_joined"
	TypeSpectatorLeft   = "spectator_left"
)

// Tracker mirrors a watched game locally. It rebuilds the position from the
// FEN carried by each update instead of replaying moves, so a missed frame
// never leaves it out of sync for longer than one update.
type Tracker struct {
	mu         sync.RWMutex
	gameID     string
	game       *chess.Game
	last       string
	spectators int
	onChange   func(*Tracker)
}

// NewTracker returns a tracker; onChange, if set, runs after every update
// that moved the position.
func NewTracker(onChange func(*Tracker)) *Tracker {
	return &Tracker{onChange: onChange}
}

// Handle is a Handler for Client.
func (t *Tracker) Handle(u Update) error {
	var (
		fen     string
		changed bool
	)
	switch u.Type {
	case TypeState, TypeReset:
		var view struct {
			FEN            string `json:"fen"`
			SpectatorCount int    `json:"spectatorCount"`
		}
		if err := json.Unmarshal(u.Data, &view); err != nil {
			return fmt.Errorf("invalid %s update: %w", u.Type, err)
		}
		fen, changed = view.FEN, true
		t.mu.Lock()
		t.spectators = view.SpectatorCount
		t.last = ""
		t.mu.Unlock()

	case TypeMove:
		var mv struct {
			Result chess.MoveResult `json:"result"`
		}
		if err := json.Unmarshal(u.Data, &mv); err != nil {
			return fmt.Errorf("invalid move update: %w", err)
		}
		fen, changed = mv.Result.FEN, true
		t.mu.Lock()
		t.last = mv.Result.SAN
		t.mu.Unlock()

	case TypeSpectatorJoined, TypeSpectatorLeft:
		var info struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(u.Data, &info); err != nil {
			return fmt.Errorf("invalid %s update: %w", u.Type, err)
		}
		t.mu.Lock()
		t.spectators = info.Count
		t.mu.Unlock()

	default:
		log.Debug().Str("type", u.Type).Msg("Ignoring unknown update type")
		return nil
	}

	if !changed {
		return nil
	}
	game, err := chess.NewGameFromFEN(fen)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.gameID = u.GameID
	t.game = game
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(t)
	}
	return nil
}

// Game is a private copy of the mirrored position, or nil before the first
// state frame.
func (t *Tracker) Game() *chess.Game {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.game == nil {
		return nil
	}
	g, err := chess.NewGameFromFEN(t.game.FEN())
	if err != nil {
		return nil
	}
	return g
}

func (t *Tracker) GameID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gameID
}

// LastMove is the SAN of the most recent move, empty after a state or reset.
func (t *Tracker) LastMove() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func (t *Tracker) Spectators() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.spectators
}
