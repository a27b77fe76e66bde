package web

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justinabrahms/chess3d/internal/chess"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrStoreFull    = errors.New("game store is full")
)

// Session is one hosted game. Its mutex serializes every read and write of the
// game; sessions never share state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	game      *chess.Game
	updatedAt time.Time
}

// With runs fn while holding the session lock.
func (s *Session) With(fn func(g *chess.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Update runs fn under the session lock and bumps the update time when fn
// reports success.
func (s *Session) Update(fn func(g *chess.Game) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.game); err != nil {
		return err
	}
	s.updatedAt = time.Now()
	return nil
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Store holds sessions in memory, keyed by UUID.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Session
	max   int
}

func NewStore(max int) *Store {
	return &Store{games: make(map[string]*Session), max: max}
}

// Add registers g under a fresh ID.
func (st *Store) Add(g *chess.Game) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.games) >= st.max {
		return nil, ErrStoreFull
	}
	now := time.Now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now, game: g, updatedAt: now}
	st.games[s.ID] = s
	return s, nil
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.games[id]; !ok {
		return false
	}
	delete(st.games, id)
	return true
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.games)
}

// List returns all sessions, oldest first.
func (st *Store) List() []*Session {
	st.mu.RLock()
	out := make([]*Session, 0, len(st.games))
	for _, s := range st.games {
		out = append(out, s)
	}
	st.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
