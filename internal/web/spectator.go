package web

import (
	"net/http"
	"time"

	"github.com/justinabrahms/chess3d/internal/chess"
)

// GameView is the full read model of a hosted game.
type GameView struct {
	ID             string              `json:"id"`
	FEN            string              `json:"fen"`
	Status         chess.GameStatus    `json:"status"`
	DrawReason     chess.DrawReason    `json:"drawReason,omitempty"`
	Result         string              `json:"result"`
	Turn           chess.Color         `json:"turn"`
	InCheck        bool                `json:"inCheck"`
	Moves          []string            `json:"moves"`
	MaterialCount  chess.MaterialCount `json:"materialCount"`
	Pieces         []PieceView         `json:"pieces"`
	SpectatorCount int                 `json:"spectatorCount"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// PieceView places one live piece; the handle stays stable for the whole game
// so a renderer can keep one model per piece.
type PieceView struct {
	Handle chess.Handle `json:"handle"`
	Kind   chess.Kind   `json:"kind"`
	Color  chess.Color  `json:"color"`
	Square string       `json:"square"`
}

// GameIndex is the summary shown in the game list.
type GameIndex struct {
	GameID         string              `json:"gameId"`
	Status         chess.GameStatus    `json:"status"`
	Turn           chess.Color         `json:"turn"`
	MoveCount      int                 `json:"moveCount"`
	LastMoveAt     *time.Time          `json:"lastMoveAt,omitempty"`
	SpectatorCount int                 `json:"spectatorCount"`
	MaterialCount  chess.MaterialCount `json:"materialCount"`
}

func (s *Service) view(session *Session) *GameView {
	v := &GameView{ID: session.ID, CreatedAt: session.CreatedAt}
	session.mu.Lock()
	g := session.game
	v.FEN = g.FEN()
	v.Status = g.Status()
	v.DrawReason = g.DrawReason()
	v.Result = g.Status().Result()
	v.Turn = g.Turn()
	v.InCheck = g.InCheck()
	v.MaterialCount = g.Material()
	v.UpdatedAt = session.updatedAt
	v.Moves = []string{}
	for _, m := range g.History() {
		v.Moves = append(v.Moves, m.Notation())
	}
	b := g.Board()
	session.mu.Unlock()

	v.Pieces = []PieceView{}
	for _, pl := range b.AllPieces() {
		p := b.Piece(pl.Handle)
		v.Pieces = append(v.Pieces, PieceView{
			Handle: pl.Handle,
			Kind:   p.Kind,
			Color:  p.Color,
			Square: pl.Position.Algebraic(),
		})
	}
	v.SpectatorCount = s.hub.SpectatorCount(session.ID)
	return v
}

// ListGamesHandler returns every hosted game, oldest first.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	games := []GameIndex{}
	for _, session := range s.store.List() {
		idx := GameIndex{GameID: session.ID}
		session.With(func(g *chess.Game) {
			idx.Status = g.Status()
			idx.Turn = g.Turn()
			idx.MoveCount = len(g.History())
			idx.MaterialCount = g.Material()
		})
		if idx.MoveCount > 0 {
			at := session.UpdatedAt()
			idx.LastMoveAt = &at
		}
		idx.SpectatorCount = s.hub.SpectatorCount(session.ID)
		games = append(games, idx)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}
