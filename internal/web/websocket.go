package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Update types pushed to spectators.
const (
	UpdateState           = "state"
	UpdateMove            = "move"
	UpdateReset           = "reset"
	UpdateSpectatorJoined = "spectator_joined"
	UpdateSpectatorLeft   = "spectator_left"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Spectating is read-only; any origin may watch.
		return true
	},
}

// Hub fans game updates out to the websocket clients watching each game.
type Hub struct {
	// Registered clients by game ID
	gameClients map[string]map[*Client]bool

	broadcast  chan GameUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Client is one spectator connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	name   string

	// state builds the first frame. The hub calls it once the client is
	// registered, so every later move reaches the client after it.
	state func() interface{}
}

// GameUpdate is the envelope of every message sent to spectators.
type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		broadcast:   make(chan GameUpdate, sendBufferSize),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for gameID, clients := range h.gameClients {
				for client := range clients {
					close(client.send)
				}
				delete(h.gameClients, gameID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.gameClients[client.gameID] == nil {
				h.gameClients[client.gameID] = make(map[*Client]bool)
			}
			h.gameClients[client.gameID][client] = true
			count := len(h.gameClients[client.gameID])
			h.mu.Unlock()

			if client.state != nil {
				h.greet(client)
			}
			log.Info().
				Str("gameID", client.gameID).
				Str("spectator", client.name).
				Msg("Spectator connected to game")
			h.deliver(GameUpdate{
				GameID: client.gameID,
				Type:   UpdateSpectatorJoined,
				Data:   map[string]interface{}{"name": client.name, "count": count},
			})

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			count := 0
			if clients, ok := h.gameClients[client.gameID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					removed = true
					count = len(clients)
					if len(clients) == 0 {
						delete(h.gameClients, client.gameID)
					}
				}
			}
			h.mu.Unlock()

			if removed {
				log.Info().
					Str("gameID", client.gameID).
					Str("spectator", client.name).
					Msg("Spectator disconnected from game")
				h.deliver(GameUpdate{
					GameID: client.gameID,
					Type:   UpdateSpectatorLeft,
					Data:   map[string]interface{}{"name": client.name, "count": count},
				})
			}

		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

func (h *Hub) deliver(update GameUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal game update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.gameClients[update.GameID]
	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer; drop it rather than stall the hub.
			close(client.send)
			delete(clients, client)
		}
	}
	if clients != nil && len(clients) == 0 {
		delete(h.gameClients, update.GameID)
	}
}

// greet queues the state frame ahead of anything else for a new client.
func (h *Hub) greet(client *Client) {
	message, err := json.Marshal(GameUpdate{GameID: client.gameID, Type: UpdateState, Data: client.state()})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal game state")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.gameClients[client.gameID][client] {
		return
	}
	select {
	case client.send <- message:
	default:
	}
}

// BroadcastGameUpdate queues an update for everyone watching update.GameID.
func (h *Hub) BroadcastGameUpdate(update GameUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("gameID", update.GameID).Msg("Broadcast channel full, dropping update")
	}
}

// SpectatorCount is the number of open connections watching gameID.
func (h *Hub) SpectatorCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// WebSocketHandler upgrades /ws?gameId=... to a spectator connection. The
// first message is the current game state, built after registration so no
// committed move can fall between it and the live feed.
func (s *Service) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "Missing gameId parameter", http.StatusBadRequest)
		return
	}
	session, err := s.store.Get(gameID)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		gameID: gameID,
		name:   petname.Generate(2, "-"),
		state:  func() interface{} { return s.view(session) },
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump keeps the read deadline alive and answers application pings.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("gameID", c.gameID).Msg("WebSocket error")
			}
			break
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err == nil && msg["type"] == "ping" {
			if data, err := json.Marshal(map[string]string{"type": "pong"}); err == nil {
				c.trySend(data)
			}
		}
	}
}

// trySend queues data unless the hub has already closed the channel.
func (c *Client) trySend(data []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.gameClients[c.gameID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
