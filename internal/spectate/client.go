// Package spectate follows a hosted game over its spectator websocket.
package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Reconnection parameters
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 1 * time.Minute
	reconnectBackoffFactor = 2

	// WebSocket parameters
	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Update is one frame pushed by the server. Data is decoded lazily because
// its shape depends on Type.
type Update struct {
	GameID string          `json:"gameId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// Handler is called for each update, in arrival order.
type Handler func(Update) error

// Client keeps a spectator connection open, reconnecting with exponential
// backoff. Every reconnect starts with a fresh "state" frame, so no cursor is
// needed.
type Client struct {
	url            string
	conn           *websocket.Conn
	handler        Handler
	logger         zerolog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	reconnectDelay time.Duration
	mu             sync.RWMutex
	connected      bool
	connects       int
	dialer         *websocket.Dialer
}

// Option configures the client
type Option func(*Client)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithInitialReconnectDelay sets the initial reconnect delay
func WithInitialReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelay = delay
	}
}

// URL builds the websocket address of gameID on a server whose HTTP base is
// base, e.g. "http://localhost:8080".
func URL(base, gameID string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimSuffix(base, "/") + "/ws?gameId=" + gameID
}

func NewClient(url string, handler Handler, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		url:            url,
		handler:        handler,
		logger:         zerolog.Nop(),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: initialReconnectDelay,
		dialer:         websocket.DefaultDialer,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Start begins following the game in the background.
func (c *Client) Start() {
	go c.run()
}

// Stop closes the connection and ends the reconnect loop.
func (c *Client) Stop() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.connected = false
		return err
	}
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Connects counts successful dials.
func (c *Client) Connects() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connects
}

func (c *Client) run() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			if err := c.connect(); err != nil {
				c.logger.Error().Err(err).Msg("Failed to connect to game")
				c.handleReconnect()
				continue
			}

			if err := c.listen(); err != nil {
				c.logger.Error().Err(err).Msg("Error following game")
			}
			c.handleReconnect()
		}
	}
}

func (c *Client) connect() error {
	c.logger.Info().Str("url", c.url).Msg("Connecting to game")

	headers := http.Header{}
	headers.Set("User-Agent", "chess3d-spectator/1.0")

	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		conn.Close()
		return c.ctx.Err()
	}
	c.conn = conn
	c.connected = true
	c.connects++
	c.reconnectDelay = initialReconnectDelay
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to game")

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
	})
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	return nil
}

func (c *Client) listen() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}

	go c.pingLoop(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("websocket read error: %w", err)
			}
			c.logger.Debug().Err(err).Msg("Connection closed")
			return nil
		}
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		var update Update
		if err := json.Unmarshal(data, &update); err != nil {
			c.logger.Error().Err(err).Msg("Error decoding update")
			continue
		}
		if update.Type == "" {
			// Pong replies carry no game data.
			continue
		}
		if err := c.handler(update); err != nil {
			c.logger.Error().Err(err).Str("type", update.Type).Msg("Update handler error")
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
				c.logger.Debug().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}

func (c *Client) handleReconnect() {
	c.mu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	delay := c.reconnectDelay

	// Exponential backoff
	c.reconnectDelay = time.Duration(float64(c.reconnectDelay) * reconnectBackoffFactor)
	if c.reconnectDelay > maxReconnectDelay {
		c.reconnectDelay = maxReconnectDelay
	}
	c.mu.Unlock()

	select {
	case <-c.ctx.Done():
		return
	default:
	}
	c.logger.Info().Str("delay", delay.String()).Msg("Waiting before reconnect")

	select {
	case <-time.After(delay):
	case <-c.ctx.Done():
	}
}
