package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinabrahms/chess3d/internal/chess"
)

type rawUpdate struct {
	GameID string          `json:"gameId"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

func dial(t *testing.T, serverURL, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws?gameId=" + gameID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) rawUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var u rawUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

// readUntil skips frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) rawUpdate {
	t.Helper()
	for i := 0; i < 10; i++ {
		u := readUpdate(t, conn)
		if u.Type == typ {
			return u
		}
	}
	t.Fatalf("no %q update received", typ)
	return rawUpdate{}
}

func TestWebSocketSpectator(t *testing.T) {
	_, srv := newTestServer(t)
	game := createGame(t, srv, nil)
	conn := dial(t, srv.URL, game.ID)

	first := readUpdate(t, conn)
	assert.Equal(t, UpdateState, first.Type)
	assert.Equal(t, game.ID, first.GameID)
	var view GameView
	require.NoError(t, json.Unmarshal(first.Data, &view))
	assert.Equal(t, chess.InitialFEN, view.FEN)

	joined := readUpdate(t, conn)
	assert.Equal(t, UpdateSpectatorJoined, joined.Type)
	var info struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(joined.Data, &info))
	assert.NotEmpty(t, info.Name)
	assert.Equal(t, 1, info.Count)

	status, data := move(t, srv, game, game.WhiteToken, "e2", "e4")
	require.Equal(t, http.StatusOK, status, string(data))

	update := readUntil(t, conn, UpdateMove)
	var mv struct {
		Result chess.MoveResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(update.Data, &mv))
	assert.Equal(t, "e4", mv.Result.SAN)
	assert.Equal(t, "e2", mv.Result.From)
	assert.Equal(t, "e4", mv.Result.To)
}

func TestWebSocketReset(t *testing.T) {
	_, srv := newTestServer(t)
	game := createGame(t, srv, nil)
	conn := dial(t, srv.URL, game.ID)
	readUntil(t, conn, UpdateSpectatorJoined)

	status, _ := move(t, srv, game, game.WhiteToken, "d2", "d4")
	require.Equal(t, http.StatusOK, status)
	status, _ = request(t, "POST", srv.URL+"/api/games/"+game.ID+"/reset", game.BlackToken, nil)
	require.Equal(t, http.StatusOK, status)

	update := readUntil(t, conn, UpdateReset)
	var view GameView
	require.NoError(t, json.Unmarshal(update.Data, &view))
	assert.Equal(t, chess.InitialFEN, view.FEN)
}

func TestWebSocketSpectatorCount(t *testing.T) {
	svc, srv := newTestServer(t)
	game := createGame(t, srv, nil)

	a := dial(t, srv.URL, game.ID)
	readUntil(t, a, UpdateSpectatorJoined)
	b := dial(t, srv.URL, game.ID)
	readUntil(t, b, UpdateSpectatorJoined)
	assert.Equal(t, 2, svc.hub.SpectatorCount(game.ID))

	require.NoError(t, b.Close())
	left := readUntil(t, a, UpdateSpectatorLeft)
	var info struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(left.Data, &info))
	assert.Equal(t, 1, info.Count)
}

func TestWebSocketPing(t *testing.T) {
	_, srv := newTestServer(t)
	game := createGame(t, srv, nil)
	conn := dial(t, srv.URL, game.ID)
	readUntil(t, conn, UpdateSpectatorJoined)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])
}

func TestWebSocketRejects(t *testing.T) {
	_, srv := newTestServer(t)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base+"?gameId=missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubBuildsStateAfterRegistering(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	countAtState := make(chan int, 1)
	client := &Client{
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		gameID: "g1",
		name:   "watcher",
		state: func() interface{} {
			countAtState <- hub.SpectatorCount("g1")
			return map[string]string{"fen": chess.InitialFEN}
		},
	}
	hub.register <- client
	hub.BroadcastGameUpdate(GameUpdate{GameID: "g1", Type: UpdateMove, Data: "e4"})

	next := func() rawUpdate {
		t.Helper()
		select {
		case msg := <-client.send:
			var u rawUpdate
			require.NoError(t, json.Unmarshal(msg, &u))
			return u
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a frame")
			return rawUpdate{}
		}
	}

	assert.Equal(t, UpdateState, next().Type)
	assert.Equal(t, 1, <-countAtState, "state must be built once the client receives broadcasts")
	assert.Equal(t, UpdateSpectatorJoined, next().Type)
	assert.Equal(t, UpdateMove, next().Type)
}
