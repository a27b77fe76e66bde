package chess

import (
	"encoding/json"
	"testing"
)

// TestMoveResultJSONSerializationAlwaysIncludesRequiredFields ensures that
// MoveResult structs always serialize to JSON with the expected field names
func TestMoveResultJSONSerializationAlwaysIncludesRequiredFields(t *testing.T) {
	g := NewGame()
	out := play(t, g, "e2e4")[0]
	moveResult := NewMoveResult(out, g.FEN())

	jsonData, err := json.Marshal(moveResult)
	if err != nil {
		t.Fatalf("Failed to marshal MoveResult: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	expectedFields := []string{"from", "to", "san", "uci", "fen", "check", "checkmate", "draw", "gameOver", "result", "castling", "enPassant"}
	for _, field := range expectedFields {
		if _, exists := parsed[field]; !exists {
			t.Errorf("Missing field in JSON: %s", field)
		}
	}
	if _, exists := parsed["captured"]; exists {
		t.Error("Expected captured to be omitted for a quiet move")
	}

	if parsed["from"] != "e2" {
		t.Errorf("Expected from=e2, got %v", parsed["from"])
	}
	if parsed["san"] != "e4" {
		t.Errorf("Expected san=e4, got %v", parsed["san"])
	}
	if parsed["fen"] != g.FEN() {
		t.Errorf("Expected fen=%s, got %v", g.FEN(), parsed["fen"])
	}
}

func TestMoveResultForMate(t *testing.T) {
	g := NewGame()
	outs := play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	r := NewMoveResult(outs[3], g.FEN())
	if !r.Check || !r.Checkmate || !r.GameOver || r.Draw {
		t.Errorf("Unexpected flags %+v", r)
	}
	if r.Result != "0-1" {
		t.Errorf("Expected result 0-1, got %s", r.Result)
	}
	if r.UCI != "d8h4" {
		t.Errorf("Expected uci d8h4, got %s", r.UCI)
	}
}

func TestMoveJSON(t *testing.T) {
	g := mustGame(t, "3r4/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	out := play(t, g, "e7d8r")[0]
	data, err := json.Marshal(out.Move)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"from":"e7","to":"d8","kind":"pawn","color":"white","captured":"rook","promotion":"rook","checkStatus":"none"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
	var back Move
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != out.Move {
		t.Errorf("Expected %+v, got %+v", out.Move, back)
	}
}

func TestMoveErrorCodes(t *testing.T) {
	tests := []struct {
		err  MoveError
		code string
	}{
		{ErrInvalidPosition, "invalid_position"},
		{ErrKingInCheck, "king_in_check"},
		{ErrPathBlocked, "path_blocked"},
		{ErrGameOver, "game_over"},
	}
	for _, tt := range tests {
		if tt.err.Code() != tt.code {
			t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code())
		}
		if tt.err.Error() == "" {
			t.Errorf("Expected message for %s", tt.code)
		}
	}
}

func TestGameStatusResult(t *testing.T) {
	tests := map[GameStatus]string{
		StatusActive:   "*",
		StatusDraw:     "1/2-1/2",
		StatusWhiteWon: "1-0",
		StatusBlackWon: "0-1",
	}
	for status, want := range tests {
		if got := status.Result(); got != want {
			t.Errorf("%s.Result() = %s, want %s", status, got, want)
		}
	}
}
