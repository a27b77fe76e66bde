package chess

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

type DrawReason string

const (
	DrawStalemate            DrawReason = "stalemate"
	DrawFiftyMoveRule        DrawReason = "fifty_move_rule"
	DrawInsufficientMaterial DrawReason = "insufficient_material"
)

// Result renders the status as a PGN result token.
func (s GameStatus) Result() string {
	switch s {
	case StatusWhiteWon:
		return "1-0"
	case StatusBlackWon:
		return "0-1"
	case StatusDraw:
		return "1/2-1/2"
	}
	return "*"
}

// MoveResult is the flat wire view of a committed move.
type MoveResult struct {
	From      string `json:"from"`
	To        string `json:"to"`
	SAN       string `json:"san"`
	UCI       string `json:"uci"`
	FEN       string `json:"fen"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Draw      bool   `json:"draw"`
	GameOver  bool   `json:"gameOver"`
	Result    string `json:"result"`
	Captured  string `json:"captured,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Castling  bool   `json:"castling"`
	EnPassant bool   `json:"enPassant"`
}

// NewMoveResult flattens an outcome together with the FEN after the move.
func NewMoveResult(out MoveOutcome, fen string) *MoveResult {
	m := out.Move
	r := &MoveResult{
		From:      m.From.Algebraic(),
		To:        m.To.Algebraic(),
		SAN:       m.Notation(),
		UCI:       m.UCI(),
		FEN:       fen,
		Check:     m.CheckStatus != NoCheck,
		Checkmate: m.CheckStatus == Checkmate,
		Draw:      out.Status == StatusDraw,
		GameOver:  out.Status != StatusActive,
		Castling:  m.IsCastling,
		EnPassant: m.IsEnPassant,
	}
	if r.GameOver {
		r.Result = out.Status.Result()
	}
	if m.Captured != NoKind {
		r.Captured = m.Captured.Name()
	}
	if m.Promotion != NoKind {
		r.Promotion = m.Promotion.Name()
	}
	return r
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// PieceValues maps piece names to their material values.
func PieceValues() map[string]int {
	values := make(map[string]int, len(Kinds))
	for _, k := range Kinds {
		values[k.Name()] = k.Value()
	}
	return values
}
