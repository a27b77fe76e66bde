package chess

import "errors"

// MoveError is the reason a move attempt was rejected. Rejections never
// mutate the board or the game state.
type MoveError uint8

const (
	ErrInvalidPosition MoveError = iota + 1
	ErrSamePosition
	ErrNoPieceAtSource
	ErrInvalidPiece
	ErrWrongPlayerPiece
	ErrOwnPieceBlocking
	ErrIllegalMove
	ErrKingInCheck
	ErrPathBlocked
	ErrGameOver
)

var moveErrors = map[MoveError]struct{ code, msg string }{
	ErrInvalidPosition:  {"invalid_position", "invalid board position"},
	ErrSamePosition:     {"same_position", "source and destination are the same square"},
	ErrNoPieceAtSource:  {"no_piece_at_source", "no piece on the source square"},
	ErrInvalidPiece:     {"invalid_piece", "invalid piece for this move"},
	ErrWrongPlayerPiece: {"wrong_player_piece", "piece belongs to the other player"},
	ErrOwnPieceBlocking: {"own_piece_blocking", "destination is occupied by an own piece"},
	ErrIllegalMove:      {"illegal_move", "piece cannot move that way"},
	ErrKingInCheck:      {"king_in_check", "move leaves the king in check"},
	ErrPathBlocked:      {"path_blocked", "path to the destination is blocked"},
	ErrGameOver:         {"game_over", "game is already over"},
}

func (e MoveError) Error() string {
	if m, ok := moveErrors[e]; ok {
		return m.msg
	}
	return "unknown move error"
}

// Code is a stable identifier suitable for wire responses.
func (e MoveError) Code() string {
	if m, ok := moveErrors[e]; ok {
		return m.code
	}
	return "unknown"
}

var (
	ErrInvalidFEN      = errors.New("invalid FEN")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
