package apperror

import "errors"

// Reasons an action is rejected by the rules engine. A rejected action never mutates the game.
var (
	ErrNotYourTurn           = errors.New("it's not your turn")
	ErrWrongPhase            = errors.New("action is not allowed in the current phase")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrNoPiecesRemaining     = errors.New("no pieces remaining")
	ErrIllegalPlacement      = errors.New("illegal placement")
	ErrUnknownTarget         = errors.New("unknown target")
	ErrAlreadyActedThisTurn  = errors.New("already acted this turn")
	ErrGameFinished          = errors.New("game is already finished")
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNotInRoom          = errors.New("player is not in the room")
	ErrNotHost            = errors.New("only the host can do this")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrGameNotFound       = errors.New("game not found")
)

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrBadPayload     = errors.New("malformed payload")
	ErrRateLimited    = errors.New("too many messages")
	ErrNotConnected   = errors.New("not connected to a room")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrNotYourTurn, "not_your_turn"},
	{ErrWrongPhase, "wrong_phase"},
	{ErrInsufficientResources, "insufficient_resources"},
	{ErrNoPiecesRemaining, "no_pieces_remaining"},
	{ErrIllegalPlacement, "illegal_placement"},
	{ErrUnknownTarget, "unknown_target"},
	{ErrAlreadyActedThisTurn, "already_acted_this_turn"},
	{ErrGameFinished, "game_finished"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomFull, "room_full"},
	{ErrNotInRoom, "not_in_room"},
	{ErrNotHost, "not_host"},
	{ErrNotEnoughPlayers, "not_enough_players"},
	{ErrGameAlreadyStarted, "game_already_started"},
	{ErrGameIsNotStarted, "game_is_not_started"},
	{ErrGameNotFound, "game_not_found"},
	{ErrUnknownMessage, "unknown_message"},
	{ErrBadPayload, "bad_payload"},
	{ErrRateLimited, "rate_limited"},
	{ErrNotConnected, "not_connected"},
}

// Reason maps an error to a stable code for clients, or "internal" when it is not one of ours.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}
