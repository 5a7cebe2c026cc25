package lobby

import (
	"encoding/json"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

// Update types pushed to subscribers.
const (
	TypeRoomUpdated = "room:updated"
	TypeGameStarted = "game:started"
	TypeGameEvents  = "game:events"
	TypeGameState   = "game:state"
	TypeChat        = "chat"
	TypeError       = "error"
)

// Update is one message for a subscriber.
type Update struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StartedView struct {
	RoomID  string   `json:"room_id"`
	Players []string `json:"players"`
}

// StateView is the full game as seen by one member, with the actions open to their seat.
type StateView struct {
	RoomID       string              `json:"room_id"`
	Version      int                 `json:"version"`
	Seat         *entity.PlayerID    `json:"seat,omitempty"`
	Game         json.RawMessage     `json:"game"`
	LegalActions []engine.ActionJSON `json:"legal_actions"`
}

type EventsView struct {
	RoomID  string            `json:"room_id"`
	Version int               `json:"version"`
	Player  entity.PlayerID   `json:"player"`
	Action  engine.ActionJSON `json:"action"`
	Events  engine.Events     `json:"events"`
}

type ChatView struct {
	RoomID   string    `json:"room_id"`
	MemberID string    `json:"member_id"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

type ErrorView struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// View reflects internal state without racing the lobby goroutine.
type View struct {
	Version    int
	NumClients int
	Started    bool
	Finished   bool
	Game       json.RawMessage
}

type Msg interface{ isLobbyMsg() }

// Subscribe registers a member's outbox. The lobby owns the channel from then on and closes it on
// Unsubscribe, when the member is too slow, or at shutdown.
type Subscribe struct {
	MemberID string
	Outbox   chan Update
}

// Unsubscribe only acts when Outbox is still the one registered for the member.
type Unsubscribe struct {
	MemberID string
	Outbox   chan Update
}

// Publish fans an update out to every subscriber.
type Publish struct {
	Update Update
}

type Chat struct {
	MemberID string
	Name     string
	Text     string
}

// Start seats Members in order and hands the lobby its game.
type Start struct {
	Members []*entity.Member
	Game    *engine.Game
}

type Submit struct {
	MemberID string
	Action   engine.Action
}

type GetState struct {
	Reply chan View
}

type turnTimeout struct {
	version int
}

func (Subscribe) isLobbyMsg()   {}
func (Unsubscribe) isLobbyMsg() {}
func (Publish) isLobbyMsg()     {}
func (Chat) isLobbyMsg()        {}
func (Start) isLobbyMsg()       {}
func (Submit) isLobbyMsg()      {}
func (GetState) isLobbyMsg()    {}
func (turnTimeout) isLobbyMsg() {}
