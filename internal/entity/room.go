package entity

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	MinRoomPlayers = 2
	MaxRoomPlayers = 4
)

var ErrUnknownRoomStatus = errors.New("unknown room status")

// Member is a connected client sitting in a room. Its index in Room.Members is its seat once the
// game starts.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Left bool   `json:"left,omitempty"`
}

type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HostID     string    `json:"host_id"`
	Members    []*Member `json:"members"`
	MaxPlayers int       `json:"max_players"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRoom opens a waiting room with host as its only member. maxPlayers is clamped to 2..4.
func NewRoom(id, name string, host *Member, maxPlayers int) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		HostID:     host.ID,
		Members:    []*Member{host},
		MaxPlayers: min(max(maxPlayers, MinRoomPlayers), MaxRoomPlayers),
		Status:     StatusWaiting,
		CreatedAt:  time.Now().UTC(),
	}
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsFull() bool {
	return len(that.Members) >= that.MaxPlayers
}

func (that *Room) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRoomStatus, that.Status)
	}
}

// Seat returns the seat of the member with this id.
func (that *Room) Seat(memberID string) (PlayerID, bool) {
	idx := slices.IndexFunc(that.Members, func(m *Member) bool { return m.ID == memberID })
	if idx < 0 {
		return 0, false
	}
	return PlayerID(idx), true
}

func (that *Room) HasMember(memberID string) bool {
	_, ok := that.Seat(memberID)
	return ok
}

func (that *Room) Names() []string {
	names := make([]string, 0, len(that.Members))
	for _, m := range that.Members {
		names = append(names, m.Name)
	}
	return names
}

func (that *Room) Join(member *Member) error {
	if that.HasMember(member.ID) {
		return nil
	}
	if !that.IsWaiting() {
		return apperror.ErrGameAlreadyStarted
	}
	if that.IsFull() {
		return apperror.ErrRoomFull
	}

	that.Members = append(that.Members, member)
	return nil
}

// Leave removes a member from a waiting room and hands the host role to the next member. Once the
// game has started the seat is kept and only marked as left.
func (that *Room) Leave(memberID string) error {
	seat, ok := that.Seat(memberID)
	if !ok {
		return apperror.ErrNotInRoom
	}

	if !that.IsWaiting() {
		that.Members[seat].Left = true
	} else {
		that.Members = slices.Delete(that.Members, int(seat), int(seat)+1)
	}

	if that.HostID == memberID {
		that.HostID = ""
		for _, m := range that.Members {
			if !m.Left {
				that.HostID = m.ID
				break
			}
		}
	}

	return nil
}

// IsAbandoned reports whether nobody is left in the room.
func (that *Room) IsAbandoned() bool {
	return !slices.ContainsFunc(that.Members, func(m *Member) bool { return !m.Left })
}

func (that *Room) Start(memberID string) error {
	if !that.HasMember(memberID) {
		return apperror.ErrNotInRoom
	}
	if that.HostID != memberID {
		return apperror.ErrNotHost
	}
	if !that.IsWaiting() {
		return apperror.ErrGameAlreadyStarted
	}
	if len(that.Members) < MinRoomPlayers {
		return apperror.ErrNotEnoughPlayers
	}

	that.Status = StatusOngoing
	return nil
}
