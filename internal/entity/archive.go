package entity

import "time"

// ArchivedGame is the permanent record of a finished game.
type ArchivedGame struct {
	ID         string    `json:"id"`
	RoomName   string    `json:"room_name"`
	Players    []string  `json:"players"`
	Scores     []int     `json:"scores"`
	Winner     PlayerID  `json:"winner"`
	Turns      int       `json:"turns"`
	FinishedAt time.Time `json:"finished_at"`
	Snapshot   []byte    `json:"-"`
}

func (that *ArchivedGame) WinnerName() string {
	if int(that.Winner) < 0 || int(that.Winner) >= len(that.Players) {
		return ""
	}
	return that.Players[that.Winner]
}
