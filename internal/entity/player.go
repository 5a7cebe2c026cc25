package entity

import (
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
)

// PlayerID is the seat index of a player, 0-based in turn order.
type PlayerID int

const (
	InitialSettlements = 5
	InitialCities      = 4
	InitialRoads       = 15
)

var playerColors = [...]string{"red", "blue", "white", "orange"}

type Player struct {
	ID                     PlayerID     `json:"id"`
	Name                   string       `json:"name"`
	Color                  string       `json:"color"`
	Resources              ResourceHand `json:"resources"`
	DevCards               DevCards     `json:"dev_cards"`
	DevCardsBoughtThisTurn DevCards     `json:"dev_cards_bought_this_turn"`
	PlayedKnights          int          `json:"played_knights"`
	HasLongestRoad         bool         `json:"has_longest_road"`
	HasLargestArmy         bool         `json:"has_largest_army"`
	SettlementsRemaining   int          `json:"settlements_remaining"`
	CitiesRemaining        int          `json:"cities_remaining"`
	RoadsRemaining         int          `json:"roads_remaining"`
}

func NewPlayer(id PlayerID, name string) *Player {
	return &Player{
		ID:                   id,
		Name:                 name,
		Color:                playerColors[int(id)%len(playerColors)],
		SettlementsRemaining: InitialSettlements,
		CitiesRemaining:      InitialCities,
		RoadsRemaining:       InitialRoads,
	}
}

// HasPlayable reports whether the player holds a card of this type that was not bought this turn.
func (that *Player) HasPlayable(card DevCardType) bool {
	return that.DevCards.Get(card) > 0
}

// HiddenVictoryPoints counts victory point cards, including ones bought this turn.
func (that *Player) HiddenVictoryPoints() int {
	return that.DevCards.VictoryPoint + that.DevCardsBoughtThisTurn.VictoryPoint
}

func (that *Player) UseSettlement() error {
	if that.SettlementsRemaining == 0 {
		return fmt.Errorf("%w: settlements", apperror.ErrNoPiecesRemaining)
	}
	that.SettlementsRemaining--
	return nil
}

// UseCity consumes a city token and returns the replaced settlement to the supply.
func (that *Player) UseCity() error {
	if that.CitiesRemaining == 0 {
		return fmt.Errorf("%w: cities", apperror.ErrNoPiecesRemaining)
	}
	that.CitiesRemaining--
	that.SettlementsRemaining++
	return nil
}

func (that *Player) UseRoad() error {
	if that.RoadsRemaining == 0 {
		return fmt.Errorf("%w: roads", apperror.ErrNoPiecesRemaining)
	}
	that.RoadsRemaining--
	return nil
}

// EndTurn makes cards bought this turn playable.
func (that *Player) EndTurn() {
	that.DevCards.Merge(&that.DevCardsBoughtThisTurn)
}
