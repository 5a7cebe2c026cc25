package engine

import (
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

func (that *Game) applyBuyDevelopmentCard(actor *entity.Player) ([]Event, error) {
	if len(that.DevDeck) == 0 {
		return nil, fmt.Errorf("%w: development deck is empty", apperror.ErrNoPiecesRemaining)
	}
	if err := actor.Resources.Debit(entity.DevelopmentCardCost); err != nil {
		return nil, err
	}

	last := len(that.DevDeck) - 1
	card := that.DevDeck[last]
	that.DevDeck = that.DevDeck[:last]
	actor.DevCardsBoughtThisTurn.Add(card, 1)

	return []Event{DevelopmentCardPurchased{Player: actor.ID, Card: card}}, nil
}

// playCard spends one playable card and uses up the per-turn allowance.
func (that *Game) playCard(actor *entity.Player, card entity.DevCardType) error {
	if !actor.DevCards.Remove(card) {
		return fmt.Errorf("%w: no playable %s card", apperror.ErrInsufficientResources, card)
	}
	that.DevCardPlayed = true
	return nil
}

func (that *Game) applyPlayKnight(actor *entity.Player) ([]Event, error) {
	if err := that.playCard(actor, entity.Knight); err != nil {
		return nil, err
	}

	actor.PlayedKnights++
	events := []Event{KnightPlayed{Player: actor.ID}}
	events = append(events, that.updateLargestArmy(actor)...)

	that.Phase = RobberMoveRequired{}

	return events, nil
}

func (that *Game) applyPlayRoadBuilding(actor *entity.Player) ([]Event, error) {
	if err := that.playCard(actor, entity.RoadBuilding); err != nil {
		return nil, err
	}

	roads := min(2, actor.RoadsRemaining)
	that.Phase = RoadBuildingInProgress{RoadsRemaining: roads}

	return []Event{RoadBuildingPlayed{Player: actor.ID, Roads: roads}}, nil
}

// applyPlayYearOfPlenty credits two cards from the bank, which is never exhausted.
func (that *Game) applyPlayYearOfPlenty(actor *entity.Player, a PlayYearOfPlenty) ([]Event, error) {
	if err := that.playCard(actor, entity.YearOfPlenty); err != nil {
		return nil, err
	}

	gain := entity.HandOf(a.First, 1)
	gain.Add(a.Second, 1)
	if err := actor.Resources.Credit(gain); err != nil {
		return nil, err
	}

	return []Event{YearOfPlentyPlayed{Player: actor.ID, First: a.First, Second: a.Second}}, nil
}

func (that *Game) applyPlayMonopoly(actor *entity.Player, a PlayMonopoly) ([]Event, error) {
	if err := that.playCard(actor, entity.Monopoly); err != nil {
		return nil, err
	}

	total := 0
	for _, other := range that.Players {
		if other.ID == actor.ID {
			continue
		}
		total += other.Resources.Take(a.Resource)
	}
	actor.Resources.Add(a.Resource, total)

	return []Event{MonopolyPlayed{Player: actor.ID, Resource: a.Resource, Total: total}}, nil
}

// finishRoadBuilding returns to the main phase once the free roads are spent or cannot be placed.
func (that *Game) finishRoadBuilding(actor *entity.Player) {
	progress, ok := that.Phase.(RoadBuildingInProgress)
	if !ok {
		return
	}

	progress.RoadsRemaining--
	if progress.RoadsRemaining <= 0 || actor.RoadsRemaining == 0 || !that.hasRoadSpot(actor.ID) {
		that.Phase = MainPhase{}
		return
	}
	that.Phase = progress
}
