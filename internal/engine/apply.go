package engine

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/board"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// ApplyAction validates and applies one action, returning the resulting events in order. A
// rejected action leaves the game untouched.
func (that *Game) ApplyAction(player entity.PlayerID, action Action) ([]Event, error) {
	if err := that.Validate(player, action); err != nil {
		return nil, err
	}

	actor := that.Players[player]

	events, err := that.apply(actor, action)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", action.Name(), err)
	}

	return append(events, that.checkVictory(actor)...), nil
}

func (that *Game) apply(actor *entity.Player, action Action) ([]Event, error) {
	switch a := action.(type) {
	case PlaceInitialSettlement:
		return that.applyInitialSettlement(actor, a)
	case PlaceInitialRoad:
		return that.applyInitialRoad(actor, a)
	case RollDice:
		return that.applyRollDice(actor)
	case BuildRoad:
		return that.applyBuildRoad(actor, a)
	case BuildSettlement:
		return that.applyBuildSettlement(actor, a)
	case BuildCity:
		return that.applyBuildCity(actor, a)
	case BuyDevelopmentCard:
		return that.applyBuyDevelopmentCard(actor)
	case PlayKnight:
		return that.applyPlayKnight(actor)
	case PlayRoadBuilding:
		return that.applyPlayRoadBuilding(actor)
	case PlayYearOfPlenty:
		return that.applyPlayYearOfPlenty(actor, a)
	case PlayMonopoly:
		return that.applyPlayMonopoly(actor, a)
	case MoveRobber:
		return that.applyMoveRobber(actor, a)
	case StealFrom:
		return that.applyStealFrom(actor, a)
	case DiscardCards:
		return that.applyDiscard(actor, a)
	case ProposeTrade:
		return that.applyProposeTrade(actor, a), nil
	case AcceptTrade:
		return that.applyAcceptTrade(actor)
	case RejectTrade:
		return that.applyRejectTrade(actor), nil
	case CancelTrade:
		return that.clearTrade(), nil
	case CounterTrade:
		return that.applyCounterTrade(actor, a), nil
	case MaritimeTrade:
		return that.applyMaritimeTrade(actor, a)
	case EndTurn:
		return that.applyEndTurn(actor), nil
	default:
		return nil, fmt.Errorf("%w: unsupported action %T", apperror.ErrWrongPhase, action)
	}
}

func (that *Game) applyInitialSettlement(actor *entity.Player, a PlaceInitialSettlement) ([]Event, error) {
	if err := actor.UseSettlement(); err != nil {
		return nil, err
	}

	v := hexgrid.CanonicalVertex(a.Vertex)
	that.Board.SetVertex(v, board.Settlement(actor.ID))
	that.SetupSettlement = &v

	events := []Event{SettlementBuilt{Player: actor.ID, Vertex: v}}

	setup, _ := that.Phase.(Setup)
	if setup.Round == 2 {
		var gain entity.ResourceHand
		for _, h := range hexgrid.HexesTouchingVertex(v) {
			if tile, ok := that.Board.Tile(h); ok && tile.Type == board.TileResource {
				gain.Add(tile.Resource, 1)
			}
		}
		if !gain.IsEmpty() {
			if err := actor.Resources.Credit(gain); err != nil {
				return nil, err
			}
			events = append(events, ResourcesDistributed{Gains: map[entity.PlayerID]entity.ResourceHand{actor.ID: gain}})
		}
	}

	that.Phase = Setup{Round: setup.Round, Placing: PlacingRoad}

	return append(events, that.updateLongestRoad()...), nil
}

func (that *Game) applyInitialRoad(actor *entity.Player, a PlaceInitialRoad) ([]Event, error) {
	if err := actor.UseRoad(); err != nil {
		return nil, err
	}

	e := hexgrid.CanonicalEdge(a.Edge)
	that.Board.SetEdge(e, board.Road(actor.ID))
	that.SetupSettlement = nil

	events := []Event{RoadBuilt{Player: actor.ID, Edge: e}}
	that.advanceSetup()

	return events, nil
}

// advanceSetup walks the snake draft: seats ascend in round 1, the last seat places twice, then
// seats descend in round 2 and the first seat opens the game.
func (that *Game) advanceSetup() {
	setup, _ := that.Phase.(Setup)
	last := entity.PlayerID(len(that.Players) - 1)

	switch {
	case setup.Round == 1 && that.CurrentPlayer < last:
		that.CurrentPlayer++
		that.Phase = Setup{Round: 1, Placing: PlacingSettlement}
	case setup.Round == 1:
		that.Phase = Setup{Round: 2, Placing: PlacingSettlement}
	case that.CurrentPlayer > 0:
		that.CurrentPlayer--
		that.Phase = Setup{Round: 2, Placing: PlacingSettlement}
	default:
		that.CurrentPlayer = 0
		that.Turn = 1
		that.Phase = PreRoll{}
	}
}

func (that *Game) applyRollDice(actor *entity.Player) ([]Event, error) {
	rng := that.random()
	roll := DiceRoll{First: rng.Intn(6) + 1, Second: rng.Intn(6) + 1}
	that.LastRoll = &roll

	events := []Event{DiceRolled{Player: actor.ID, Roll: roll}}

	if roll.Sum() == 7 {
		var discarders []entity.PlayerID
		for _, p := range that.Players {
			if p.Resources.Total() > discardLimit {
				discarders = append(discarders, p.ID)
			}
		}

		if len(discarders) > 0 {
			that.Phase = DiscardRequired{PlayersRemaining: discarders}
		} else {
			that.Phase = RobberMoveRequired{}
		}
		return events, nil
	}

	gains, err := that.distribute(roll.Sum())
	if err != nil {
		return nil, err
	}
	if len(gains) > 0 {
		events = append(events, ResourcesDistributed{Gains: gains})
	}

	that.Phase = MainPhase{}

	return events, nil
}

// distribute pays every building next to a tile showing number, except under the robber.
func (that *Game) distribute(number int) (map[entity.PlayerID]entity.ResourceHand, error) {
	gains := make(map[entity.PlayerID]entity.ResourceHand)

	for _, tile := range that.Board.LandTiles() {
		if tile.Type != board.TileResource || tile.DiceNumber != number || tile.Coord == that.Board.Robber {
			continue
		}
		for _, building := range that.Board.BuildingsOn(tile.Coord) {
			hand := gains[building.Owner]
			hand.Add(tile.Resource, building.Yield())
			gains[building.Owner] = hand
		}
	}

	for id, gain := range gains {
		if err := that.Players[id].Resources.Credit(gain); err != nil {
			return nil, err
		}
	}

	return gains, nil
}

func (that *Game) applyDiscard(actor *entity.Player, a DiscardCards) ([]Event, error) {
	if err := actor.Resources.Debit(a.Hand); err != nil {
		return nil, err
	}

	discard, _ := that.Phase.(DiscardRequired)
	remaining := slices.DeleteFunc(slices.Clone(discard.PlayersRemaining), func(id entity.PlayerID) bool {
		return id == actor.ID
	})

	if len(remaining) == 0 {
		that.Phase = RobberMoveRequired{}
	} else {
		that.Phase = DiscardRequired{PlayersRemaining: remaining}
	}

	return []Event{CardsDiscarded{Player: actor.ID, Hand: a.Hand}}, nil
}

func (that *Game) applyMoveRobber(actor *entity.Player, a MoveRobber) ([]Event, error) {
	if err := that.Board.MoveRobber(a.Hex); err != nil {
		return nil, err
	}

	var victims []entity.PlayerID
	for _, building := range that.Board.BuildingsOn(a.Hex) {
		if building.Owner == actor.ID || slices.Contains(victims, building.Owner) {
			continue
		}
		if that.Players[building.Owner].Resources.IsEmpty() {
			continue
		}
		victims = append(victims, building.Owner)
	}
	slices.Sort(victims)

	if len(victims) > 0 {
		that.Phase = RobberSteal{TargetHex: a.Hex, Victims: victims}
	} else {
		that.Phase = MainPhase{}
	}

	return []Event{RobberMoved{Player: actor.ID, Hex: a.Hex}}, nil
}

func (that *Game) applyStealFrom(actor *entity.Player, a StealFrom) ([]Event, error) {
	victim := that.Players[a.Victim]
	event := ResourceStolen{Thief: actor.ID, Victim: victim.ID}

	if total := victim.Resources.Total(); total > 0 {
		r, _ := victim.Resources.NthCard(that.random().Intn(total))
		if err := victim.Resources.Debit(entity.HandOf(r, 1)); err != nil {
			return nil, err
		}
		actor.Resources.Add(r, 1)
		event.Resource = r
	}

	that.Phase = MainPhase{}

	return []Event{event}, nil
}

func (that *Game) applyBuildRoad(actor *entity.Player, a BuildRoad) ([]Event, error) {
	_, free := that.Phase.(RoadBuildingInProgress)
	if !free {
		if err := actor.Resources.Debit(entity.RoadCost); err != nil {
			return nil, err
		}
	}
	if err := actor.UseRoad(); err != nil {
		return nil, err
	}

	e := hexgrid.CanonicalEdge(a.Edge)
	that.Board.SetEdge(e, board.Road(actor.ID))

	events := []Event{RoadBuilt{Player: actor.ID, Edge: e}}
	events = append(events, that.updateLongestRoad()...)

	if free {
		that.finishRoadBuilding(actor)
	}

	return events, nil
}

func (that *Game) applyBuildSettlement(actor *entity.Player, a BuildSettlement) ([]Event, error) {
	if err := actor.Resources.Debit(entity.SettlementCost); err != nil {
		return nil, err
	}
	if err := actor.UseSettlement(); err != nil {
		return nil, err
	}

	v := hexgrid.CanonicalVertex(a.Vertex)
	that.Board.SetVertex(v, board.Settlement(actor.ID))

	events := []Event{SettlementBuilt{Player: actor.ID, Vertex: v}}

	return append(events, that.updateLongestRoad()...), nil
}

func (that *Game) applyBuildCity(actor *entity.Player, a BuildCity) ([]Event, error) {
	if err := actor.Resources.Debit(entity.CityCost); err != nil {
		return nil, err
	}
	if err := actor.UseCity(); err != nil {
		return nil, err
	}

	v := hexgrid.CanonicalVertex(a.Vertex)
	that.Board.SetVertex(v, board.City(actor.ID))

	return []Event{CityBuilt{Player: actor.ID, Vertex: v}}, nil
}

func (that *Game) applyEndTurn(actor *entity.Player) []Event {
	actor.EndTurn()
	that.DevCardPlayed = false

	events := that.clearTrade()

	that.CurrentPlayer = that.nextPlayer()
	that.Turn++
	that.Phase = PreRoll{}

	return append(events, TurnEnded{Player: actor.ID, Next: that.CurrentPlayer, Turn: that.Turn})
}

// checkVictory ends the game as soon as the acting player reaches the target, mid-turn included.
func (that *Game) checkVictory(actor *entity.Player) []Event {
	if that.IsFinished() {
		return nil
	}

	points := that.VictoryPoints(actor.ID)
	if points < that.VictoryTarget {
		return nil
	}

	that.Phase = Finished{Winner: actor.ID}
	that.PendingTrade = nil

	return []Event{GameWon{Winner: actor.ID, VictoryPoints: points}}
}
