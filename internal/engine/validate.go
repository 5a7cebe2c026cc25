package engine

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/board"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// Validate reports whether player may submit action now. It never mutates the game.
func (that *Game) Validate(player entity.PlayerID, action Action) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	actor, err := that.Player(player)
	if err != nil {
		return err
	}

	switch a := action.(type) {
	case PlaceInitialSettlement:
		return that.validateInitialSettlement(actor, a)
	case PlaceInitialRoad:
		return that.validateInitialRoad(actor, a)
	case RollDice:
		return that.expectTurn(player, isPhase[PreRoll])
	case BuildRoad:
		return that.validateBuildRoad(actor, a)
	case BuildSettlement:
		return that.validateBuildSettlement(actor, a)
	case BuildCity:
		return that.validateBuildCity(actor, a)
	case BuyDevelopmentCard:
		return that.validateBuyDevelopmentCard(actor)
	case PlayKnight:
		return that.validateDevCard(actor, entity.Knight)
	case PlayRoadBuilding:
		return that.validatePlayRoadBuilding(actor)
	case PlayYearOfPlenty:
		if err = that.validateDevCard(actor, entity.YearOfPlenty); err != nil {
			return err
		}
		if !a.First.Valid() || !a.Second.Valid() {
			return fmt.Errorf("%w: resources %q, %q", apperror.ErrUnknownTarget, a.First, a.Second)
		}
		return nil
	case PlayMonopoly:
		if err = that.validateDevCard(actor, entity.Monopoly); err != nil {
			return err
		}
		if !a.Resource.Valid() {
			return fmt.Errorf("%w: resource %q", apperror.ErrUnknownTarget, a.Resource)
		}
		return nil
	case MoveRobber:
		return that.validateMoveRobber(actor, a)
	case StealFrom:
		return that.validateStealFrom(actor, a)
	case DiscardCards:
		return that.validateDiscard(actor, a)
	case ProposeTrade:
		return that.validateProposeTrade(actor, a)
	case AcceptTrade:
		return that.validateAcceptTrade(actor)
	case RejectTrade:
		return that.validateRespondTrade(actor)
	case CancelTrade:
		return that.validateCancelTrade(actor)
	case CounterTrade:
		return that.validateCounterTrade(actor, a)
	case MaritimeTrade:
		return that.validateMaritimeTrade(actor, a)
	case EndTurn:
		return that.expectTurn(player, isPhase[MainPhase])
	default:
		return fmt.Errorf("%w: unsupported action %T", apperror.ErrWrongPhase, action)
	}
}

func isPhase[T Phase](phase Phase) bool {
	_, ok := phase.(T)
	return ok
}

// expectTurn checks the phase first and the turn owner second.
func (that *Game) expectTurn(player entity.PlayerID, allowed ...func(Phase) bool) error {
	ok := false
	for _, check := range allowed {
		if check(that.Phase) {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}

	if player != that.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}
	return nil
}

func (that *Game) validateInitialSettlement(actor *entity.Player, a PlaceInitialSettlement) error {
	setup, ok := that.Phase.(Setup)
	if !ok || setup.Placing != PlacingSettlement {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}
	if actor.ID != that.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}
	if actor.SettlementsRemaining == 0 {
		return fmt.Errorf("%w: settlements", apperror.ErrNoPiecesRemaining)
	}
	if !that.Board.SettlementSpotFree(a.Vertex) {
		return fmt.Errorf("%w: settlement at %s", apperror.ErrIllegalPlacement, a.Vertex)
	}
	return nil
}

func (that *Game) validateInitialRoad(actor *entity.Player, a PlaceInitialRoad) error {
	setup, ok := that.Phase.(Setup)
	if !ok || setup.Placing != PlacingRoad {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}
	if actor.ID != that.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}
	if actor.RoadsRemaining == 0 {
		return fmt.Errorf("%w: roads", apperror.ErrNoPiecesRemaining)
	}
	if that.SetupSettlement == nil || !hexgrid.EdgeTouchesVertex(a.Edge, *that.SetupSettlement) {
		return fmt.Errorf("%w: road %s must touch the settlement just placed", apperror.ErrIllegalPlacement, a.Edge)
	}
	if !that.Board.IsLandEdge(a.Edge) || !that.Board.Edge(a.Edge).IsEmpty() {
		return fmt.Errorf("%w: road at %s", apperror.ErrIllegalPlacement, a.Edge)
	}
	return nil
}

func (that *Game) validateBuildRoad(actor *entity.Player, a BuildRoad) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase], isPhase[RoadBuildingInProgress]); err != nil {
		return err
	}
	if actor.RoadsRemaining == 0 {
		return fmt.Errorf("%w: roads", apperror.ErrNoPiecesRemaining)
	}
	if isPhase[MainPhase](that.Phase) && !actor.Resources.CanAfford(entity.RoadCost) {
		return fmt.Errorf("%w: road", apperror.ErrInsufficientResources)
	}
	if !that.roadSpotOpen(actor.ID, a.Edge) {
		return fmt.Errorf("%w: road at %s", apperror.ErrIllegalPlacement, a.Edge)
	}
	return nil
}

func (that *Game) roadSpotOpen(player entity.PlayerID, e hexgrid.EdgeCoord) bool {
	return that.Board.IsLandEdge(e) &&
		that.Board.Edge(e).IsEmpty() &&
		that.Board.RoadConnects(player, e)
}

func (that *Game) hasRoadSpot(player entity.PlayerID) bool {
	for _, e := range that.Board.LandEdges() {
		if that.roadSpotOpen(player, e) {
			return true
		}
	}
	return false
}

func (that *Game) validateBuildSettlement(actor *entity.Player, a BuildSettlement) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if actor.SettlementsRemaining == 0 {
		return fmt.Errorf("%w: settlements", apperror.ErrNoPiecesRemaining)
	}
	if !actor.Resources.CanAfford(entity.SettlementCost) {
		return fmt.Errorf("%w: settlement", apperror.ErrInsufficientResources)
	}
	if !that.Board.SettlementSpotFree(a.Vertex) || !that.Board.HasRoadAt(actor.ID, a.Vertex) {
		return fmt.Errorf("%w: settlement at %s", apperror.ErrIllegalPlacement, a.Vertex)
	}
	return nil
}

func (that *Game) validateBuildCity(actor *entity.Player, a BuildCity) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if actor.CitiesRemaining == 0 {
		return fmt.Errorf("%w: cities", apperror.ErrNoPiecesRemaining)
	}
	if !actor.Resources.CanAfford(entity.CityCost) {
		return fmt.Errorf("%w: city", apperror.ErrInsufficientResources)
	}
	if building := that.Board.Vertex(a.Vertex); building.Kind != board.KindSettlement || building.Owner != actor.ID {
		return fmt.Errorf("%w: no own settlement at %s", apperror.ErrIllegalPlacement, a.Vertex)
	}
	return nil
}

func (that *Game) validateBuyDevelopmentCard(actor *entity.Player) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if len(that.DevDeck) == 0 {
		return fmt.Errorf("%w: development deck is empty", apperror.ErrNoPiecesRemaining)
	}
	if !actor.Resources.CanAfford(entity.DevelopmentCardCost) {
		return fmt.Errorf("%w: development card", apperror.ErrInsufficientResources)
	}
	return nil
}

func (that *Game) validateDevCard(actor *entity.Player, card entity.DevCardType) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if that.DevCardPlayed {
		return fmt.Errorf("%w: a development card was already played", apperror.ErrAlreadyActedThisTurn)
	}
	if !actor.HasPlayable(card) {
		return fmt.Errorf("%w: no playable %s card", apperror.ErrInsufficientResources, card)
	}
	return nil
}

func (that *Game) validatePlayRoadBuilding(actor *entity.Player) error {
	if err := that.validateDevCard(actor, entity.RoadBuilding); err != nil {
		return err
	}
	if actor.RoadsRemaining == 0 {
		return fmt.Errorf("%w: roads", apperror.ErrNoPiecesRemaining)
	}
	if !that.hasRoadSpot(actor.ID) {
		return fmt.Errorf("%w: nowhere to build a road", apperror.ErrIllegalPlacement)
	}
	return nil
}

func (that *Game) validateMoveRobber(actor *entity.Player, a MoveRobber) error {
	if err := that.expectTurn(actor.ID, isPhase[RobberMoveRequired]); err != nil {
		return err
	}
	if !that.Board.IsLand(a.Hex) || a.Hex == that.Board.Robber {
		return fmt.Errorf("%w: robber to %s", apperror.ErrIllegalPlacement, a.Hex)
	}
	return nil
}

func (that *Game) validateStealFrom(actor *entity.Player, a StealFrom) error {
	if err := that.expectTurn(actor.ID, isPhase[RobberSteal]); err != nil {
		return err
	}
	steal, _ := that.Phase.(RobberSteal)
	if !slices.Contains(steal.Victims, a.Victim) {
		return fmt.Errorf("%w: player %d is not a robber victim", apperror.ErrUnknownTarget, a.Victim)
	}
	return nil
}

func (that *Game) validateDiscard(actor *entity.Player, a DiscardCards) error {
	discard, ok := that.Phase.(DiscardRequired)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrWrongPhase, that.Phase.Name())
	}
	if !slices.Contains(discard.PlayersRemaining, actor.ID) {
		return fmt.Errorf("%w: player %d has nothing to discard", apperror.ErrNotYourTurn, actor.ID)
	}
	if !a.Hand.IsValid() {
		return fmt.Errorf("%w: negative discard", apperror.ErrUnknownTarget)
	}
	if want := actor.Resources.Total() / 2; a.Hand.Total() != want {
		return fmt.Errorf("%w: must discard exactly %d cards, got %d", apperror.ErrUnknownTarget, want, a.Hand.Total())
	}
	if !actor.Resources.CanAfford(a.Hand) {
		return fmt.Errorf("%w: discard", apperror.ErrInsufficientResources)
	}
	return nil
}

func (that *Game) validateMaritimeTrade(actor *entity.Player, a MaritimeTrade) error {
	if err := that.expectTurn(actor.ID, isPhase[MainPhase]); err != nil {
		return err
	}
	if !a.Give.Valid() || !a.Receive.Valid() || a.Give == a.Receive {
		return fmt.Errorf("%w: trade %s for %s", apperror.ErrUnknownTarget, a.Give, a.Receive)
	}
	if rate := that.Board.MaritimeRate(actor.ID, a.Give); a.GiveCount != rate {
		return fmt.Errorf("%w: rate for %s is %d, got %d", apperror.ErrUnknownTarget, a.Give, rate, a.GiveCount)
	}
	if actor.Resources.Get(a.Give) < a.GiveCount {
		return fmt.Errorf("%w: maritime trade", apperror.ErrInsufficientResources)
	}
	return nil
}
