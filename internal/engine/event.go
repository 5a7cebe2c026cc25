package engine

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// Event describes one state change produced by an applied action, in the order it happened.
type Event interface {
	Name() string
}

type DiceRolled struct {
	Player entity.PlayerID `json:"player"`
	Roll   DiceRoll        `json:"roll"`
}

type ResourcesDistributed struct {
	Gains map[entity.PlayerID]entity.ResourceHand `json:"gains"`
}

type SettlementBuilt struct {
	Player entity.PlayerID     `json:"player"`
	Vertex hexgrid.VertexCoord `json:"vertex"`
}

type CityBuilt struct {
	Player entity.PlayerID     `json:"player"`
	Vertex hexgrid.VertexCoord `json:"vertex"`
}

type RoadBuilt struct {
	Player entity.PlayerID   `json:"player"`
	Edge   hexgrid.EdgeCoord `json:"edge"`
}

type DevelopmentCardPurchased struct {
	Player entity.PlayerID    `json:"player"`
	Card   entity.DevCardType `json:"card"`
}

type KnightPlayed struct {
	Player entity.PlayerID `json:"player"`
}

type RoadBuildingPlayed struct {
	Player entity.PlayerID `json:"player"`
	Roads  int             `json:"roads"`
}

type YearOfPlentyPlayed struct {
	Player entity.PlayerID `json:"player"`
	First  entity.Resource `json:"first"`
	Second entity.Resource `json:"second"`
}

type MonopolyPlayed struct {
	Player   entity.PlayerID `json:"player"`
	Resource entity.Resource `json:"resource"`
	Total    int             `json:"total"`
}

type RobberMoved struct {
	Player entity.PlayerID  `json:"player"`
	Hex    hexgrid.HexCoord `json:"hex"`
}

type ResourceStolen struct {
	Thief    entity.PlayerID `json:"thief"`
	Victim   entity.PlayerID `json:"victim"`
	Resource entity.Resource `json:"resource,omitempty"`
}

type CardsDiscarded struct {
	Player entity.PlayerID     `json:"player"`
	Hand   entity.ResourceHand `json:"hand"`
}

type TradeProposed struct {
	Offer   TradeOffer `json:"offer"`
	Counter bool       `json:"counter,omitempty"`
}

type TradeCompleted struct {
	From       entity.PlayerID     `json:"from"`
	To         entity.PlayerID     `json:"to"`
	Offering   entity.ResourceHand `json:"offering"`
	Requesting entity.ResourceHand `json:"requesting"`
}

type TradeRejected struct {
	Player entity.PlayerID `json:"player"`
}

type TradeCancelled struct {
	From entity.PlayerID `json:"from"`
}

type MaritimeTradeCompleted struct {
	Player    entity.PlayerID `json:"player"`
	Give      entity.Resource `json:"give"`
	GiveCount int             `json:"give_count"`
	Receive   entity.Resource `json:"receive"`
}

// LongestRoadChanged carries a nil Player when nobody holds the bonus any more.
type LongestRoadChanged struct {
	Player *entity.PlayerID `json:"player"`
	Length int              `json:"length"`
}

type LargestArmyChanged struct {
	Player  entity.PlayerID `json:"player"`
	Knights int             `json:"knights"`
}

type TurnEnded struct {
	Player entity.PlayerID `json:"player"`
	Next   entity.PlayerID `json:"next"`
	Turn   int             `json:"turn"`
}

type GameWon struct {
	Winner        entity.PlayerID `json:"winner"`
	VictoryPoints int             `json:"victory_points"`
}

func (DiceRolled) Name() string               { return "DiceRolled" }
func (ResourcesDistributed) Name() string     { return "ResourcesDistributed" }
func (SettlementBuilt) Name() string          { return "SettlementBuilt" }
func (CityBuilt) Name() string                { return "CityBuilt" }
func (RoadBuilt) Name() string                { return "RoadBuilt" }
func (DevelopmentCardPurchased) Name() string { return "DevelopmentCardPurchased" }
func (KnightPlayed) Name() string             { return "KnightPlayed" }
func (RoadBuildingPlayed) Name() string       { return "RoadBuildingPlayed" }
func (YearOfPlentyPlayed) Name() string       { return "YearOfPlentyPlayed" }
func (MonopolyPlayed) Name() string           { return "MonopolyPlayed" }
func (RobberMoved) Name() string              { return "RobberMoved" }
func (ResourceStolen) Name() string           { return "ResourceStolen" }
func (CardsDiscarded) Name() string           { return "CardsDiscarded" }
func (TradeProposed) Name() string            { return "TradeProposed" }
func (TradeCompleted) Name() string           { return "TradeCompleted" }
func (TradeRejected) Name() string            { return "TradeRejected" }
func (TradeCancelled) Name() string           { return "TradeCancelled" }
func (MaritimeTradeCompleted) Name() string   { return "MaritimeTradeCompleted" }
func (LongestRoadChanged) Name() string       { return "LongestRoadChanged" }
func (LargestArmyChanged) Name() string       { return "LargestArmyChanged" }
func (TurnEnded) Name() string                { return "TurnEnded" }
func (GameWon) Name() string                  { return "GameWon" }

// Events marshals as a list of externally tagged events.
type Events []Event

// RedactEvents hides the face of development cards drawn by anyone but viewer.
func RedactEvents(events []Event, viewer *entity.PlayerID) Events {
	out := make(Events, len(events))
	for i, e := range events {
		if bought, ok := e.(DevelopmentCardPurchased); ok && (viewer == nil || *viewer != bought.Player) {
			bought.Card = entity.HiddenCard
			e = bought
		}
		out[i] = e
	}
	return out
}

func (that Events) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(that))
	for _, e := range that {
		data, err := marshalTagged(e)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event %T: %w", e, err)
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}
