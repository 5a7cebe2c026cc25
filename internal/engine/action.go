package engine

import (
	"encoding/json"

	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// Action is everything a player can submit.
type Action interface {
	Name() string
	isAction()
}

type PlaceInitialSettlement struct {
	Vertex hexgrid.VertexCoord `json:"vertex"`
}

type PlaceInitialRoad struct {
	Edge hexgrid.EdgeCoord `json:"edge"`
}

type RollDice struct{}

type BuildRoad struct {
	Edge hexgrid.EdgeCoord `json:"edge"`
}

type BuildSettlement struct {
	Vertex hexgrid.VertexCoord `json:"vertex"`
}

type BuildCity struct {
	Vertex hexgrid.VertexCoord `json:"vertex"`
}

type BuyDevelopmentCard struct{}

type PlayKnight struct{}

type PlayRoadBuilding struct{}

type PlayYearOfPlenty struct {
	First  entity.Resource `json:"first"`
	Second entity.Resource `json:"second"`
}

type PlayMonopoly struct {
	Resource entity.Resource `json:"resource"`
}

type MoveRobber struct {
	Hex hexgrid.HexCoord `json:"hex"`
}

type StealFrom struct {
	Victim entity.PlayerID `json:"victim"`
}

type DiscardCards struct {
	Hand entity.ResourceHand `json:"hand"`
}

// ProposeTrade offers resources to one player, or to everyone when To is nil.
type ProposeTrade struct {
	To         *entity.PlayerID    `json:"to,omitempty"`
	Offering   entity.ResourceHand `json:"offering"`
	Requesting entity.ResourceHand `json:"requesting"`
}

type AcceptTrade struct{}

type RejectTrade struct{}

type CancelTrade struct{}

// CounterTrade replaces the pending offer with one from the responder back to the proposer.
type CounterTrade struct {
	Offering   entity.ResourceHand `json:"offering"`
	Requesting entity.ResourceHand `json:"requesting"`
}

type MaritimeTrade struct {
	Give      entity.Resource `json:"give"`
	GiveCount int             `json:"give_count"`
	Receive   entity.Resource `json:"receive"`
}

type EndTurn struct{}

func (PlaceInitialSettlement) Name() string { return "PlaceInitialSettlement" }
func (PlaceInitialRoad) Name() string       { return "PlaceInitialRoad" }
func (RollDice) Name() string               { return "RollDice" }
func (BuildRoad) Name() string              { return "BuildRoad" }
func (BuildSettlement) Name() string        { return "BuildSettlement" }
func (BuildCity) Name() string              { return "BuildCity" }
func (BuyDevelopmentCard) Name() string     { return "BuyDevelopmentCard" }
func (PlayKnight) Name() string             { return "PlayKnight" }
func (PlayRoadBuilding) Name() string       { return "PlayRoadBuilding" }
func (PlayYearOfPlenty) Name() string       { return "PlayYearOfPlenty" }
func (PlayMonopoly) Name() string           { return "PlayMonopoly" }
func (MoveRobber) Name() string             { return "MoveRobber" }
func (StealFrom) Name() string              { return "StealFrom" }
func (DiscardCards) Name() string           { return "DiscardCards" }
func (ProposeTrade) Name() string           { return "ProposeTrade" }
func (AcceptTrade) Name() string            { return "AcceptTrade" }
func (RejectTrade) Name() string            { return "RejectTrade" }
func (CancelTrade) Name() string            { return "CancelTrade" }
func (CounterTrade) Name() string           { return "CounterTrade" }
func (MaritimeTrade) Name() string          { return "MaritimeTrade" }
func (EndTurn) Name() string                { return "EndTurn" }

func (PlaceInitialSettlement) isAction() {}
func (PlaceInitialRoad) isAction()       {}
func (RollDice) isAction()               {}
func (BuildRoad) isAction()              {}
func (BuildSettlement) isAction()        {}
func (BuildCity) isAction()              {}
func (BuyDevelopmentCard) isAction()     {}
func (PlayKnight) isAction()             {}
func (PlayRoadBuilding) isAction()       {}
func (PlayYearOfPlenty) isAction()       {}
func (PlayMonopoly) isAction()           {}
func (MoveRobber) isAction()             {}
func (StealFrom) isAction()              {}
func (DiscardCards) isAction()           {}
func (ProposeTrade) isAction()           {}
func (AcceptTrade) isAction()            {}
func (RejectTrade) isAction()            {}
func (CancelTrade) isAction()            {}
func (CounterTrade) isAction()           {}
func (MaritimeTrade) isAction()          {}
func (EndTurn) isAction()                {}

var actionDecoders = map[string]func(json.RawMessage) (Action, error){
	"PlaceInitialSettlement": decodeAction[PlaceInitialSettlement],
	"PlaceInitialRoad":       decodeAction[PlaceInitialRoad],
	"RollDice":               decodeAction[RollDice],
	"BuildRoad":              decodeAction[BuildRoad],
	"BuildSettlement":        decodeAction[BuildSettlement],
	"BuildCity":              decodeAction[BuildCity],
	"BuyDevelopmentCard":     decodeAction[BuyDevelopmentCard],
	"PlayKnight":             decodeAction[PlayKnight],
	"PlayRoadBuilding":       decodeAction[PlayRoadBuilding],
	"PlayYearOfPlenty":       decodeAction[PlayYearOfPlenty],
	"PlayMonopoly":           decodeAction[PlayMonopoly],
	"MoveRobber":             decodeAction[MoveRobber],
	"StealFrom":              decodeAction[StealFrom],
	"DiscardCards":           decodeAction[DiscardCards],
	"ProposeTrade":           decodeAction[ProposeTrade],
	"AcceptTrade":            decodeAction[AcceptTrade],
	"RejectTrade":            decodeAction[RejectTrade],
	"CancelTrade":            decodeAction[CancelTrade],
	"CounterTrade":           decodeAction[CounterTrade],
	"MaritimeTrade":          decodeAction[MaritimeTrade],
	"EndTurn":                decodeAction[EndTurn],
}

func decodeAction[T Action](raw json.RawMessage) (Action, error) {
	var action T
	if err := decodePayload(raw, &action); err != nil {
		return nil, err
	}
	return action, nil
}

func MarshalAction(action Action) ([]byte, error) {
	return marshalTagged(action)
}

func UnmarshalAction(data []byte) (Action, error) {
	return unmarshalTagged(data, actionDecoders)
}

// ActionJSON carries an Action inside other JSON documents.
type ActionJSON struct {
	Action Action
}

func (that ActionJSON) MarshalJSON() ([]byte, error) {
	return MarshalAction(that.Action)
}

func (that *ActionJSON) UnmarshalJSON(data []byte) error {
	action, err := UnmarshalAction(data)
	if err != nil {
		return err
	}
	that.Action = action
	return nil
}
