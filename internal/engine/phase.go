package engine

import (
	"encoding/json"

	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// Phase is the single active step of the turn structure; it alone decides which actions are legal.
type Phase interface {
	Name() string
	isPhase()
}

type SetupPlacing string

const (
	PlacingSettlement SetupPlacing = "Settlement"
	PlacingRoad       SetupPlacing = "Road"
)

// Setup is the snake draft: round 1 in seat order, round 2 in reverse.
type Setup struct {
	Round   int          `json:"round"`
	Placing SetupPlacing `json:"placing"`
}

type PreRoll struct{}

type MainPhase struct{}

type RobberMoveRequired struct{}

type RobberSteal struct {
	TargetHex hexgrid.HexCoord  `json:"target_hex"`
	Victims   []entity.PlayerID `json:"victims"`
}

type DiscardRequired struct {
	PlayersRemaining []entity.PlayerID `json:"players_remaining"`
}

type RoadBuildingInProgress struct {
	RoadsRemaining int `json:"roads_remaining"`
}

type Finished struct {
	Winner entity.PlayerID `json:"winner"`
}

func (Setup) Name() string                  { return "Setup" }
func (PreRoll) Name() string                { return "PreRoll" }
func (MainPhase) Name() string              { return "MainPhase" }
func (RobberMoveRequired) Name() string     { return "RobberMoveRequired" }
func (RobberSteal) Name() string            { return "RobberSteal" }
func (DiscardRequired) Name() string        { return "DiscardRequired" }
func (RoadBuildingInProgress) Name() string { return "RoadBuildingInProgress" }
func (Finished) Name() string               { return "Finished" }

func (Setup) isPhase()                  {}
func (PreRoll) isPhase()                {}
func (MainPhase) isPhase()              {}
func (RobberMoveRequired) isPhase()     {}
func (RobberSteal) isPhase()            {}
func (DiscardRequired) isPhase()        {}
func (RoadBuildingInProgress) isPhase() {}
func (Finished) isPhase()               {}

var phaseDecoders = map[string]func(json.RawMessage) (Phase, error){
	"Setup":                  decodePhase[Setup],
	"PreRoll":                decodePhase[PreRoll],
	"MainPhase":              decodePhase[MainPhase],
	"RobberMoveRequired":     decodePhase[RobberMoveRequired],
	"RobberSteal":            decodePhase[RobberSteal],
	"DiscardRequired":        decodePhase[DiscardRequired],
	"RoadBuildingInProgress": decodePhase[RoadBuildingInProgress],
	"Finished":               decodePhase[Finished],
}

func decodePhase[T Phase](raw json.RawMessage) (Phase, error) {
	var phase T
	if err := decodePayload(raw, &phase); err != nil {
		return nil, err
	}
	return phase, nil
}

// MarshalPhase renders {"Setup": {...}} or "PreRoll" for payload-free phases.
func MarshalPhase(phase Phase) ([]byte, error) {
	return marshalTagged(phase)
}

func UnmarshalPhase(data []byte) (Phase, error) {
	return unmarshalTagged(data, phaseDecoders)
}
