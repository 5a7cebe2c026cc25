package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

var ErrBadBuilding = errors.New("malformed building")

type BuildingKind string

const (
	KindEmpty      BuildingKind = "Empty"
	KindSettlement BuildingKind = "Settlement"
	KindCity       BuildingKind = "City"
	KindRoad       BuildingKind = "Road"
)

// VertexBuilding is Empty, Settlement(owner) or City(owner). The zero value is Empty.
type VertexBuilding struct {
	Kind  BuildingKind
	Owner entity.PlayerID
}

func Settlement(owner entity.PlayerID) VertexBuilding {
	return VertexBuilding{Kind: KindSettlement, Owner: owner}
}

func City(owner entity.PlayerID) VertexBuilding {
	return VertexBuilding{Kind: KindCity, Owner: owner}
}

func (that VertexBuilding) IsEmpty() bool {
	return that.Kind == "" || that.Kind == KindEmpty
}

// OwnedBy reports whether a settlement or city of player stands here.
func (that VertexBuilding) OwnedBy(player entity.PlayerID) bool {
	return !that.IsEmpty() && that.Owner == player
}

// Yield is how many cards the building collects from an adjacent producing tile.
func (that VertexBuilding) Yield() int {
	switch that.Kind {
	case KindSettlement:
		return 1
	case KindCity:
		return 2
	default:
		return 0
	}
}

func (that VertexBuilding) MarshalJSON() ([]byte, error) {
	if that.IsEmpty() {
		return json.Marshal(KindEmpty)
	}
	return json.Marshal(map[BuildingKind]entity.PlayerID{that.Kind: that.Owner})
}

func (that *VertexBuilding) UnmarshalJSON(data []byte) error {
	kind, owner, err := decodeTagged(data)
	if err != nil {
		return err
	}

	switch kind {
	case KindEmpty:
		*that = VertexBuilding{}
	case KindSettlement, KindCity:
		*that = VertexBuilding{Kind: kind, Owner: owner}
	default:
		return fmt.Errorf("%w: vertex building %q", ErrBadBuilding, kind)
	}
	return nil
}

// EdgeBuilding is Empty or Road(owner). The zero value is Empty.
type EdgeBuilding struct {
	Kind  BuildingKind
	Owner entity.PlayerID
}

func Road(owner entity.PlayerID) EdgeBuilding {
	return EdgeBuilding{Kind: KindRoad, Owner: owner}
}

func (that EdgeBuilding) IsEmpty() bool {
	return that.Kind == "" || that.Kind == KindEmpty
}

func (that EdgeBuilding) OwnedBy(player entity.PlayerID) bool {
	return that.Kind == KindRoad && that.Owner == player
}

func (that EdgeBuilding) MarshalJSON() ([]byte, error) {
	if that.IsEmpty() {
		return json.Marshal(KindEmpty)
	}
	return json.Marshal(map[BuildingKind]entity.PlayerID{that.Kind: that.Owner})
}

func (that *EdgeBuilding) UnmarshalJSON(data []byte) error {
	kind, owner, err := decodeTagged(data)
	if err != nil {
		return err
	}

	switch kind {
	case KindEmpty:
		*that = EdgeBuilding{}
	case KindRoad:
		*that = Road(owner)
	default:
		return fmt.Errorf("%w: edge building %q", ErrBadBuilding, kind)
	}
	return nil
}

// decodeTagged accepts either "Empty" or a single-key object {"Kind": owner}.
func decodeTagged(data []byte) (BuildingKind, entity.PlayerID, error) {
	var unit BuildingKind
	if err := json.Unmarshal(data, &unit); err == nil {
		return unit, 0, nil
	}

	var tagged map[BuildingKind]entity.PlayerID
	if err := json.Unmarshal(data, &tagged); err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrBadBuilding, err)
	}
	if len(tagged) != 1 {
		return "", 0, fmt.Errorf("%w: expected one tag, got %d", ErrBadBuilding, len(tagged))
	}

	for kind, owner := range tagged {
		return kind, owner, nil
	}
	return "", 0, ErrBadBuilding
}
