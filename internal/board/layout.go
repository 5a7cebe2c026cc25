package board

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

var ErrUnknownLayout = errors.New("unknown board layout")

const (
	LayoutStandard = "standard"
	LayoutRandom   = "random"
)

// landRadius is the radius of the land area; the ocean ring sits one step further out.
const landRadius = 2

// standardResources follows the land coordinates after the central desert.
var standardResources = []entity.Resource{
	entity.Ore, entity.Wool, entity.Lumber, entity.Grain, entity.Brick, entity.Wool,
	entity.Brick, entity.Grain, entity.Lumber, entity.Lumber, entity.Ore, entity.Lumber,
	entity.Ore, entity.Grain, entity.Wool, entity.Brick, entity.Grain, entity.Wool,
}

var standardNumbers = []int{5, 2, 6, 3, 8, 10, 9, 12, 11, 4, 8, 10, 9, 4, 5, 6, 3, 11}

type harborSpot struct {
	hex  hexgrid.HexCoord
	dir  hexgrid.Direction
	kind HarborType
	res  entity.Resource
}

var standardHarbors = []harborSpot{
	{hexgrid.NewHex(2, -2), hexgrid.NorthEast, HarborGeneric, ""},
	{hexgrid.NewHex(1, -2), hexgrid.NorthWest, HarborSpecific, entity.Grain},
	{hexgrid.NewHex(-1, -1), hexgrid.NorthWest, HarborSpecific, entity.Ore},
	{hexgrid.NewHex(-2, 0), hexgrid.West, HarborGeneric, ""},
	{hexgrid.NewHex(-2, 2), hexgrid.SouthWest, HarborSpecific, entity.Wool},
	{hexgrid.NewHex(-1, 2), hexgrid.SouthWest, HarborGeneric, ""},
	{hexgrid.NewHex(1, 1), hexgrid.SouthEast, HarborSpecific, entity.Brick},
	{hexgrid.NewHex(2, 0), hexgrid.East, HarborSpecific, entity.Lumber},
	{hexgrid.NewHex(2, -1), hexgrid.NorthEast, HarborGeneric, ""},
}

// New builds a board for the named layout. rng is only used by the random layout.
func New(layout string, rng *rand.Rand) (*Board, error) {
	switch layout {
	case "", LayoutStandard:
		return Standard(), nil
	case LayoutRandom:
		return Random(rng), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
}

// Standard returns the fixed beginner board: desert in the center, 18 numbered land tiles in two
// rings around it, an ocean ring, and nine harbors on the coast.
func Standard() *Board {
	b := newBoard()
	coords := landCoords()

	b.Tiles[coords[0]] = Tile{Coord: coords[0], Type: TileDesert, HasRobber: true}
	b.Robber = coords[0]

	for i, c := range coords[1:] {
		b.Tiles[c] = Tile{
			Coord:      c,
			Type:       TileResource,
			Resource:   standardResources[i],
			DiceNumber: standardNumbers[i],
		}
	}

	b.addOcean()
	b.addHarbors(standardHarbors)

	return b
}

// Random shuffles terrain, numbers and harbor types over the standard shape. Layouts putting two
// red numbers (6 or 8) next to each other are redrawn.
func Random(rng *rand.Rand) *Board {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // board shuffling
	}

	for {
		b := randomAttempt(rng)
		if !b.hasAdjacentRedNumbers() {
			return b
		}
	}
}

func randomAttempt(rng *rand.Rand) *Board {
	b := newBoard()
	coords := landCoords()

	terrain := make([]TileType, 0, len(coords))
	resources := make([]entity.Resource, 0, len(coords))
	terrain = append(terrain, TileDesert)
	resources = append(resources, "")
	for _, r := range standardResources {
		terrain = append(terrain, TileResource)
		resources = append(resources, r)
	}

	rng.Shuffle(len(terrain), func(i, j int) {
		terrain[i], terrain[j] = terrain[j], terrain[i]
		resources[i], resources[j] = resources[j], resources[i]
	})

	numbers := append([]int(nil), standardNumbers...)
	rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

	next := 0
	for i, c := range coords {
		tile := Tile{Coord: c, Type: terrain[i], Resource: resources[i]}
		if tile.Type == TileDesert {
			tile.HasRobber = true
			b.Robber = c
		} else {
			tile.DiceNumber = numbers[next]
			next++
		}
		b.Tiles[c] = tile
	}

	b.addOcean()

	spots := append([]harborSpot(nil), standardHarbors...)
	rng.Shuffle(len(spots), func(i, j int) {
		spots[i].kind, spots[j].kind = spots[j].kind, spots[i].kind
		spots[i].res, spots[j].res = spots[j].res, spots[i].res
	})
	b.addHarbors(spots)

	return b
}

func landCoords() []hexgrid.HexCoord {
	center := hexgrid.NewHex(0, 0)
	coords := []hexgrid.HexCoord{center}
	for radius := 1; radius <= landRadius; radius++ {
		coords = append(coords, hexgrid.Ring(center, radius)...)
	}
	return coords
}

func (that *Board) addOcean() {
	for _, c := range hexgrid.Ring(hexgrid.NewHex(0, 0), landRadius+1) {
		that.Tiles[c] = Tile{Coord: c, Type: TileOcean}
	}
}

func (that *Board) addHarbors(spots []harborSpot) {
	for _, spot := range spots {
		that.Harbors = append(that.Harbors, Harbor{
			Edge:     hexgrid.NewEdge(spot.hex, spot.dir),
			Type:     spot.kind,
			Resource: spot.res,
		})
	}
}

func (that *Board) hasAdjacentRedNumbers() bool {
	for _, tile := range that.Tiles {
		if tile.DiceNumber != 6 && tile.DiceNumber != 8 {
			continue
		}
		for _, n := range hexgrid.Neighbors(tile.Coord) {
			other, ok := that.Tiles[n]
			if ok && (other.DiceNumber == 6 || other.DiceNumber == 8) {
				return true
			}
		}
	}
	return false
}
