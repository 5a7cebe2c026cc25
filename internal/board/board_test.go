package board

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countTerrain(b *Board) (map[entity.Resource]int, map[int]int, int) {
	resources := make(map[entity.Resource]int)
	numbers := make(map[int]int)
	deserts := 0
	for _, tile := range b.LandTiles() {
		if tile.Type == TileDesert {
			deserts++
			continue
		}
		resources[tile.Resource]++
		numbers[tile.DiceNumber]++
	}
	return resources, numbers, deserts
}

func TestStandard(t *testing.T) {
	b := Standard()

	t.Run("Has the canonical terrain mix", func(t *testing.T) {
		// When: counting the land tiles
		resources, _, deserts := countTerrain(b)

		// Then: 19 land tiles with the fixed distribution
		assert.Len(t, b.LandTiles(), 19)
		assert.Equal(t, 1, deserts)
		assert.Equal(t, map[entity.Resource]int{
			entity.Lumber: 4, entity.Wool: 4, entity.Grain: 4, entity.Brick: 3, entity.Ore: 3,
		}, resources)
	})

	t.Run("Has the canonical number distribution", func(t *testing.T) {
		_, numbers, _ := countTerrain(b)

		assert.Equal(t, map[int]int{
			2: 1, 3: 2, 4: 2, 5: 2, 6: 2, 8: 2, 9: 2, 10: 2, 11: 2, 12: 1,
		}, numbers)
	})

	t.Run("Robber starts on the desert and ocean has no numbers", func(t *testing.T) {
		robberTiles := 0
		for _, tile := range b.Tiles {
			if tile.HasRobber {
				robberTiles++
				assert.Equal(t, TileDesert, tile.Type)
				assert.Equal(t, b.Robber, tile.Coord)
			}
			if tile.Type == TileOcean {
				assert.Zero(t, tile.DiceNumber)
			}
		}
		assert.Equal(t, 1, robberTiles)
		assert.Len(t, b.Tiles, 37)
	})

	t.Run("Nine harbors sit on the coast", func(t *testing.T) {
		generic := 0
		for _, harbor := range b.Harbors {
			if harbor.Type == HarborGeneric {
				generic++
			}

			hexes := hexgrid.HexesOfEdge(harbor.Edge)
			assert.NotEqual(t, b.IsLand(hexes[0]), b.IsLand(hexes[1]), harbor.Edge.String())
		}
		assert.Len(t, b.Harbors, 9)
		assert.Equal(t, 4, generic)
	})

	t.Run("Land graph has 54 vertices and 72 edges", func(t *testing.T) {
		assert.Len(t, b.LandVertices(), 54)
		assert.Len(t, b.LandEdges(), 72)
	})
}

func TestRandom(t *testing.T) {
	t.Run("Keeps the distribution and separates red numbers", func(t *testing.T) {
		// Given: a seeded random layout
		b := Random(rand.New(rand.NewSource(7)))

		// When: counting
		resources, numbers, deserts := countTerrain(b)

		// Then: same composition as the standard board
		assert.Equal(t, 1, deserts)
		assert.Equal(t, 4, resources[entity.Lumber])
		assert.Equal(t, 3, resources[entity.Ore])
		assert.Equal(t, 2, numbers[6])
		assert.Zero(t, numbers[7])
		assert.False(t, b.hasAdjacentRedNumbers())
		assert.True(t, b.Tiles[b.Robber].HasRobber)
		assert.Equal(t, TileDesert, b.Tiles[b.Robber].Type)
	})

	t.Run("Unknown layout names are rejected", func(t *testing.T) {
		_, err := New("hexagonal", nil)

		require.ErrorIs(t, err, ErrUnknownLayout)
	})
}

func TestBoard_MoveRobber(t *testing.T) {
	t.Run("Moves atomically", func(t *testing.T) {
		// Given: the standard board with the robber on the desert
		b := Standard()
		target := hexgrid.NewHex(1, 0)

		// When: moving the robber
		err := b.MoveRobber(target)

		// Then: exactly one tile carries it
		require.NoError(t, err)
		assert.Equal(t, target, b.Robber)
		assert.True(t, b.Tiles[target].HasRobber)
		assert.False(t, b.Tiles[hexgrid.NewHex(0, 0)].HasRobber)
	})

	t.Run("Refuses ocean", func(t *testing.T) {
		b := Standard()

		err := b.MoveRobber(hexgrid.NewHex(3, 0))

		require.ErrorIs(t, err, apperror.ErrIllegalPlacement)
		assert.Equal(t, hexgrid.NewHex(0, 0), b.Robber)
	})
}

func TestBoard_Placement(t *testing.T) {
	t.Run("Distance rule blocks adjacent vertices", func(t *testing.T) {
		// Given: a settlement on the top corner of the center
		b := Standard()
		v := hexgrid.NewVertex(hexgrid.NewHex(0, 0), hexgrid.North)
		b.SetVertex(v, Settlement(0))

		// Then: the vertex and all its neighbors are unavailable
		assert.False(t, b.SettlementSpotFree(v))
		for _, adj := range hexgrid.AdjacentVertices(v) {
			assert.False(t, b.SettlementSpotFree(adj), adj.String())
		}
		assert.True(t, b.SettlementSpotFree(hexgrid.NewVertex(hexgrid.NewHex(0, 0), hexgrid.South)))
	})

	t.Run("Opponent building cuts road connectivity", func(t *testing.T) {
		// Given: player 0 has a road ending on a vertex held by player 1
		b := Standard()
		origin := hexgrid.NewHex(0, 0)
		road := hexgrid.NewEdge(origin, hexgrid.NorthEast)
		b.SetEdge(road, Road(0))
		ends := hexgrid.EdgeEndpoints(road)
		b.SetVertex(ends[1], Settlement(1))

		// When: checking an edge that only touches the road through the enemy vertex
		var beyond hexgrid.EdgeCoord
		for _, e := range hexgrid.EdgesOfVertex(ends[1]) {
			if e != road {
				beyond = e
				break
			}
		}

		// Then: it is not connected, while an edge at the free end is
		assert.False(t, b.RoadConnects(0, beyond))
		assert.True(t, b.RoadConnects(0, hexgrid.NewEdge(origin, hexgrid.NorthWest)))
	})

	t.Run("Own building connects a road", func(t *testing.T) {
		b := Standard()
		v := hexgrid.NewVertex(hexgrid.NewHex(1, 0), hexgrid.South)
		b.SetVertex(v, Settlement(2))

		for _, e := range hexgrid.EdgesOfVertex(v) {
			assert.True(t, b.RoadConnects(2, e))
			assert.False(t, b.RoadConnects(1, e))
		}
	})
}

func TestBoard_MaritimeRate(t *testing.T) {
	t.Run("Defaults to four", func(t *testing.T) {
		b := Standard()

		assert.Equal(t, 4, b.MaritimeRate(0, entity.Brick))
	})

	t.Run("Generic harbor gives three and specific gives two", func(t *testing.T) {
		// Given: player 0 on the generic harbor and the brick harbor
		b := Standard()
		generic := hexgrid.EdgeEndpoints(hexgrid.NewEdge(hexgrid.NewHex(2, -2), hexgrid.NorthEast))
		brick := hexgrid.EdgeEndpoints(hexgrid.NewEdge(hexgrid.NewHex(1, 1), hexgrid.SouthEast))
		b.SetVertex(generic[0], Settlement(0))
		b.SetVertex(brick[1], City(0))

		// Then: rates depend on the resource
		assert.Equal(t, 2, b.MaritimeRate(0, entity.Brick))
		assert.Equal(t, 3, b.MaritimeRate(0, entity.Ore))
		assert.Equal(t, 4, b.MaritimeRate(1, entity.Brick))
		assert.Len(t, b.PlayerHarbors(0), 2)
	})
}

func TestBoard_JSON(t *testing.T) {
	t.Run("Buildings are tagged by name", func(t *testing.T) {
		data, err := json.Marshal([]VertexBuilding{{}, Settlement(1), City(2)})

		require.NoError(t, err)
		assert.JSONEq(t, `["Empty",{"Settlement":1},{"City":2}]`, string(data))
	})

	t.Run("Round trips a played board", func(t *testing.T) {
		// Given: a board with buildings and a moved robber
		b := Standard()
		b.SetVertex(hexgrid.NewVertex(hexgrid.NewHex(0, 0), hexgrid.North), Settlement(1))
		b.SetEdge(hexgrid.NewEdge(hexgrid.NewHex(0, 0), hexgrid.NorthWest), Road(1))
		require.NoError(t, b.MoveRobber(hexgrid.NewHex(-1, 1)))

		// When: encoding and decoding
		data, err := json.Marshal(b)
		require.NoError(t, err)
		var back Board
		require.NoError(t, json.Unmarshal(data, &back))

		// Then: nothing is lost
		assert.Equal(t, b, &back)
	})

	t.Run("Unknown building tags are rejected", func(t *testing.T) {
		var building EdgeBuilding

		err := json.Unmarshal([]byte(`{"Castle":1}`), &building)

		require.ErrorIs(t, err, ErrBadBuilding)
	})
}
