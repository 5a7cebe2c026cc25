package board

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

type TileType string

const (
	TileResource TileType = "Resource"
	TileDesert   TileType = "Desert"
	TileOcean    TileType = "Ocean"
)

type Tile struct {
	Coord      hexgrid.HexCoord `json:"coord"`
	Type       TileType         `json:"type"`
	Resource   entity.Resource  `json:"resource,omitempty"`
	DiceNumber int              `json:"dice_number,omitempty"`
	HasRobber  bool             `json:"has_robber"`
}

func (that Tile) IsLand() bool {
	return that.Type == TileResource || that.Type == TileDesert
}

type HarborType string

const (
	HarborGeneric  HarborType = "Generic"
	HarborSpecific HarborType = "Specific"
)

// Harbor grants a better bank rate to players building on either end of its edge.
type Harbor struct {
	Edge     hexgrid.EdgeCoord `json:"edge"`
	Type     HarborType        `json:"type"`
	Resource entity.Resource   `json:"resource,omitempty"`
}

// Rate is the number of cards traded for one.
func (that Harbor) Rate() int {
	if that.Type == HarborSpecific {
		return 2
	}
	return 3
}

const DefaultMaritimeRate = 4

// Board stores tiles and what is built where. It does not enforce placement rules.
type Board struct {
	Tiles    map[hexgrid.HexCoord]Tile              `json:"tiles"`
	Vertices map[hexgrid.VertexCoord]VertexBuilding `json:"vertices"`
	Edges    map[hexgrid.EdgeCoord]EdgeBuilding     `json:"edges"`
	Harbors  []Harbor                               `json:"harbors"`
	Robber   hexgrid.HexCoord                       `json:"robber"`
}

func newBoard() *Board {
	return &Board{
		Tiles:    make(map[hexgrid.HexCoord]Tile),
		Vertices: make(map[hexgrid.VertexCoord]VertexBuilding),
		Edges:    make(map[hexgrid.EdgeCoord]EdgeBuilding),
	}
}

func (that *Board) Tile(h hexgrid.HexCoord) (Tile, bool) {
	tile, ok := that.Tiles[h]
	return tile, ok
}

func (that *Board) IsLand(h hexgrid.HexCoord) bool {
	tile, ok := that.Tiles[h]
	return ok && tile.IsLand()
}

// LandTiles returns land tiles sorted by row then column.
func (that *Board) LandTiles() []Tile {
	tiles := make([]Tile, 0, len(that.Tiles))
	for _, tile := range that.Tiles {
		if tile.IsLand() {
			tiles = append(tiles, tile)
		}
	}
	slices.SortFunc(tiles, func(a, b Tile) int { return compareHex(a.Coord, b.Coord) })
	return tiles
}

// IsLandVertex reports whether v touches at least one land tile.
func (that *Board) IsLandVertex(v hexgrid.VertexCoord) bool {
	for _, h := range hexgrid.HexesTouchingVertex(v) {
		if that.IsLand(h) {
			return true
		}
	}
	return false
}

// IsLandEdge reports whether e borders at least one land tile.
func (that *Board) IsLandEdge(e hexgrid.EdgeCoord) bool {
	for _, h := range hexgrid.HexesOfEdge(e) {
		if that.IsLand(h) {
			return true
		}
	}
	return false
}

// LandVertices lists every vertex touching land, in a stable order.
func (that *Board) LandVertices() []hexgrid.VertexCoord {
	seen := make(map[hexgrid.VertexCoord]struct{})
	out := make([]hexgrid.VertexCoord, 0, 54)
	for _, tile := range that.LandTiles() {
		for _, v := range hexgrid.VerticesOfHex(tile.Coord) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.SortFunc(out, compareVertex)
	return out
}

// LandEdges lists every edge bordering land, in a stable order.
func (that *Board) LandEdges() []hexgrid.EdgeCoord {
	seen := make(map[hexgrid.EdgeCoord]struct{})
	out := make([]hexgrid.EdgeCoord, 0, 72)
	for _, tile := range that.LandTiles() {
		for _, e := range hexgrid.EdgesOfHex(tile.Coord) {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareEdge)
	return out
}

func (that *Board) Vertex(v hexgrid.VertexCoord) VertexBuilding {
	return that.Vertices[hexgrid.CanonicalVertex(v)]
}

func (that *Board) SetVertex(v hexgrid.VertexCoord, building VertexBuilding) {
	v = hexgrid.CanonicalVertex(v)
	if building.IsEmpty() {
		delete(that.Vertices, v)
		return
	}
	that.Vertices[v] = building
}

func (that *Board) Edge(e hexgrid.EdgeCoord) EdgeBuilding {
	return that.Edges[hexgrid.CanonicalEdge(e)]
}

func (that *Board) SetEdge(e hexgrid.EdgeCoord, building EdgeBuilding) {
	e = hexgrid.CanonicalEdge(e)
	if building.IsEmpty() {
		delete(that.Edges, e)
		return
	}
	that.Edges[e] = building
}

// MoveRobber clears the robber from its tile and sets it on h in one step.
func (that *Board) MoveRobber(h hexgrid.HexCoord) error {
	target, ok := that.Tiles[h]
	if !ok || !target.IsLand() {
		return fmt.Errorf("%w: robber on %s", apperror.ErrIllegalPlacement, h)
	}

	if prev, ok := that.Tiles[that.Robber]; ok {
		prev.HasRobber = false
		that.Tiles[that.Robber] = prev
	}

	target.HasRobber = true
	that.Tiles[h] = target
	that.Robber = h

	return nil
}

// SettlementSpotFree applies the distance rule: the vertex touches land, is empty, and every
// neighboring vertex is empty too.
func (that *Board) SettlementSpotFree(v hexgrid.VertexCoord) bool {
	if !that.IsLandVertex(v) || !that.Vertex(v).IsEmpty() {
		return false
	}
	for _, adj := range hexgrid.AdjacentVertices(v) {
		if !that.Vertex(adj).IsEmpty() {
			return false
		}
	}
	return true
}

// HasRoadAt reports whether player owns a road touching v.
func (that *Board) HasRoadAt(player entity.PlayerID, v hexgrid.VertexCoord) bool {
	for _, e := range hexgrid.EdgesOfVertex(v) {
		if that.Edge(e).OwnedBy(player) {
			return true
		}
	}
	return false
}

// RoadConnects reports whether a road for player on e would join their network. An opponent's
// building on an endpoint cuts the network at that vertex.
func (that *Board) RoadConnects(player entity.PlayerID, e hexgrid.EdgeCoord) bool {
	e = hexgrid.CanonicalEdge(e)
	for _, v := range hexgrid.EdgeEndpoints(e) {
		building := that.Vertex(v)
		if building.OwnedBy(player) {
			return true
		}
		if !building.IsEmpty() {
			continue
		}
		for _, other := range hexgrid.EdgesOfVertex(v) {
			if other != e && that.Edge(other).OwnedBy(player) {
				return true
			}
		}
	}
	return false
}

// BuildingsOn returns the buildings standing on the corners of h.
func (that *Board) BuildingsOn(h hexgrid.HexCoord) []VertexBuilding {
	var out []VertexBuilding
	for _, v := range hexgrid.VerticesOfHex(h) {
		if b := that.Vertex(v); !b.IsEmpty() {
			out = append(out, b)
		}
	}
	return out
}

// PlayerHarbors returns the harbors player can use.
func (that *Board) PlayerHarbors(player entity.PlayerID) []Harbor {
	var out []Harbor
	for _, harbor := range that.Harbors {
		for _, v := range hexgrid.EdgeEndpoints(harbor.Edge) {
			if that.Vertex(v).OwnedBy(player) {
				out = append(out, harbor)
				break
			}
		}
	}
	return out
}

// MaritimeRate is 2 with a matching specific harbor, 3 with a generic one, 4 otherwise.
func (that *Board) MaritimeRate(player entity.PlayerID, give entity.Resource) int {
	rate := DefaultMaritimeRate
	for _, harbor := range that.PlayerHarbors(player) {
		if harbor.Type == HarborSpecific && harbor.Resource != give {
			continue
		}
		rate = min(rate, harbor.Rate())
	}
	return rate
}

// CountBuildings returns how many settlements and cities player has on the board.
func (that *Board) CountBuildings(player entity.PlayerID) (int, int) {
	var settlements, cities int
	for _, b := range that.Vertices {
		if b.Owner != player {
			continue
		}
		switch b.Kind {
		case KindSettlement:
			settlements++
		case KindCity:
			cities++
		}
	}
	return settlements, cities
}

// RoadsOf returns the edges owned by player in a stable order.
func (that *Board) RoadsOf(player entity.PlayerID) []hexgrid.EdgeCoord {
	var out []hexgrid.EdgeCoord
	for e, b := range that.Edges {
		if b.OwnedBy(player) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareEdge)
	return out
}

func compareHex(a, b hexgrid.HexCoord) int {
	return cmp.Or(cmp.Compare(a.R, b.R), cmp.Compare(a.Q, b.Q))
}

func compareVertex(a, b hexgrid.VertexCoord) int {
	return cmp.Or(compareHex(a.Hex, b.Hex), cmp.Compare(a.Dir, b.Dir))
}

func compareEdge(a, b hexgrid.EdgeCoord) int {
	return cmp.Or(compareHex(a.Hex, b.Hex), cmp.Compare(a.Dir, b.Dir))
}
