package engine

import (
	"github.com/rocketscienceinc/settlers-backend/internal/board"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// LongestRoad returns the length of the longest trail through player's roads: edges are never
// reused, vertices may be revisited, and a trail cannot continue through a vertex holding an
// opponent's building.
func LongestRoad(b *board.Board, player entity.PlayerID) int {
	roads := b.RoadsOf(player)
	if len(roads) == 0 {
		return 0
	}
	// the mask is a uint64; a player never owns more than the road supply
	if len(roads) > 64 {
		roads = roads[:64]
	}

	incident := make(map[hexgrid.VertexCoord][]int)
	for i, e := range roads {
		for _, v := range hexgrid.EdgeEndpoints(e) {
			incident[v] = append(incident[v], i)
		}
	}

	best := 0
	var walk func(v hexgrid.VertexCoord, used uint64, length int)
	walk = func(v hexgrid.VertexCoord, used uint64, length int) {
		best = max(best, length)

		if length > 0 {
			if building := b.Vertex(v); !building.IsEmpty() && building.Owner != player {
				return
			}
		}

		for _, i := range incident[v] {
			bit := uint64(1) << i
			if used&bit != 0 {
				continue
			}
			ends := hexgrid.EdgeEndpoints(roads[i])
			next := ends[0]
			if next == v {
				next = ends[1]
			}
			walk(next, used|bit, length+1)
		}
	}

	for v := range incident {
		walk(v, 0, 0)
	}

	return best
}

// updateLongestRoad recomputes every player's trail after the board changed. The holder keeps
// the bonus unless a single player strictly beats them; a holder whose road was cut below the
// minimum loses it, and a tie among challengers awards it to nobody.
func (that *Game) updateLongestRoad() []Event {
	holder := -1
	lengths := make([]int, len(that.Players))
	for i, p := range that.Players {
		lengths[i] = LongestRoad(that.Board, p.ID)
		if p.HasLongestRoad {
			holder = i
		}
	}

	best, leaders := 0, []int(nil)
	for i, l := range lengths {
		switch {
		case l > best:
			best, leaders = l, []int{i}
		case l == best:
			leaders = append(leaders, i)
		}
	}

	next := holder
	if holder >= 0 && lengths[holder] >= minLongestRoad {
		if best > lengths[holder] && len(leaders) == 1 {
			next = leaders[0]
		}
	} else {
		next = -1
		if best >= minLongestRoad && len(leaders) == 1 {
			next = leaders[0]
		}
	}

	if next == holder {
		return nil
	}

	if holder >= 0 {
		that.Players[holder].HasLongestRoad = false
	}

	if next < 0 {
		return []Event{LongestRoadChanged{Player: nil, Length: best}}
	}

	that.Players[next].HasLongestRoad = true
	id := entity.PlayerID(next)
	return []Event{LongestRoadChanged{Player: &id, Length: lengths[next]}}
}

// updateLargestArmy hands the bonus to player when their knight count is at least the minimum and
// strictly above the holder's.
func (that *Game) updateLargestArmy(player *entity.Player) []Event {
	if player.HasLargestArmy || player.PlayedKnights < minLargestArmy {
		return nil
	}

	for _, other := range that.Players {
		if other.HasLargestArmy && other.PlayedKnights >= player.PlayedKnights {
			return nil
		}
	}

	for _, other := range that.Players {
		other.HasLargestArmy = false
	}
	player.HasLargestArmy = true

	return []Event{LargestArmyChanged{Player: player.ID, Knights: player.PlayedKnights}}
}
