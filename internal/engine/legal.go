package engine

import (
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/hexgrid"
)

// LegalActions lists every action player could submit right now. Offers to other players are left
// out since their contents are open-ended; answers to a pending offer are included.
func (that *Game) LegalActions(player entity.PlayerID) []Action {
	if that.IsFinished() {
		return nil
	}
	actor, err := that.Player(player)
	if err != nil {
		return nil
	}

	var legal []Action
	for _, candidate := range that.candidates(actor) {
		if that.Validate(player, candidate) == nil {
			legal = append(legal, candidate)
		}
	}
	return legal
}

// AllLegalActions maps every seat to its legal actions; during a discard several seats can act.
func (that *Game) AllLegalActions() map[entity.PlayerID][]Action {
	all := make(map[entity.PlayerID][]Action, len(that.Players))
	for _, p := range that.Players {
		if actions := that.LegalActions(p.ID); len(actions) > 0 {
			all[p.ID] = actions
		}
	}
	return all
}

func (that *Game) candidates(actor *entity.Player) []Action {
	switch phase := that.Phase.(type) {
	case Setup:
		if phase.Placing == PlacingSettlement {
			return that.settlementCandidates(func(v hexgrid.VertexCoord) Action {
				return PlaceInitialSettlement{Vertex: v}
			})
		}
		if that.SetupSettlement == nil {
			return nil
		}
		var out []Action
		for _, e := range hexgrid.EdgesOfVertex(*that.SetupSettlement) {
			out = append(out, PlaceInitialRoad{Edge: e})
		}
		return out
	case PreRoll:
		return []Action{RollDice{}}
	case MainPhase:
		return that.mainCandidates(actor)
	case RobberMoveRequired:
		var out []Action
		for _, tile := range that.Board.LandTiles() {
			out = append(out, MoveRobber{Hex: tile.Coord})
		}
		return out
	case RobberSteal:
		out := make([]Action, 0, len(phase.Victims))
		for _, victim := range phase.Victims {
			out = append(out, StealFrom{Victim: victim})
		}
		return out
	case DiscardRequired:
		var out []Action
		for _, hand := range discardHands(actor.Resources, actor.Resources.Total()/2) {
			out = append(out, DiscardCards{Hand: hand})
		}
		return out
	case RoadBuildingInProgress:
		return that.roadCandidates()
	default:
		return nil
	}
}

func (that *Game) mainCandidates(actor *entity.Player) []Action {
	out := []Action{EndTurn{}, BuyDevelopmentCard{}, PlayKnight{}, PlayRoadBuilding{}}

	out = append(out, that.roadCandidates()...)
	out = append(out, that.settlementCandidates(func(v hexgrid.VertexCoord) Action {
		return BuildSettlement{Vertex: v}
	})...)
	out = append(out, that.settlementCandidates(func(v hexgrid.VertexCoord) Action {
		return BuildCity{Vertex: v}
	})...)

	for _, first := range entity.AllResources {
		out = append(out, PlayMonopoly{Resource: first})
		for _, second := range entity.AllResources {
			out = append(out, PlayYearOfPlenty{First: first, Second: second})
		}
	}

	for _, give := range entity.AllResources {
		rate := that.Board.MaritimeRate(actor.ID, give)
		for _, receive := range entity.AllResources {
			out = append(out, MaritimeTrade{Give: give, GiveCount: rate, Receive: receive})
		}
	}

	if that.PendingTrade != nil {
		out = append(out, AcceptTrade{}, RejectTrade{}, CancelTrade{})
	}

	return out
}

func (that *Game) settlementCandidates(build func(hexgrid.VertexCoord) Action) []Action {
	vertices := that.Board.LandVertices()
	out := make([]Action, 0, len(vertices))
	for _, v := range vertices {
		out = append(out, build(v))
	}
	return out
}

func (that *Game) roadCandidates() []Action {
	edges := that.Board.LandEdges()
	out := make([]Action, 0, len(edges))
	for _, e := range edges {
		out = append(out, BuildRoad{Edge: e})
	}
	return out
}

// discardHands enumerates every sub-hand of held with exactly count cards.
func discardHands(held entity.ResourceHand, count int) []entity.ResourceHand {
	var out []entity.ResourceHand

	var pick func(i, left int, acc entity.ResourceHand)
	pick = func(i, left int, acc entity.ResourceHand) {
		if i == len(entity.AllResources) {
			if left == 0 {
				out = append(out, acc)
			}
			return
		}
		r := entity.AllResources[i]
		for n := min(left, held.Get(r)); n >= 0; n-- {
			next := acc
			next.Add(r, n)
			pick(i+1, left-n, next)
		}
	}
	pick(0, count, entity.ResourceHand{})

	return out
}
