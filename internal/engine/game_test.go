package engine

import (
	"encoding/json"
	"math/rand"
	"slices"
	"testing"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, players int) *Game {
	t.Helper()

	names := []string{"Alice", "Bob", "Charlie", "Dana"}[:players]
	game, err := New(names, WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)

	return game
}

// inMainPhase skips the setup draft and hands the turn to seat 0 after its roll.
func inMainPhase(game *Game) *Game {
	game.Phase = MainPhase{}
	game.CurrentPlayer = 0
	game.Turn = 1
	return game
}

func mustApply(t *testing.T, game *Game, player entity.PlayerID, action Action) []Event {
	t.Helper()

	events, err := game.ApplyAction(player, action)
	require.NoError(t, err, action.Name())

	return events
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name())
	}
	return names
}

func TestNew(t *testing.T) {
	t.Run("Rejects too few or too many players", func(t *testing.T) {
		_, err := New([]string{"Alice"})
		require.ErrorIs(t, err, ErrInvalidPlayerCount)

		_, err = New([]string{"a", "b", "c", "d", "e"})
		require.ErrorIs(t, err, ErrInvalidPlayerCount)
	})

	t.Run("Starts the setup draft with a shuffled full deck", func(t *testing.T) {
		// When: creating a three player game
		game := newTestGame(t, 3)

		// Then: seat 0 places the first settlement
		assert.Equal(t, Setup{Round: 1, Placing: PlacingSettlement}, game.Phase)
		assert.Equal(t, entity.PlayerID(0), game.CurrentPlayer)
		assert.Len(t, game.DevDeck, 25)
		assert.NotEqual(t, entity.NewDevDeck(), game.DevDeck)
		assert.Equal(t, DefaultVictoryTarget, game.VictoryTarget)
		assert.Equal(t, DefaultBonusPoints, game.BonusPoints)
	})

	t.Run("Options override the rules", func(t *testing.T) {
		game, err := New([]string{"a", "b"}, WithVictoryTarget(5), WithBonusPoints(2))

		require.NoError(t, err)
		assert.Equal(t, 5, game.VictoryTarget)
		assert.Equal(t, 2, game.BonusPoints)
	})
}

func TestSetup(t *testing.T) {
	t.Run("Snake order and second settlement resources", func(t *testing.T) {
		// Given: a fresh three player game
		game := newTestGame(t, 3)
		var order []entity.PlayerID
		second := make(map[entity.PlayerID]entity.ResourceHand)

		// When: everyone places with the first legal option
		for isPhase[Setup](game.Phase) {
			player := game.CurrentPlayer
			legal := game.LegalActions(player)
			require.NotEmpty(t, legal)

			if _, ok := legal[0].(PlaceInitialSettlement); ok {
				order = append(order, player)
			}

			for _, event := range mustApply(t, game, player, legal[0]) {
				if gained, ok := event.(ResourcesDistributed); ok {
					second[player] = gained.Gains[player]
				}
			}
		}

		// Then: seats go 0,1,2 then 2,1,0 and seat 0 opens the game
		assert.Equal(t, []entity.PlayerID{0, 1, 2, 2, 1, 0}, order)
		assert.Equal(t, PreRoll{}, game.Phase)
		assert.Equal(t, entity.PlayerID(0), game.CurrentPlayer)
		assert.Equal(t, 1, game.Turn)

		for _, p := range game.Players {
			assert.Equal(t, entity.InitialSettlements-2, p.SettlementsRemaining)
			assert.Equal(t, entity.InitialRoads-2, p.RoadsRemaining)
			assert.Equal(t, 2, game.PublicVictoryPoints(p.ID))
			assert.Positive(t, p.Resources.Total())
			assert.Equal(t, second[p.ID], p.Resources)
		}
	})

	t.Run("Road must touch the settlement just placed", func(t *testing.T) {
		// Given: seat 0 placed a settlement
		game := newTestGame(t, 2)
		mustApply(t, game, 0, game.LegalActions(0)[0])

		// When: placing a road far away
		far := game.Board.LandEdges()
		_, err := game.ApplyAction(0, PlaceInitialRoad{Edge: far[len(far)-1]})

		// Then: the road is refused and only the adjoining edges are offered
		require.ErrorIs(t, err, apperror.ErrIllegalPlacement)
		for _, action := range game.LegalActions(0) {
			road, ok := action.(PlaceInitialRoad)
			require.True(t, ok)
			assert.NoError(t, game.Validate(0, road))
		}
	})

	t.Run("Out of turn placement is refused", func(t *testing.T) {
		game := newTestGame(t, 2)

		_, err := game.ApplyAction(1, game.LegalActions(0)[0])

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, game.LegalActions(1))
	})
}

func TestRandomPlaythrough(t *testing.T) {
	// Given: a seeded four player game
	game := newTestGame(t, 4)
	pick := rand.New(rand.NewSource(99))

	// When: random legal actions are applied
	for step := 0; step < 3000 && !game.IsFinished(); step++ {
		all := game.AllLegalActions()
		require.NotEmpty(t, all, "no legal action in %s", game.Phase.Name())

		seats := make([]entity.PlayerID, 0, len(all))
		for seat := range all {
			seats = append(seats, seat)
		}
		slices.Sort(seats)

		// Then: every listed action validates and applies, and nobody else may end the turn
		for _, p := range game.Players {
			if _, ok := all[p.ID]; !ok {
				require.Error(t, game.Validate(p.ID, EndTurn{}))
			}
		}

		seat := seats[pick.Intn(len(seats))]
		actions := all[seat]
		action := actions[pick.Intn(len(actions))]

		require.NoError(t, game.Validate(seat, action))
		_, err := game.ApplyAction(seat, action)
		require.NoError(t, err, "%s by %d in %s", action.Name(), seat, game.Phase.Name())

		longest := 0
		for _, p := range game.Players {
			require.True(t, p.Resources.IsValid())
			require.GreaterOrEqual(t, p.RoadsRemaining, 0)
			require.GreaterOrEqual(t, p.SettlementsRemaining, 0)
			require.GreaterOrEqual(t, p.CitiesRemaining, 0)
			if p.HasLongestRoad {
				longest++
			}
		}
		require.LessOrEqual(t, longest, 1)
	}

	if winner, ok := game.Winner(); ok {
		assert.GreaterOrEqual(t, game.VictoryPoints(winner), game.VictoryTarget)
		assert.Empty(t, game.AllLegalActions())
	}
}

func TestGame_Redacted(t *testing.T) {
	t.Run("A seat sees its own cards but not the deck or other hands", func(t *testing.T) {
		// Given: both seats hold development cards
		game := newTestGame(t, 2)
		game.Players[0].DevCards = entity.DevCards{Knight: 1}
		game.Players[1].DevCards = entity.DevCards{VictoryPoint: 2}
		game.Players[1].DevCardsBoughtThisTurn = entity.DevCards{Monopoly: 1}
		deck := slices.Clone(game.DevDeck)

		// When: seat 0 looks
		seat := entity.PlayerID(0)
		view := game.Redacted(&seat)

		// Then: the deck keeps its size but no faces, and seat 1's cards are gone
		require.Len(t, view.DevDeck, len(deck))
		for _, card := range view.DevDeck {
			assert.Equal(t, entity.HiddenCard, card)
		}
		assert.Equal(t, entity.DevCards{Knight: 1}, view.Players[0].DevCards)
		assert.Equal(t, entity.DevCards{}, view.Players[1].DevCards)
		assert.Equal(t, entity.DevCards{}, view.Players[1].DevCardsBoughtThisTurn)

		// And: the game itself is untouched
		assert.Equal(t, deck, game.DevDeck)
		assert.Equal(t, entity.DevCards{VictoryPoint: 2}, game.Players[1].DevCards)
	})

	t.Run("A spectator sees no development cards", func(t *testing.T) {
		game := newTestGame(t, 2)
		game.Players[0].DevCards = entity.DevCards{Knight: 1}

		view := game.Redacted(nil)

		assert.Equal(t, entity.DevCards{}, view.Players[0].DevCards)
	})

	t.Run("Drawn cards are only named to the buyer", func(t *testing.T) {
		events := []Event{DevelopmentCardPurchased{Player: 1, Card: entity.Knight}, TurnEnded{Player: 1, Next: 0, Turn: 3}}
		buyer, other := entity.PlayerID(1), entity.PlayerID(0)

		assert.Equal(t, entity.Knight, RedactEvents(events, &buyer)[0].(DevelopmentCardPurchased).Card)
		assert.Equal(t, entity.HiddenCard, RedactEvents(events, &other)[0].(DevelopmentCardPurchased).Card)
		assert.Equal(t, events[1], RedactEvents(events, nil)[1])
	})
}

func TestGame_JSON(t *testing.T) {
	t.Run("Round trips a game in progress", func(t *testing.T) {
		// Given: a game part way through setup with a pending road placement
		game := newTestGame(t, 3)
		mustApply(t, game, 0, game.LegalActions(0)[0])

		// When: encoding and decoding
		data, err := json.Marshal(game)
		require.NoError(t, err)

		var restored Game
		require.NoError(t, json.Unmarshal(data, &restored))

		// Then: the decoded game is the same state
		again, err := json.Marshal(&restored)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(again))
		assert.Equal(t, game.Phase, restored.Phase)
		assert.Equal(t, game.Players, restored.Players)
		assert.Equal(t, *game.SetupSettlement, *restored.SetupSettlement)
		assert.Equal(t, game.LegalActions(0), restored.LegalActions(0))
	})

	t.Run("Phases are externally tagged", func(t *testing.T) {
		data, err := MarshalPhase(PreRoll{})
		require.NoError(t, err)
		assert.JSONEq(t, `"PreRoll"`, string(data))

		data, err = MarshalPhase(DiscardRequired{PlayersRemaining: []entity.PlayerID{1, 2}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"DiscardRequired":{"players_remaining":[1,2]}}`, string(data))

		phase, err := UnmarshalPhase(data)
		require.NoError(t, err)
		assert.Equal(t, DiscardRequired{PlayersRemaining: []entity.PlayerID{1, 2}}, phase)
	})

	t.Run("Actions decode from either form", func(t *testing.T) {
		action, err := UnmarshalAction([]byte(`"EndTurn"`))
		require.NoError(t, err)
		assert.Equal(t, EndTurn{}, action)

		action, err = UnmarshalAction([]byte(`{"PlayMonopoly":{"resource":"Ore"}}`))
		require.NoError(t, err)
		assert.Equal(t, PlayMonopoly{Resource: entity.Ore}, action)

		_, err = UnmarshalAction([]byte(`"Teleport"`))
		require.ErrorIs(t, err, ErrUnknownTag)
	})
}
