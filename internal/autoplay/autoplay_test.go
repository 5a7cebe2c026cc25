package autoplay

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

func newGame(t *testing.T, opts ...engine.Option) *engine.Game {
	t.Helper()

	game, err := engine.New([]string{"Alice", "Bob", "Carol"}, append([]engine.Option{engine.WithRand(rand.New(rand.NewSource(7)))}, opts...)...)
	require.NoError(t, err)
	return game
}

func TestRandom_Choose(t *testing.T) {
	t.Run("Setup picks a legal placement for the seat in turn", func(t *testing.T) {
		// Given: a fresh game
		game := newGame(t)
		bot := NewRandom(rand.New(rand.NewSource(1)))

		// When: the bot chooses
		seat, action, err := bot.Choose(game)

		// Then: the opening seat places a settlement it is allowed to place
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerID(0), seat)
		assert.IsType(t, engine.PlaceInitialSettlement{}, action)
		assert.NoError(t, game.Validate(seat, action))
	})

	t.Run("Plays the whole setup and then rolls", func(t *testing.T) {
		// Given: a game driven only by the bot
		game := newGame(t)
		bot := NewRandom(rand.New(rand.NewSource(1)))

		// When: it acts until the setup is over
		for i := 0; i < 12; i++ {
			seat, action, err := bot.Choose(game)
			require.NoError(t, err)
			_, err = game.ApplyAction(seat, action)
			require.NoError(t, err)
		}

		// Then: the first regular turn starts with a roll
		require.IsType(t, engine.PreRoll{}, game.Phase)
		seat, action, err := bot.Choose(game)
		require.NoError(t, err)
		assert.Equal(t, game.CurrentPlayer, seat)
		assert.Equal(t, engine.RollDice{}, action)
	})

	t.Run("Same seed makes the same choices", func(t *testing.T) {
		first, second := newGame(t), newGame(t)
		a := NewRandom(rand.New(rand.NewSource(99)))
		b := NewRandom(rand.New(rand.NewSource(99)))

		for i := 0; i < 6; i++ {
			seatA, actionA, err := a.Choose(first)
			require.NoError(t, err)
			seatB, actionB, err := b.Choose(second)
			require.NoError(t, err)

			assert.Equal(t, seatA, seatB)
			assert.Equal(t, actionA, actionB)

			_, err = first.ApplyAction(seatA, actionA)
			require.NoError(t, err)
			_, err = second.ApplyAction(seatB, actionB)
			require.NoError(t, err)
		}
	})

	t.Run("Finished game has no moves", func(t *testing.T) {
		// Given: a game won by the first settlement
		game := newGame(t, engine.WithVictoryTarget(1))
		bot := NewRandom(nil)
		seat, action, err := bot.Choose(game)
		require.NoError(t, err)
		_, err = game.ApplyAction(seat, action)
		require.NoError(t, err)
		require.True(t, game.IsFinished())

		// When / Then
		_, _, err = bot.Choose(game)
		assert.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}
