package entity

import (
	"testing"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceHand_Debit(t *testing.T) {
	t.Run("Removes the cost when affordable", func(t *testing.T) {
		// Given: a hand with enough for a settlement
		hand := ResourceHand{Brick: 2, Lumber: 1, Grain: 1, Wool: 3}

		// When: paying for a settlement
		err := hand.Debit(SettlementCost)

		// Then: exactly the cost is gone
		require.NoError(t, err)
		assert.Equal(t, ResourceHand{Brick: 1, Wool: 2}, hand)
	})

	t.Run("Leaves the hand untouched when unaffordable", func(t *testing.T) {
		// Given: a hand short on ore
		hand := ResourceHand{Ore: 2, Grain: 5}

		// When: paying for a city
		err := hand.Debit(CityCost)

		// Then: it fails with ErrInsufficientResources and nothing moved
		require.ErrorIs(t, err, apperror.ErrInsufficientResources)
		assert.Equal(t, ResourceHand{Ore: 2, Grain: 5}, hand)
	})

	t.Run("Rejects negative costs", func(t *testing.T) {
		hand := ResourceHand{Wool: 1}

		err := hand.Debit(ResourceHand{Wool: -1})

		require.ErrorIs(t, err, apperror.ErrInsufficientResources)
		assert.Equal(t, 1, hand.Wool)
	})
}

func TestResourceHand_Credit(t *testing.T) {
	t.Run("Adds every count", func(t *testing.T) {
		hand := ResourceHand{Ore: 1}

		err := hand.Credit(ResourceHand{Ore: 2, Wool: 1})

		require.NoError(t, err)
		assert.Equal(t, ResourceHand{Ore: 3, Wool: 1}, hand)
	})

	t.Run("Refuses a negative gain", func(t *testing.T) {
		hand := ResourceHand{Ore: 1}

		err := hand.Credit(ResourceHand{Ore: -1})

		require.ErrorIs(t, err, apperror.ErrInsufficientResources)
		assert.Equal(t, 1, hand.Ore)
	})
}

func TestResourceHand_Helpers(t *testing.T) {
	t.Run("Take empties a single resource", func(t *testing.T) {
		hand := ResourceHand{Ore: 4, Grain: 1}

		taken := hand.Take(Ore)

		assert.Equal(t, 4, taken)
		assert.Equal(t, ResourceHand{Grain: 1}, hand)
	})

	t.Run("NthCard walks resources in fixed order", func(t *testing.T) {
		hand := ResourceHand{Brick: 1, Grain: 2}

		first, ok := hand.NthCard(0)
		require.True(t, ok)
		last, ok := hand.NthCard(2)
		require.True(t, ok)
		_, ok = hand.NthCard(3)

		assert.Equal(t, Brick, first)
		assert.Equal(t, Grain, last)
		assert.False(t, ok)
	})

	t.Run("HandOf builds a single-resource hand", func(t *testing.T) {
		assert.Equal(t, ResourceHand{Wool: 3}, HandOf(Wool, 3))
		assert.Equal(t, 3, HandOf(Wool, 3).Total())
	})
}
