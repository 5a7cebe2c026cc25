package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepository(t *testing.T) {
	t.Run("Stores, lists and deletes rooms", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: two rooms created one after the other
		first := entity.NewRoom("r1", "first", &entity.Member{ID: "a", Name: "Alice"}, 4)
		second := entity.NewRoom("r2", "second", &entity.Member{ID: "b", Name: "Bob"}, 3)
		second.CreatedAt = first.CreatedAt.Add(time.Second)

		require.NoError(t, roomRepo.CreateOrUpdate(ctx, first))
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, second))

		// When: listing
		rooms, err := roomRepo.List(ctx)

		// Then: both come back oldest first
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, "r1", rooms[0].ID)
		assert.Equal(t, "second", rooms[1].Name)
		assert.Equal(t, []string{"Bob"}, rooms[1].Names())

		// When: deleting the first
		require.NoError(t, roomRepo.DeleteByID(ctx, "r1"))

		// Then: it is gone from reads and the index
		_, err = roomRepo.GetByID(ctx, "r1")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)

		rooms, err = roomRepo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
	})

	t.Run("Deleting an unknown room", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		err := roomRepo.DeleteByID(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}
