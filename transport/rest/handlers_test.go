package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/snapshot"
)

type mockRoomService struct {
	mock.Mock
}

func (that *mockRoomService) ListRooms(ctx context.Context) ([]*entity.Room, error) {
	args := that.Called(ctx)
	rooms, _ := args.Get(0).([]*entity.Room)
	return rooms, args.Error(1)
}

func (that *mockRoomService) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	args := that.Called(ctx, roomID)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

func (that *mockRoomService) GetGame(ctx context.Context, roomID string) (*engine.Game, error) {
	args := that.Called(ctx, roomID)
	game, _ := args.Get(0).(*engine.Game)
	return game, args.Error(1)
}

func (that *mockRoomService) GetArchived(ctx context.Context, id string) (*entity.ArchivedGame, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.ArchivedGame)
	return game, args.Error(1)
}

func (that *mockRoomService) ListArchived(ctx context.Context, limit int) ([]*entity.ArchivedGame, error) {
	args := that.Called(ctx, limit)
	games, _ := args.Get(0).([]*entity.ArchivedGame)
	return games, args.Error(1)
}

func serve(t *testing.T, rooms *mockRoomService, target string) *httptest.ResponseRecorder {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	router := NewRouter(logger, NewHandlers(logger, rooms))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(t, &mockRoomService{}, "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandlers_Rooms(t *testing.T) {
	t.Run("Returns a room by id", func(t *testing.T) {
		rooms := &mockRoomService{}
		rooms.On("GetRoom", mock.Anything, "r1").Return(&entity.Room{ID: "r1", Name: "table"}, nil).Once()

		rec := serve(t, rooms, "/rooms/r1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"table"`)
	})

	t.Run("Unknown room is a 404 with a reason", func(t *testing.T) {
		rooms := &mockRoomService{}
		rooms.On("GetRoom", mock.Anything, "nope").Return(nil, apperror.ErrRoomNotFound).Once()

		rec := serve(t, rooms, "/rooms/nope")

		require.Equal(t, http.StatusNotFound, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "room_not_found", body.Reason)
	})
}

func TestHandlers_Games(t *testing.T) {
	t.Run("Legal actions for the seat in turn", func(t *testing.T) {
		// Given: a fresh game where seat 0 opens the setup
		game, err := engine.New([]string{"Alice", "Bob"})
		require.NoError(t, err)

		rooms := &mockRoomService{}
		rooms.On("GetGame", mock.Anything, "r1").Return(game, nil)

		// When: both seats ask
		first := serve(t, rooms, "/games/r1/actions/0")
		second := serve(t, rooms, "/games/r1/actions/1")

		// Then: only seat 0 has placements to make
		require.Equal(t, http.StatusOK, first.Code)
		var resp struct {
			Phase   string            `json:"phase"`
			Actions []json.RawMessage `json:"actions"`
		}
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
		assert.Equal(t, "Setup", resp.Phase)
		assert.Len(t, resp.Actions, len(game.LegalActions(0)))

		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
		assert.Empty(t, resp.Actions)
	})

	t.Run("Live game hides development cards", func(t *testing.T) {
		// Given: a game where Alice holds a knight
		game, err := engine.New([]string{"Alice", "Bob"})
		require.NoError(t, err)
		game.Players[0].DevCards = entity.DevCards{Knight: 1}

		rooms := &mockRoomService{}
		rooms.On("GetGame", mock.Anything, "r1").Return(game, nil)

		// When: anyone reads it
		rec := serve(t, rooms, "/games/r1/")

		// Then: neither the deck nor the hand is shown
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			DevDeck []entity.DevCardType `json:"dev_deck"`
			Players []entity.Player      `json:"players"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotContains(t, resp.DevDeck, entity.Knight)
		assert.Equal(t, entity.DevCards{}, resp.Players[0].DevCards)
		assert.Equal(t, 1, game.Players[0].DevCards.Knight)
	})

	t.Run("Unknown seat is a bad request", func(t *testing.T) {
		game, err := engine.New([]string{"Alice", "Bob"})
		require.NoError(t, err)

		rooms := &mockRoomService{}
		rooms.On("GetGame", mock.Anything, "r1").Return(game, nil)

		assert.Equal(t, http.StatusBadRequest, serve(t, rooms, "/games/r1/actions/7").Code)
		assert.Equal(t, http.StatusBadRequest, serve(t, rooms, "/games/r1/actions/x").Code)
	})
}

func TestHandlers_Archive(t *testing.T) {
	t.Run("Limit is clamped", func(t *testing.T) {
		rooms := &mockRoomService{}
		rooms.On("ListArchived", mock.Anything, maxArchiveLimit).Return([]*entity.ArchivedGame{}, nil).Once()

		rec := serve(t, rooms, "/archive?limit=5000")

		assert.Equal(t, http.StatusOK, rec.Code)
		rooms.AssertExpectations(t)
	})

	t.Run("Snapshot is decoded to the final state", func(t *testing.T) {
		game, err := engine.New([]string{"Alice", "Bob", "Carol"})
		require.NoError(t, err)
		data, err := snapshot.Encode(game)
		require.NoError(t, err)

		rooms := &mockRoomService{}
		rooms.On("GetArchived", mock.Anything, "g1").Return(&entity.ArchivedGame{ID: "g1", Snapshot: data}, nil).Once()

		rec := serve(t, rooms, "/archive/g1/snapshot")

		require.Equal(t, http.StatusOK, rec.Code)
		var restored engine.Game
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restored))
		assert.Len(t, restored.Players, 3)
	})
}
