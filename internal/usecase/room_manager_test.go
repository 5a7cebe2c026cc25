package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/lobby"
)

var errRedisDown = errors.New("redis down")

type mockRoomRepo struct {
	mock.Mock
}

func (that *mockRoomRepo) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

func (that *mockRoomRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

func (that *mockRoomRepo) List(ctx context.Context) ([]*entity.Room, error) {
	args := that.Called(ctx)
	rooms, _ := args.Get(0).([]*entity.Room)
	return rooms, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, id string, game *engine.Game) error {
	return that.Called(ctx, id, game).Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*engine.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*engine.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

type mockArchiveRepo struct {
	mock.Mock
}

func (that *mockArchiveRepo) Save(ctx context.Context, game *entity.ArchivedGame) error {
	return that.Called(ctx, game).Error(0)
}

func (that *mockArchiveRepo) GetByID(ctx context.Context, id string) (*entity.ArchivedGame, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.ArchivedGame)
	return game, args.Error(1)
}

func (that *mockArchiveRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedGame, error) {
	args := that.Called(ctx, limit)
	games, _ := args.Get(0).([]*entity.ArchivedGame)
	return games, args.Error(1)
}

type managerDeps struct {
	rooms   *mockRoomRepo
	games   *mockGameRepo
	archive *mockArchiveRepo
}

func newManager(t *testing.T) (*RoomManager, managerDeps) {
	t.Helper()

	deps := managerDeps{rooms: &mockRoomRepo{}, games: &mockGameRepo{}, archive: &mockArchiveRepo{}}
	rules := Rules{VictoryPoints: 10, BonusPoints: 2, BoardLayout: "standard", Seed: 42, MaxPlayers: 3}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	manager := NewRoomManager(context.Background(), logger, rules, deps.rooms, deps.games, deps.archive)
	t.Cleanup(manager.Close)

	return manager, deps
}

func recv(t *testing.T, ch <-chan lobby.Update) lobby.Update {
	t.Helper()

	select {
	case u, ok := <-ch:
		require.True(t, ok, "outbox closed unexpectedly")
		return u
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for update")
		return lobby.Update{}
	}
}

func TestRoomManager_CreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a waiting room with the host seated", func(t *testing.T) {
		// Given: a repository that accepts the room
		manager, deps := newManager(t)
		deps.rooms.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Room")).Return(nil).Once()

		// When: Alice opens a table without a size
		room, err := manager.CreateRoom(ctx, &entity.Member{ID: "a", Name: "Alice"}, "table", 0)

		// Then: the room uses the configured size and Alice hosts it
		require.NoError(t, err)
		assert.NotEmpty(t, room.ID)
		assert.Equal(t, "a", room.HostID)
		assert.Equal(t, 3, room.MaxPlayers)
		assert.True(t, room.IsWaiting())
		deps.rooms.AssertExpectations(t)
	})

	t.Run("Returns error when the repository fails", func(t *testing.T) {
		manager, deps := newManager(t)
		deps.rooms.On("CreateOrUpdate", ctx, mock.Anything).Return(errRedisDown).Once()

		room, err := manager.CreateRoom(ctx, &entity.Member{ID: "a"}, "table", 4)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, room)
	})
}

func TestRoomManager_JoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds the member and saves the room", func(t *testing.T) {
		// Given: a waiting room with one member
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "table", &entity.Member{ID: "a", Name: "Alice"}, 4)
		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()
		deps.rooms.On("CreateOrUpdate", ctx, room).Return(nil).Once()

		// When: Bob joins
		joined, err := manager.JoinRoom(ctx, "r1", &entity.Member{ID: "b", Name: "Bob"})

		// Then: both are seated
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice", "Bob"}, joined.Names())
		deps.rooms.AssertExpectations(t)
	})

	t.Run("Returns ErrRoomNotFound for an unknown room", func(t *testing.T) {
		manager, deps := newManager(t)
		deps.rooms.On("GetByID", ctx, "nope").Return(nil, apperror.ErrRoomNotFound).Once()

		_, err := manager.JoinRoom(ctx, "nope", &entity.Member{ID: "b"})

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Full room is not saved", func(t *testing.T) {
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "", &entity.Member{ID: "a"}, 2)
		require.NoError(t, room.Join(&entity.Member{ID: "b"}))
		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()

		_, err := manager.JoinRoom(ctx, "r1", &entity.Member{ID: "c"})

		require.ErrorIs(t, err, apperror.ErrRoomFull)
		deps.rooms.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestRoomManager_StartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Host starts the game and subscribers see it", func(t *testing.T) {
		// Given: a two member room with Alice subscribed
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "table", &entity.Member{ID: "a", Name: "Alice"}, 4)
		require.NoError(t, room.Join(&entity.Member{ID: "b", Name: "Bob"}))

		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil)
		deps.rooms.On("CreateOrUpdate", ctx, room).Return(nil).Once()
		deps.games.On("CreateOrUpdate", mock.Anything, "r1", mock.AnythingOfType("*engine.Game")).Return(nil)

		outbox := make(chan lobby.Update, 8)
		require.NoError(t, manager.Subscribe(ctx, "r1", "a", outbox))

		// When: the host starts
		started, err := manager.StartGame(ctx, "r1", "a")

		// Then: the room is ongoing and the lobby announces the seating
		require.NoError(t, err)
		assert.True(t, started.IsOngoing())

		update := recv(t, outbox)
		assert.Equal(t, lobby.TypeGameStarted, update.Type)
		assert.Equal(t, []string{"Alice", "Bob"}, update.Payload.(lobby.StartedView).Players)

		state := recv(t, outbox).Payload.(lobby.StateView)
		require.NotNil(t, state.Seat)
		assert.NotEmpty(t, state.LegalActions)
	})

	t.Run("Only the host may start", func(t *testing.T) {
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "", &entity.Member{ID: "a"}, 4)
		require.NoError(t, room.Join(&entity.Member{ID: "b"}))
		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()

		_, err := manager.StartGame(ctx, "r1", "b")

		require.ErrorIs(t, err, apperror.ErrNotHost)
		assert.True(t, room.IsWaiting())
		deps.rooms.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})
}

func TestRoomManager_LeaveRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Last member leaving deletes the room and its game", func(t *testing.T) {
		// Given: a room with only its host
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "", &entity.Member{ID: "a"}, 4)
		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()
		deps.rooms.On("CreateOrUpdate", ctx, room).Return(nil).Once()
		deps.rooms.On("DeleteByID", ctx, "r1").Return(nil).Once()
		deps.games.On("DeleteByID", ctx, "r1").Return(apperror.ErrGameNotFound).Once()

		// When: the host leaves
		err := manager.LeaveRoom(ctx, "r1", "a")

		// Then: everything about the room is gone
		require.NoError(t, err)
		deps.rooms.AssertExpectations(t)
		deps.games.AssertExpectations(t)
		assert.ErrorIs(t, manager.SubmitAction(ctx, "r1", "a", engine.RollDice{}), apperror.ErrRoomNotFound)
	})

	t.Run("Other members keep the room", func(t *testing.T) {
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "", &entity.Member{ID: "a"}, 4)
		require.NoError(t, room.Join(&entity.Member{ID: "b"}))
		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()
		deps.rooms.On("CreateOrUpdate", ctx, room).Return(nil).Once()

		require.NoError(t, manager.LeaveRoom(ctx, "r1", "a"))

		assert.Equal(t, "b", room.HostID)
		deps.rooms.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})
}

func TestRoomManager_ListRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("Only waiting rooms are listed", func(t *testing.T) {
		manager, deps := newManager(t)
		open := &entity.Room{ID: "open", Status: entity.StatusWaiting}
		busy := &entity.Room{ID: "busy", Status: entity.StatusOngoing}
		deps.rooms.On("List", ctx).Return([]*entity.Room{open, busy}, nil).Once()

		rooms, err := manager.ListRooms(ctx)

		require.NoError(t, err)
		assert.Equal(t, []*entity.Room{open}, rooms)
	})
}

func TestRoomManager_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("Subscribing to an ongoing room reloads its game", func(t *testing.T) {
		// Given: an ongoing room with a stored game but no live lobby
		manager, deps := newManager(t)
		room := entity.NewRoom("r1", "", &entity.Member{ID: "a", Name: "Alice"}, 4)
		require.NoError(t, room.Join(&entity.Member{ID: "b", Name: "Bob"}))
		require.NoError(t, room.Start("a"))

		game, err := engine.New(room.Names())
		require.NoError(t, err)

		deps.rooms.On("GetByID", ctx, "r1").Return(room, nil).Once()
		deps.games.On("GetByID", ctx, "r1").Return(game, nil).Once()
		deps.games.On("CreateOrUpdate", mock.Anything, "r1", game).Return(nil)

		// When: Bob reconnects
		outbox := make(chan lobby.Update, 8)
		require.NoError(t, manager.Subscribe(ctx, "r1", "b", outbox))

		// Then: Bob receives the restored game in his seat
		update := recv(t, outbox)
		require.Equal(t, lobby.TypeGameState, update.Type)
		state := update.Payload.(lobby.StateView)
		require.NotNil(t, state.Seat)
		assert.Equal(t, entity.PlayerID(1), *state.Seat)
	})
}
