package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/autoplay"
	"github.com/rocketscienceinc/settlers-backend/internal/board"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/lobby"
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Room, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, id string, game *engine.Game) error
	GetByID(ctx context.Context, id string) (*engine.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type archiveRepo interface {
	Save(ctx context.Context, game *entity.ArchivedGame) error
	GetByID(ctx context.Context, id string) (*entity.ArchivedGame, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedGame, error)
}

// Rules are the table settings every new game is created with.
type Rules struct {
	VictoryPoints int
	BonusPoints   int
	BoardLayout   string
	// Seed fixes dice and layouts for every game when non-zero.
	Seed        int64
	MaxPlayers  int
	TurnTimeout time.Duration
}

// RoomManager owns the rooms and one lobby per live room. Room changes are read-modify-write on the
// repository, so they are serialized by mu; game actions are serialized by the room's lobby.
type RoomManager struct {
	ctx    context.Context
	logger *slog.Logger
	rules  Rules

	roomRepo    roomRepo
	gameRepo    gameRepo
	archiveRepo archiveRepo

	mu      sync.Mutex
	lobbies map[string]*lobby.Lobby
}

func NewRoomManager(ctx context.Context, logger *slog.Logger, rules Rules, roomRepo roomRepo, gameRepo gameRepo, archiveRepo archiveRepo) *RoomManager {
	return &RoomManager{
		ctx:    ctx,
		logger: logger.With("component", "room_manager"),
		rules:  rules,

		roomRepo:    roomRepo,
		gameRepo:    gameRepo,
		archiveRepo: archiveRepo,

		lobbies: make(map[string]*lobby.Lobby),
	}
}

func (that *RoomManager) CreateRoom(ctx context.Context, host *entity.Member, name string, maxPlayers int) (*entity.Room, error) {
	if maxPlayers <= 0 {
		maxPlayers = that.rules.MaxPlayers
	}

	room := entity.NewRoom(uuid.NewString(), name, host, maxPlayers)

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.lobbies[room.ID] = that.newLobby(room)

	that.logger.Info("room created", "method", "CreateRoom", "room", room.ID, "host", host.ID)
	return room, nil
}

func (that *RoomManager) JoinRoom(ctx context.Context, roomID string, member *entity.Member) (*entity.Room, error) {
	room, err := that.updateRoom(ctx, roomID, func(room *entity.Room) error {
		return room.Join(member)
	})
	if err != nil {
		return nil, err
	}

	that.publishRoom(ctx, room)
	return room, nil
}

// LeaveRoom removes the member; a room nobody is left in is deleted together with its game.
func (that *RoomManager) LeaveRoom(ctx context.Context, roomID, memberID string) error {
	log := that.logger.With("method", "LeaveRoom", "room", roomID)

	room, err := that.updateRoom(ctx, roomID, func(room *entity.Room) error {
		return room.Leave(memberID)
	})
	if err != nil {
		return err
	}

	if !room.IsAbandoned() {
		that.publishRoom(ctx, room)
		return nil
	}

	that.mu.Lock()
	l := that.lobbies[roomID]
	delete(that.lobbies, roomID)
	err = that.roomRepo.DeleteByID(ctx, roomID)
	that.mu.Unlock()

	if l != nil {
		l.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if err = that.gameRepo.DeleteByID(ctx, roomID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
	}

	log.Info("room abandoned")
	return nil
}

// ListRooms returns the rooms still open for joining.
func (that *RoomManager) ListRooms(ctx context.Context) ([]*entity.Room, error) {
	rooms, err := that.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	waiting := make([]*entity.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsWaiting() {
			waiting = append(waiting, room)
		}
	}
	return waiting, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// StartGame seats the room's members in join order and hands the new game to the room's lobby.
func (that *RoomManager) StartGame(ctx context.Context, roomID, memberID string) (*entity.Room, error) {
	var game *engine.Game

	room, err := that.updateRoom(ctx, roomID, func(room *entity.Room) error {
		if err := room.Start(memberID); err != nil {
			return err
		}

		var err error
		game, err = that.newGame(room.Names())
		return err
	})
	if err != nil {
		return nil, err
	}

	l, err := that.lobbyFor(ctx, room)
	if err != nil {
		return nil, err
	}

	if err = l.Send(ctx, lobby.Start{Members: room.Members, Game: game}); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	that.publishRoom(ctx, room)

	that.logger.Info("game started", "method", "StartGame", "room", roomID, "players", len(room.Members))
	return room, nil
}

// Subscribe attaches outbox to the room's lobby. The lobby owns outbox afterwards.
func (that *RoomManager) Subscribe(ctx context.Context, roomID, memberID string, outbox chan lobby.Update) error {
	room, err := that.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	l, err := that.lobbyFor(ctx, room)
	if err != nil {
		return err
	}

	return l.Send(ctx, lobby.Subscribe{MemberID: memberID, Outbox: outbox})
}

// Unsubscribe drops outbox from the room. An outbox already replaced by a newer connection of the
// same member is left alone.
func (that *RoomManager) Unsubscribe(ctx context.Context, roomID, memberID string, outbox chan lobby.Update) error {
	l, ok := that.liveLobby(roomID)
	if !ok {
		return nil
	}
	return l.Send(ctx, lobby.Unsubscribe{MemberID: memberID, Outbox: outbox})
}

func (that *RoomManager) SubmitAction(ctx context.Context, roomID, memberID string, action engine.Action) error {
	l, ok := that.liveLobby(roomID)
	if !ok {
		return apperror.ErrRoomNotFound
	}
	return l.Send(ctx, lobby.Submit{MemberID: memberID, Action: action})
}

func (that *RoomManager) Chat(ctx context.Context, roomID string, member *entity.Member, text string) error {
	l, ok := that.liveLobby(roomID)
	if !ok {
		return apperror.ErrRoomNotFound
	}
	return l.Send(ctx, lobby.Chat{MemberID: member.ID, Name: member.Name, Text: text})
}

func (that *RoomManager) GetGame(ctx context.Context, roomID string) (*engine.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (that *RoomManager) GetArchived(ctx context.Context, id string) (*entity.ArchivedGame, error) {
	game, err := that.archiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get archived game: %w", err)
	}
	return game, nil
}

func (that *RoomManager) ListArchived(ctx context.Context, limit int) ([]*entity.ArchivedGame, error) {
	games, err := that.archiveRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived games: %w", err)
	}
	return games, nil
}

// Close stops every lobby.
func (that *RoomManager) Close() {
	that.mu.Lock()
	lobbies := that.lobbies
	that.lobbies = make(map[string]*lobby.Lobby)
	that.mu.Unlock()

	for _, l := range lobbies {
		l.Close()
	}
}

func (that *RoomManager) updateRoom(ctx context.Context, roomID string, change func(*entity.Room) error) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if err = change(room); err != nil {
		return nil, err
	}

	if err = that.roomRepo.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return room, nil
}

func (that *RoomManager) newGame(names []string) (*engine.Game, error) {
	seed := that.rules.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	layout, err := board.New(that.rules.BoardLayout, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}

	game, err := engine.New(names,
		engine.WithRand(rng),
		engine.WithBoard(layout),
		engine.WithVictoryTarget(that.rules.VictoryPoints),
		engine.WithBonusPoints(that.rules.BonusPoints),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (that *RoomManager) newLobby(room *entity.Room) *lobby.Lobby {
	opts := []lobby.Option{
		lobby.WithTurnTimeout(that.rules.TurnTimeout),
		lobby.WithFinishHook(func(roomID string) {
			go that.finishRoom(roomID)
		}),
	}
	if that.rules.Seed != 0 {
		opts = append(opts, lobby.WithAutoplay(autoplay.NewRandom(rand.New(rand.NewSource(that.rules.Seed)))))
	}

	return lobby.New(that.ctx, that.logger, room, that.gameRepo, that.archiveRepo, opts...)
}

func (that *RoomManager) liveLobby(roomID string) (*lobby.Lobby, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	l, ok := that.lobbies[roomID]
	return l, ok
}

// lobbyFor returns the room's lobby, reopening it after a restart. An ongoing game is reloaded from
// its last snapshot.
func (that *RoomManager) lobbyFor(ctx context.Context, room *entity.Room) (*lobby.Lobby, error) {
	that.mu.Lock()
	l, ok := that.lobbies[room.ID]
	if ok {
		that.mu.Unlock()
		return l, nil
	}
	l = that.newLobby(room)
	that.lobbies[room.ID] = l
	that.mu.Unlock()

	if !room.IsOngoing() {
		return l, nil
	}

	game, err := that.gameRepo.GetByID(ctx, room.ID)
	if err != nil {
		// StartGame hands over its own game.
		if errors.Is(err, apperror.ErrGameNotFound) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}
	game.SetRand(rand.New(rand.NewSource(time.Now().UnixNano())))

	if err = l.Send(ctx, lobby.Start{Members: room.Members, Game: game}); err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	that.logger.Info("game restored", "method", "lobbyFor", "room", room.ID, "turn", game.Turn)
	return l, nil
}

func (that *RoomManager) publishRoom(ctx context.Context, room *entity.Room) {
	l, ok := that.liveLobby(room.ID)
	if !ok {
		return
	}

	update := lobby.Update{Type: lobby.TypeRoomUpdated, Payload: room}
	if err := l.Send(ctx, lobby.Publish{Update: update}); err != nil {
		that.logger.Warn("failed to publish room", "method", "publishRoom", "room", room.ID, "error", err)
	}
}

func (that *RoomManager) finishRoom(roomID string) {
	log := that.logger.With("method", "finishRoom", "room", roomID)

	room, err := that.updateRoom(that.ctx, roomID, func(room *entity.Room) error {
		room.Status = entity.StatusFinished
		return nil
	})
	if err != nil {
		log.Error("failed to mark room finished", "error", err)
		return
	}

	if err = that.gameRepo.DeleteByID(that.ctx, roomID); err != nil {
		log.Error("failed to delete finished game", "error", err)
	}

	that.publishRoom(that.ctx, room)
	log.Info("room finished")
}
