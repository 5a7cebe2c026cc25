package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/snapshot"
)

// GameRepository keeps the live snapshot of every running game.
type GameRepository interface {
	CreateOrUpdate(ctx context.Context, id string, game *engine.Game) error
	GetByID(ctx context.Context, id string) (*engine.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores snapshots that expire after ttl without updates; zero keeps them.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, id string, game *engine.Game) error {
	data, err := snapshot.Encode(game)
	if err != nil {
		return fmt.Errorf("could not encode game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(id), data, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*engine.Game, error) {
	data, err := that.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	game, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}

	return game, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}
