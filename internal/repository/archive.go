package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
)

// ArchiveRepository keeps finished games after their live snapshot is gone.
type ArchiveRepository interface {
	Save(ctx context.Context, game *entity.ArchivedGame) error
	GetByID(ctx context.Context, id string) (*entity.ArchivedGame, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedGame, error)
}

type dbArchive struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) ArchiveRepository {
	return &dbArchive{
		db: db,
	}
}

func (that *dbArchive) Save(ctx context.Context, game *entity.ArchivedGame) error {
	players, err := json.Marshal(game.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}

	scores, err := json.Marshal(game.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	const query = `INSERT OR REPLACE INTO archived_games
		(id, room_name, players, scores, winner, turns, finished_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = that.db.ExecContext(ctx, query,
		game.ID, game.RoomName, string(players), string(scores),
		int(game.Winner), game.Turns, game.FinishedAt.UnixMilli(), game.Snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to archive game: %w", err)
	}

	return nil
}

const archiveColumns = `id, room_name, players, scores, winner, turns, finished_at, snapshot`

func (that *dbArchive) GetByID(ctx context.Context, id string) (*entity.ArchivedGame, error) {
	row := that.db.QueryRowContext(ctx, `SELECT `+archiveColumns+` FROM archived_games WHERE id = ?`, id)

	game, err := scanArchived(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archived game: %w", err)
	}

	return game, nil
}

// ListRecent returns the latest finished games, newest first.
func (that *dbArchive) ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedGame, error) {
	rows, err := that.db.QueryContext(ctx,
		`SELECT `+archiveColumns+` FROM archived_games ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived games: %w", err)
	}
	defer rows.Close()

	var games []*entity.ArchivedGame
	for rows.Next() {
		game, err := scanArchived(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archived game: %w", err)
		}
		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list archived games: %w", err)
	}

	return games, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArchived(row scanner) (*entity.ArchivedGame, error) {
	var (
		game       entity.ArchivedGame
		players    string
		scores     string
		winner     int
		finishedAt int64
	)

	if err := row.Scan(&game.ID, &game.RoomName, &players, &scores, &winner, &game.Turns, &finishedAt, &game.Snapshot); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(players), &game.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &game.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}

	game.Winner = entity.PlayerID(winner)
	game.FinishedAt = time.UnixMilli(finishedAt).UTC()

	return &game, nil
}
