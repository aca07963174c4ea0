package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/three-backend/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type dbResult struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ResultRepository {
	return &dbResult{
		db: db,
	}
}

// Save archives a finished game. Saving the same game twice keeps the first record.
func (that *dbResult) Save(ctx context.Context, result *entity.Result) error {
	const query = `
		INSERT INTO results (game_id, game_type, first_id, second_id, status, winner_id, pattern, moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO NOTHING`

	_, err := that.db.ExecContext(ctx, query,
		result.GameID,
		result.Type,
		result.FirstID,
		result.SecondID,
		result.Status.String(),
		result.WinnerID,
		result.Pattern.String(),
		result.Moves,
		result.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// ListByPlayer returns the latest results the player took part in, newest first.
func (that *dbResult) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	const query = `
		SELECT game_id, game_type, first_id, second_id, status, winner_id, pattern, moves, finished_at
		FROM results
		WHERE first_id = ? OR second_id = ?
		ORDER BY finished_at DESC, game_id
		LIMIT ?`

	rows, err := that.db.QueryContext(ctx, query, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*entity.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}

	return results, nil
}

func scanResult(rows *sql.Rows) (*entity.Result, error) {
	var (
		result     entity.Result
		status     string
		pattern    string
		finishedAt int64
	)

	err := rows.Scan(
		&result.GameID,
		&result.Type,
		&result.FirstID,
		&result.SecondID,
		&status,
		&result.WinnerID,
		&pattern,
		&result.Moves,
		&finishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	if err = result.Status.UnmarshalText([]byte(status)); err != nil {
		return nil, fmt.Errorf("failed to parse result status: %w", err)
	}

	if err = result.Pattern.UnmarshalText([]byte(pattern)); err != nil {
		return nil, fmt.Errorf("failed to parse result pattern: %w", err)
	}

	result.FinishedAt = time.UnixMilli(finishedAt).UTC()

	return &result, nil
}
