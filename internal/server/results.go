package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"takesix-server/internal/game"
)

// ResultStore archives finished games in Postgres. Rooms themselves
// live only in memory; the archive is write-only history for finished
// tables and the server runs fine without it.
type ResultStore struct {
	pool *pgxpool.Pool
}

const createResultsTable = `
CREATE TABLE IF NOT EXISTS game_results (
	id BIGSERIAL PRIMARY KEY,
	room_code TEXT NOT NULL,
	rounds INT NOT NULL,
	player_name TEXT NOT NULL,
	score INT NOT NULL,
	placement INT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewResultStore(ctx context.Context, databaseURL string) (*ResultStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, createResultsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}
	return &ResultStore{pool: pool}, nil
}

// SaveResult writes one row per participant of a finished game.
// Placement is 1-based over the ascending final ranking.
func (rs *ResultStore) SaveResult(ctx context.Context, roomCode string, rounds int, scores []game.ScoreEntry) error {
	for i, entry := range scores {
		_, err := rs.pool.Exec(ctx,
			`INSERT INTO game_results (room_code, rounds, player_name, score, placement)
			 VALUES ($1, $2, $3, $4, $5)`,
			roomCode, rounds, entry.Name, entry.Score, i+1,
		)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", entry.Name, err)
		}
	}
	return nil
}

func (rs *ResultStore) Close() {
	rs.pool.Close()
}
