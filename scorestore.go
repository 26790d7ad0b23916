package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storeTimeout bounds every score store round trip so a stalled database
// never blocks the game loop's helper goroutines forever.
const storeTimeout = 5 * time.Second

const scoreSchema = `
CREATE TABLE IF NOT EXISTS standings (
	name TEXT PRIMARY KEY,
	score INTEGER NOT NULL DEFAULT 0,
	titles INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS victories (
	id BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	champions TEXT[] NOT NULL,
	winners TEXT[],
	scores JSONB NOT NULL
);`

// ScoreStore persists standings and victory history in PostgreSQL so they
// survive server restarts. All methods are safe for concurrent use.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func openScoreStore(ctx context.Context, dsn string) (*ScoreStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to score store: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging score store: %w", err)
	}

	if _, err := pool.Exec(ctx, scoreSchema); err != nil {
		pool.Close()

		return nil, fmt.Errorf("creating score store schema: %w", err)
	}

	return &ScoreStore{pool: pool}, nil
}

func (s *ScoreStore) Close() {
	s.pool.Close()
}

// SaveScores replaces the stored standings with the given snapshot.
func (s *ScoreStore) SaveScores(ctx context.Context, scores, titles map[string]int) error {
	names := make(map[string]struct{}, len(scores))
	for name := range scores {
		names[name] = struct{}{}
	}
	for name := range titles {
		names[name] = struct{}{}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning standings transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM standings"); err != nil {
		return fmt.Errorf("clearing standings: %w", err)
	}

	for name := range names {
		_, err := tx.Exec(ctx,
			"INSERT INTO standings (name, score, titles, updated_at) VALUES ($1, $2, $3, now())",
			name, scores[name], titles[name])
		if err != nil {
			return fmt.Errorf("inserting standings for %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing standings: %w", err)
	}

	return nil
}

// SaveVictory appends one victory to the archive.
func (s *ScoreStore) SaveVictory(ctx context.Context, entry HistoryEntry) error {
	scores, err := json.Marshal(entry.Scores)
	if err != nil {
		return fmt.Errorf("encoding victory scores: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO victories (occurred_at, champions, winners, scores) VALUES ($1, $2, $3, $4)",
		entry.Timestamp, entry.Champions, entry.Winners, scores)
	if err != nil {
		return fmt.Errorf("inserting victory: %w", err)
	}

	return nil
}

// LoadScores returns the stored standings. Names whose title count is zero
// appear only in the score map, mirroring how the hub tracks them.
func (s *ScoreStore) LoadScores(ctx context.Context) (map[string]int, map[string]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT name, score, titles FROM standings")
	if err != nil {
		return nil, nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int)
	titles := make(map[string]int)

	for rows.Next() {
		var (
			name         string
			score, title int
		)

		if err := rows.Scan(&name, &score, &title); err != nil {
			return nil, nil, fmt.Errorf("scanning standings: %w", err)
		}

		scores[name] = score
		if title > 0 {
			titles[name] = title
		}
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading standings: %w", err)
	}

	return scores, titles, nil
}

// LoadHistory returns every archived victory, oldest first.
func (s *ScoreStore) LoadHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, "SELECT occurred_at, champions, winners, scores FROM victories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying victories: %w", err)
	}
	defer rows.Close()

	var history []HistoryEntry

	for rows.Next() {
		var (
			entry  HistoryEntry
			scores []byte
		)

		if err := rows.Scan(&entry.Timestamp, &entry.Champions, &entry.Winners, &scores); err != nil {
			return nil, fmt.Errorf("scanning victory: %w", err)
		}

		if err := json.Unmarshal(scores, &entry.Scores); err != nil {
			return nil, fmt.Errorf("decoding victory scores: %w", err)
		}

		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading victories: %w", err)
	}

	return history, nil
}
