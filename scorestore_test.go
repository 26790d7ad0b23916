package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupScoreStore starts a throwaway PostgreSQL container. Tests are
// skipped when Docker is unavailable or when running with -short.
func setupScoreStore(t *testing.T) (*ScoreStore, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fakeartist"),
		postgres.WithUsername("fakeartist"),
		postgres.WithPassword("fakeartist"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := openScoreStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store, dsn
}

func TestScoreStore(t *testing.T) {
	store, dsn := setupScoreStore(t)
	ctx := context.Background()

	t.Run("LoadFromEmptyStore", func(t *testing.T) {
		scores, titles, err := store.LoadScores(ctx)
		require.NoError(t, err)
		assert.Empty(t, scores)
		assert.Empty(t, titles)

		history, err := store.LoadHistory(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("SaveAndLoadScores", func(t *testing.T) {
		err := store.SaveScores(ctx,
			map[string]int{"Alice": 5, "Bob": 2},
			map[string]int{"Alice": 1},
		)
		require.NoError(t, err)

		scores, titles, err := store.LoadScores(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Alice": 5, "Bob": 2}, scores)
		assert.Equal(t, map[string]int{"Alice": 1}, titles)
	})

	t.Run("SaveScoresReplacesSnapshot", func(t *testing.T) {
		err := store.SaveScores(ctx, map[string]int{"Carol": 7}, nil)
		require.NoError(t, err)

		scores, titles, err := store.LoadScores(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Carol": 7}, scores)
		assert.Empty(t, titles)
	})

	t.Run("TitleWithoutScoreStillStored", func(t *testing.T) {
		err := store.SaveScores(ctx, nil, map[string]int{"Dave": 2})
		require.NoError(t, err)

		scores, titles, err := store.LoadScores(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Dave": 0}, scores)
		assert.Equal(t, map[string]int{"Dave": 2}, titles)
	})

	t.Run("SaveAndLoadHistory", func(t *testing.T) {
		first := HistoryEntry{
			Timestamp: time.Now().UTC(),
			Champions: []string{"Alice"},
			Winners:   []string{"Alice"},
			Scores:    map[string]int{"Alice": 5, "Bob": 2},
		}
		second := HistoryEntry{
			Timestamp: time.Now().UTC(),
			Champions: []string{"Bob", "Carol"},
			Scores:    map[string]int{"Bob": 6, "Carol": 6},
		}

		require.NoError(t, store.SaveVictory(ctx, first))
		require.NoError(t, store.SaveVictory(ctx, second))

		history, err := store.LoadHistory(ctx)
		require.NoError(t, err)
		require.Len(t, history, 2)

		assert.Equal(t, first.Champions, history[0].Champions)
		assert.Equal(t, first.Winners, history[0].Winners)
		assert.Equal(t, first.Scores, history[0].Scores)
		assert.WithinDuration(t, first.Timestamp, history[0].Timestamp, time.Second)

		assert.Equal(t, second.Champions, history[1].Champions)
		assert.Empty(t, history[1].Winners)
		assert.Equal(t, second.Scores, history[1].Scores)
	})

	t.Run("ReopenSeesPersistedData", func(t *testing.T) {
		reopened, err := openScoreStore(ctx, dsn)
		require.NoError(t, err)
		defer reopened.Close()

		scores, _, err := reopened.LoadScores(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Dave": 0}, scores)

		history, err := reopened.LoadHistory(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("HubRestoresStandingsOnBoot", func(t *testing.T) {
		require.NoError(t, store.SaveScores(ctx,
			map[string]int{"Alice": 4},
			map[string]int{"Alice": 2},
		))

		words, err := loadWords("")
		require.NoError(t, err)

		h := newHub(&Config{rounds: 2, threshold: 5}, words, store)
		h.restore(ctx)

		assert.Equal(t, map[string]int{"Alice": 4}, h.Scores())
		assert.Equal(t, map[string]int{"Alice": 2}, h.Titles())
		assert.Len(t, h.History(), 2)
	})
}
