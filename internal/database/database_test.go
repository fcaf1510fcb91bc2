package database

import (
	"context"
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/000001_game_session.up.sql")
	assert.Contains(t, names, "migrations/000001_game_session.down.sql")
	assert.Contains(t, names, "migrations/000002_game_session_version.up.sql")
	assert.Contains(t, names, "migrations/000002_game_session_version.down.sql")
}

type fakeMigrator struct {
	upErr  error
	closed bool
}

func (m *fakeMigrator) Up() error {
	return m.upErr
}

func (m *fakeMigrator) Close() (error, error) {
	m.closed = true
	return nil, nil
}

func TestUpClosesOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		upErr  error
		failed bool
	}{
		{"applied", nil, false},
		{"nothing to apply", migrate.ErrNoChange, false},
		{"broken migration", errors.New("syntax error at or near"), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := &fakeMigrator{upErr: test.upErr}
			err := up(m)
			if test.failed {
				assert.ErrorIs(t, err, test.upErr)
				assert.True(t, m.closed)
			} else {
				assert.NoError(t, err)
				assert.False(t, m.closed)
			}
		})
	}
}

// TestGameSessionQueries runs against a real database when
// TEST_DATABASE_URL is set.
func TestGameSessionQueries(t *testing.T) {
	url, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok {
		t.Skip("TEST_DATABASE_URL not set")
	}
	t.Setenv("DATABASE_URL", url)

	ctx := context.Background()
	pool, migrator, err := ConnectAndMigrate(ctx, Migrations)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Close()
		migrator.Close()
	})

	q := repository.New(pool)
	s := mines.NewSession(rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, s.Start(mines.Easy))

	created, err := q.CreateGameSession(ctx, s, repository.CreateGameSessionParams{Seed: "seed"})
	require.NoError(t, err)
	assert.Equal(t, "playing", created.Status)

	_, err = s.Click(4, 4)
	require.NoError(t, err)
	updated, err := q.UpdateGameSession(ctx, created.GameSessionId, repository.NewUpdateParams(s, time.Now()))
	require.NoError(t, err)

	assert.Equal(t, created.Version+1, updated.Version)

	stale := repository.NewUpdateParams(s, time.Now())
	stale.Version = &created.Version
	_, err = q.UpdateGameSession(ctx, created.GameSessionId, stale)
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = q.UpdateGameSession(ctx, -1, stale)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	decoded, err := updated.Decode()
	require.NoError(t, err)
	assert.Equal(t, s.Board.Cells, decoded.Board.Cells)

	fetched, err := q.FetchGameSession(ctx, created.GameSessionId)
	require.NoError(t, err)
	assert.Equal(t, updated.Payload, fetched.Payload)

	_, err = q.FetchGameSession(ctx, -1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := q.DeleteStaleGameSessions(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
}
