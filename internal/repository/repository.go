package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

var (
	ErrNotFound   = errors.New("game session not found")
	ErrConstraint = errors.New("constraint violation")
	ErrConflict   = errors.New("game session was changed concurrently")
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps live game sessions between requests.
type Store interface {
	CreateGameSession(ctx context.Context, session *mines.Session, params CreateGameSessionParams) (*GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params UpdateGameSessionParams) (*GameSession, error)
	DeleteStaleGameSessions(ctx context.Context, before time.Time) (int64, error)
}

var (
	_ Store = (*Queries)(nil)
	_ Store = (*Memory)(nil)
)

// Queries is the Postgres-backed session store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
	default:
		return err
	}
}
