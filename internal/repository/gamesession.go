package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

type GameSession struct {
	GameSessionId   int64              `db:"game_session_id"`
	RowCount        int                `db:"row_count"`
	ColCount        int                `db:"col_count"`
	BombProbability float64            `db:"bomb_probability"`
	MaxProbability  float64            `db:"max_probability"`
	Status          string             `db:"status"`
	Seed            string             `db:"seed"`
	Payload         []byte             `db:"payload"`
	StartedAt       pgtype.Timestamptz `db:"started_at"`
	EndedAt         pgtype.Timestamptz `db:"ended_at"`
	CreatedAt       pgtype.Timestamptz `db:"created_at"`
	UpdatedAt       pgtype.Timestamptz `db:"updated_at"`
	Version         int64              `db:"version"`
}

func (s GameSession) Difficulty() mines.Difficulty {
	return mines.Difficulty{
		RowCount:        s.RowCount,
		ColCount:        s.ColCount,
		BombProbability: s.BombProbability,
		MaxProbability:  s.MaxProbability,
	}
}

// Decode restores the live session and seeds its random source.
func (s GameSession) Decode() (*mines.Session, error) {
	return mines.DecodeSession(s.Payload, mines.NewSource(s.Seed))
}

type CreateGameSessionParams struct {
	Seed string
}

func (q Queries) CreateGameSession(
	ctx context.Context, session *mines.Session, params CreateGameSessionParams,
) (*GameSession, error) {
	payload, err := session.Bytes()
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"row_count":        session.Difficulty.RowCount,
		"col_count":        session.Difficulty.ColCount,
		"bomb_probability": session.Difficulty.BombProbability,
		"max_probability":  session.Difficulty.MaxProbability,
		"status":           session.State.String(),
		"seed":             params.Seed,
		"payload":          payload,
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			row_count, col_count, bomb_probability, max_probability,
			status, seed, payload
		)
		VALUES (
			@row_count, @col_count, @bomb_probability, @max_probability,
			@status, @seed, @payload
		)
		RETURNING *;`,
		args,
	)
	s, err := pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
	return s, mapError(err)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return s, mapError(err)
}

type UpdateGameSessionParams struct {
	Session *mines.Session
	Seed    *string
	EndedAt *pgtype.Timestamptz
	// Version, when set, makes the update fail with ErrConflict unless the
	// stored row is still at that version.
	Version *int64
}

// NewUpdateParams builds an update that stores s, stamping or clearing the
// end time according to whether s is over.
func NewUpdateParams(s *mines.Session, now time.Time) UpdateGameSessionParams {
	endedAt := pgtype.Timestamptz{}
	if s.Over() {
		endedAt = pgtype.Timestamptz{Time: now, Valid: true}
	}
	return UpdateGameSessionParams{Session: s, EndedAt: &endedAt}
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any, error) {
	parts := []string{"updated_at = now()", "version = version + 1"}
	args := make(map[string]any)

	if s := p.Session; s != nil {
		payload, err := s.Bytes()
		if err != nil {
			return "", nil, err
		}
		parts = append(parts,
			"row_count = @row_count",
			"col_count = @col_count",
			"bomb_probability = @bomb_probability",
			"max_probability = @max_probability",
			"status = @status",
			"payload = @payload",
		)
		args["row_count"] = s.Difficulty.RowCount
		args["col_count"] = s.Difficulty.ColCount
		args["bomb_probability"] = s.Difficulty.BombProbability
		args["max_probability"] = s.Difficulty.MaxProbability
		args["status"] = s.State.String()
		args["payload"] = payload
	}
	if p.Seed != nil {
		parts = append(parts, "seed = @seed")
		args["seed"] = *p.Seed
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}

	return strings.Join(parts, ", "), args, nil
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args, err := params.SetClause()
	if err != nil {
		return nil, err
	}
	where := "game_session_id = @game_session_id"
	args["game_session_id"] = gameSessionId
	if params.Version != nil {
		where += " AND version = @version"
		args["version"] = *params.Version
	}
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE "+where+" RETURNING *",
		pgx.NamedArgs(args),
	)
	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	if errors.Is(err, pgx.ErrNoRows) && params.Version != nil {
		var exists bool
		err := q.db.QueryRow(
			ctx,
			"SELECT EXISTS (SELECT 1 FROM game_session WHERE game_session_id = $1)",
			gameSessionId,
		).Scan(&exists)
		if err != nil {
			return nil, mapError(err)
		}
		if exists {
			return nil, ErrConflict
		}
	}
	return s, mapError(err)
}

// DeleteStaleGameSessions drops sessions nobody touched since before.
func (q Queries) DeleteStaleGameSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := q.db.Exec(
		ctx, "DELETE FROM game_session WHERE updated_at < $1", before,
	)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
