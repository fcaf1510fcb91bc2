package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

// Memory keeps sessions in process memory. It is the store used when no
// database is configured.
type Memory struct {
	mu       sync.Mutex
	nextId   int64
	sessions map[int64]GameSession
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[int64]GameSession),
		now:      time.Now,
	}
}

func timestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func clone(s GameSession) *GameSession {
	s.Payload = append([]byte(nil), s.Payload...)
	return &s
}

func (m *Memory) CreateGameSession(
	_ context.Context, session *mines.Session, params CreateGameSessionParams,
) (*GameSession, error) {
	payload, err := session.Bytes()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextId++
	now := timestamp(m.now())
	s := GameSession{
		GameSessionId:   m.nextId,
		RowCount:        session.Difficulty.RowCount,
		ColCount:        session.Difficulty.ColCount,
		BombProbability: session.Difficulty.BombProbability,
		MaxProbability:  session.Difficulty.MaxProbability,
		Status:          session.State.String(),
		Seed:            params.Seed,
		Payload:         payload,
		StartedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.sessions[s.GameSessionId] = s
	return clone(s), nil
}

func (m *Memory) FetchGameSession(_ context.Context, gameSessionId int64) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Memory) UpdateGameSession(
	_ context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	var payload []byte
	if params.Session != nil {
		var err error
		if payload, err = params.Session.Bytes(); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	if params.Version != nil && *params.Version != s.Version {
		return nil, ErrConflict
	}
	if session := params.Session; session != nil {
		s.RowCount = session.Difficulty.RowCount
		s.ColCount = session.Difficulty.ColCount
		s.BombProbability = session.Difficulty.BombProbability
		s.MaxProbability = session.Difficulty.MaxProbability
		s.Status = session.State.String()
		s.Payload = payload
	}
	if params.Seed != nil {
		s.Seed = *params.Seed
	}
	if params.EndedAt != nil {
		s.EndedAt = *params.EndedAt
	}
	s.UpdatedAt = timestamp(m.now())
	s.Version++
	m.sessions[gameSessionId] = s
	return clone(s), nil
}

func (m *Memory) DeleteStaleGameSessions(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Time.Before(before) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
