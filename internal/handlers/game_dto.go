package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type GameOptionsDTO struct {
	Preset string `schema:"preset"`
	Seed   string `schema:"seed"`
}

type CustomDifficultyDTO struct {
	RowCount        int     `schema:"row_count,required"`
	ColCount        int     `schema:"col_count,required"`
	BombProbability float64 `schema:"bomb_probability,required"`
	MaxProbability  float64 `schema:"max_probability,required"`
}

func ParseGameOptions(src url.Values) (GameOptionsDTO, error) {
	var dto GameOptionsDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// ParseDifficulty takes a preset name, or all four custom parameters when
// no preset is given.
func ParseDifficulty(src url.Values) (mines.Difficulty, error) {
	opts, err := ParseGameOptions(src)
	if err != nil {
		return mines.Difficulty{}, err
	}
	if opts.Preset != "" {
		d, ok := mines.Preset(opts.Preset)
		if !ok {
			return mines.Difficulty{}, fmt.Errorf(
				"%w: unknown preset %q", mines.ErrInvalidDifficulty, opts.Preset,
			)
		}
		return d, nil
	}

	var dto CustomDifficultyDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Difficulty{}, err
	}
	d := mines.Difficulty(dto)
	if err := d.Validate(); err != nil {
		return mines.Difficulty{}, err
	}
	return d, nil
}

func ParsePoint(src url.Values) (mines.Point, error) {
	var p mines.Point
	err := decoder.Decode(&p, src)
	return p, err
}

type GameSessionDTO struct {
	GameSessionId string           `json:"game_session_id"`
	State         mines.State      `json:"state"`
	Difficulty    mines.Difficulty `json:"difficulty"`
	Placement     string           `json:"placement"`
	Initialized   bool             `json:"initialized"`
	Flags         int              `json:"flags"`
	BombCap       int              `json:"bomb_cap"`
	Grid          mines.Grid       `json:"grid"`
	Seed          string           `json:"seed,omitempty"`
	StartedAt     int64            `json:"started_at"`
	EndedAt       *int64           `json:"ended_at,omitempty"`
}

// NewGameSessionDTO describes s as stored in row. The seed gives the board
// away, so it is only shown once the game is over.
func NewGameSessionDTO(row *repository.GameSession, s *mines.Session) *GameSessionDTO {
	dto := &GameSessionDTO{
		GameSessionId: strconv.FormatInt(row.GameSessionId, 10),
		State:         s.State,
		Difficulty:    s.Difficulty,
		Placement:     s.Placement.String(),
		Initialized:   s.Initialized,
		Grid:          s.Grid(),
		StartedAt:     row.StartedAt.Time.UnixMilli(),
	}
	if s.Board != nil {
		dto.Flags = s.Board.FlagCount()
		dto.BombCap = s.Difficulty.BombCap()
	}
	if s.Over() {
		dto.Seed = row.Seed
	}
	if row.EndedAt.Valid {
		e := row.EndedAt.Time.UnixMilli()
		dto.EndedAt = &e
	}
	return dto
}

type EventType string

const (
	EventRevealed EventType = "revealed"
	EventFlagged  EventType = "flagged"
	EventLoss     EventType = "loss"
	EventWin      EventType = "win"
)

type EventDTO struct {
	Type    EventType     `json:"type"`
	X       *int          `json:"x,omitempty"`
	Y       *int          `json:"y,omitempty"`
	Value   *int          `json:"value,omitempty"`
	Label   *string       `json:"label,omitempty"`
	Flagged *bool         `json:"flagged,omitempty"`
	Bombs   []mines.Point `json:"bombs,omitempty"`
}

func NewEventDTO(e mines.Event) EventDTO {
	switch e := e.(type) {
	case mines.CellRevealed:
		label := e.Label()
		return EventDTO{Type: EventRevealed, X: &e.X, Y: &e.Y, Value: &e.Value, Label: &label}
	case mines.CellFlagged:
		return EventDTO{Type: EventFlagged, X: &e.X, Y: &e.Y, Flagged: &e.Flagged}
	case mines.Loss:
		return EventDTO{Type: EventLoss, Bombs: e.Bombs}
	case mines.Win:
		return EventDTO{Type: EventWin}
	}
	panic(fmt.Sprintf("unknown event %T", e))
}

func NewEventDTOs(events []mines.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = NewEventDTO(e)
	}
	return dtos
}

type GameResponse struct {
	Session *GameSessionDTO `json:"session"`
	Events  []EventDTO      `json:"events"`
}
