package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

type State int8

const (
	NotStarted State = iota
	Playing
	Lost
	Won
)

var stateNames = [...]string{
	NotStarted: "not_started",
	Playing:    "playing",
	Lost:       "lost",
	Won:        "won",
}

func (s State) String() string {
	if 0 <= s && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int8(s))
}

// [State] implements [encoding.TextMarshaler]
func (s State) MarshalText() ([]byte, error) {
	if !(0 <= s && int(s) < len(stateNames)) {
		return nil, fmt.Errorf("unknown state %d", int8(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Session is one game from Start until it is lost, won or reset. Bomb
// placement is deferred to the first Click so that it never hits a bomb.
type Session struct {
	Difficulty  Difficulty
	Placement   Placement
	Board       *Board
	Initialized bool
	State       State

	src Source
}

type Option func(*Session)

func WithPlacement(p Placement) Option {
	return func(s *Session) {
		s.Placement = p
	}
}

func NewSession(src Source, opts ...Option) *Session {
	s := &Session{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSource replaces the randomness used for the next bomb placement.
func (s *Session) SetSource(src Source) {
	s.src = src
}

func (s *Session) Over() bool {
	return s.State == Lost || s.State == Won
}

// Start begins a new game on an empty board shaped by d.
func (s *Session) Start(d Difficulty) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.Difficulty = d
	s.Board = NewBoard(d.ColCount, d.RowCount)
	s.Initialized = false
	s.State = Playing
	return nil
}

func (s *Session) Reset() {
	s.Board = nil
	s.Initialized = false
	s.State = NotStarted
}

// Click reveals x:y. The first click of a game places the bombs around it.
func (s *Session) Click(x, y int) ([]Event, error) {
	if s.State != Playing {
		return nil, nil
	}
	if err := s.Board.checkBounds(x, y); err != nil {
		return nil, err
	}
	c := s.Board.Cells[s.Board.index(x, y)]
	if c.Revealed || c.Flagged {
		return nil, nil
	}

	if !s.Initialized {
		if s.src == nil {
			return nil, fmt.Errorf("session has no random source")
		}
		if _, err := s.Board.Generate(s.Difficulty, x, y, s.src, s.Placement); err != nil {
			return nil, err
		}
		s.Initialized = true
	}

	res, err := s.Board.Reveal(x, y)
	if err != nil {
		return nil, err
	}

	if res.HitBomb {
		s.State = Lost
		return []Event{Loss{Bombs: s.Board.Bombs()}}, nil
	}

	events := make([]Event, 0, len(res.Revealed)+1)
	for _, p := range res.Revealed {
		events = append(events, CellRevealed{
			X: p.X, Y: p.Y,
			Value: s.Board.Cells[s.Board.index(p.X, p.Y)].BombsAround,
		})
	}

	/* Only a board without bombs can be won by clicking. */
	if s.Board.IsWon() {
		s.State = Won
		events = append(events, Win{})
	}

	return events, nil
}

// RightClick toggles the flag on x:y and checks for a win.
func (s *Session) RightClick(x, y int) ([]Event, error) {
	if s.State != Playing {
		return nil, nil
	}
	if err := s.Board.checkBounds(x, y); err != nil {
		return nil, err
	}
	if s.Board.Cells[s.Board.index(x, y)].Revealed {
		return nil, nil
	}

	flagged, err := s.Board.ToggleFlag(x, y)
	if err != nil {
		return nil, err
	}
	events := []Event{CellFlagged{X: x, Y: y, Flagged: flagged}}

	// Before the first click there are no bombs to match flags against.
	if s.Initialized && s.Board.IsWon() {
		s.State = Won
		events = append(events, Win{})
	}

	return events, nil
}

// Grid is the player's view of the board, nil when no game is running.
func (s *Session) Grid() Grid {
	if s.Board == nil {
		return nil
	}
	return s.Board.Grid(s.Over())
}

func (s *Session) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSession restores a session encoded with [Session.Bytes]. The random
// source is not part of the encoding and is attached from src.
func DecodeSession(buf []byte, src Source) (*Session, error) {
	s := &Session{}
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(s); err != nil {
		return nil, fmt.Errorf("unable to decode session: %w", err)
	}
	s.src = src
	return s, nil
}
