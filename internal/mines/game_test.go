package mines

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, d Difficulty) *Session {
	t.Helper()
	s := NewSession(rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, s.Start(d))
	return s
}

// playingSession returns a session already past its first click, with the
// bombs laid out as in rows.
func playingSession(t *testing.T, rows ...string) *Session {
	t.Helper()
	b := boardFromRows(rows...)
	s := NewSession(rand.New(rand.NewPCG(1, 2)))
	s.Difficulty = Difficulty{
		RowCount: b.Rows, ColCount: b.Cols,
		BombProbability: 1, MaxProbability: float64(len(b.Cells)),
	}
	s.Board = b
	s.Initialized = true
	s.State = Playing
	return s
}

func TestDifficultyValidate(t *testing.T) {
	tests := []struct {
		name  string
		d     Difficulty
		valid bool
	}{
		{"easy", Easy, true},
		{"medium", Medium, true},
		{"expert", Expert, true},
		{"zero probability", Difficulty{1, 1, 0, 1}, true},
		{"equal probabilities", Difficulty{2, 2, 5, 5}, true},
		{"no rows", Difficulty{0, 3, 1, 2}, false},
		{"negative cols", Difficulty{3, -1, 1, 2}, false},
		{"negative probability", Difficulty{3, 3, -1, 2}, false},
		{"zero max", Difficulty{3, 3, 0, 0}, false},
		{"probability above max", Difficulty{3, 3, 3, 2}, false},
		{"largest board", Difficulty{256, MaxCells / 256, 1, 2}, true},
		{"too many cells", Difficulty{256, MaxCells/256 + 1, 1, 2}, false},
		{"huge board", Difficulty{100000, 100000, 1, 2}, false},
		{"area overflows int", Difficulty{math.MaxInt, math.MaxInt, 1, 2}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.d.Validate()
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDifficulty)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	d, ok := Preset(" Medium ")
	require.True(t, ok)
	assert.Equal(t, Medium, d)

	_, ok = Preset("nightmare")
	assert.False(t, ok)

	assert.Equal(t, []string{"easy", "medium", "expert"}, PresetNames())
	assert.Equal(t, 15, Easy.BombCap())

	list := Presets()
	require.Len(t, list, 3)
	assert.Equal(t, "easy", list[0].Name)
	assert.Equal(t, Easy, list[0].Difficulty)
	assert.Equal(t, Expert, list[2].Difficulty)
}

func TestSessionStart(t *testing.T) {
	s := NewSession(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, NotStarted, s.State)

	err := s.Start(Difficulty{RowCount: 2, ColCount: 2, BombProbability: 3, MaxProbability: 2})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	assert.Equal(t, NotStarted, s.State)

	err = s.Start(Difficulty{RowCount: 100000, ColCount: 100000, BombProbability: 1, MaxProbability: 2})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	assert.Nil(t, s.Board)

	require.NoError(t, s.Start(Easy))
	assert.Equal(t, Playing, s.State)
	assert.False(t, s.Initialized)
	assert.Equal(t, 9, s.Board.Cols)
	assert.Equal(t, 9, s.Board.Rows)
	assert.Zero(t, s.Board.BombCount())
}

func TestSessionFirstClickIsSafe(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	d := Difficulty{RowCount: 5, ColCount: 5, BombProbability: 9, MaxProbability: 10}
	for sy := range d.RowCount {
		for sx := range d.ColCount {
			s := NewSession(r, WithPlacement(PlacementRowMajor))
			require.NoError(t, s.Start(d))
			events, err := s.Click(sx, sy)
			require.NoError(t, err)
			assert.True(t, s.Initialized)
			assert.NotEqual(t, Lost, s.State)
			require.NotEmpty(t, events)
			assert.IsType(t, CellRevealed{}, events[0])
		}
	}
}

func TestSessionZeroBombBoard(t *testing.T) {
	s := newTestSession(t, Difficulty{RowCount: 3, ColCount: 3, BombProbability: 0, MaxProbability: 100})
	events, err := s.Click(1, 1)
	require.NoError(t, err)

	revealed := 0
	for _, e := range events {
		if r, ok := e.(CellRevealed); ok {
			revealed++
			assert.Equal(t, "", r.Label())
		}
	}
	assert.Equal(t, 9, revealed)
	assert.Zero(t, s.Board.BombCount())
	assert.Equal(t, Win{}, events[len(events)-1])
	assert.Equal(t, Won, s.State)
}

func TestSessionSingleCell(t *testing.T) {
	for i := range 20 {
		s := NewSession(rand.New(rand.NewPCG(uint64(i), 0)))
		require.NoError(t, s.Start(Difficulty{RowCount: 1, ColCount: 1, BombProbability: 1, MaxProbability: 1}))
		events, err := s.Click(0, 0)
		require.NoError(t, err)
		assert.Contains(t, events, Event(CellRevealed{X: 0, Y: 0, Value: 0}))
		assert.NotEqual(t, Lost, s.State)
	}
}

func TestSessionLoss(t *testing.T) {
	s := playingSession(t,
		"*..",
		"...",
		"..*",
	)
	events, err := s.Click(0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	loss, ok := events[0].(Loss)
	require.True(t, ok)
	assert.ElementsMatch(t, []Point{{0, 0}, {2, 2}}, loss.Bombs)
	assert.Equal(t, Lost, s.State)
	assert.True(t, s.Over())

	// terminal: nothing else happens
	events, err = s.Click(1, 0)
	assert.NoError(t, err)
	assert.Nil(t, events)
	events, err = s.RightClick(1, 0)
	assert.NoError(t, err)
	assert.Nil(t, events)
	assert.False(t, s.Board.Cells[1].Revealed)
	assert.False(t, s.Board.Cells[1].Flagged)
}

func TestSessionClickReportsValues(t *testing.T) {
	s := playingSession(t,
		"*..",
		"...",
		"...",
	)
	events, err := s.Click(2, 2)
	require.NoError(t, err)
	values := make(map[Point]int)
	for _, e := range events {
		r := e.(CellRevealed)
		values[Point{r.X, r.Y}] = r.Value
	}
	assert.Equal(t, map[Point]int{
		{1, 0}: 1, {2, 0}: 0,
		{0, 1}: 1, {1, 1}: 1, {2, 1}: 0,
		{0, 2}: 0, {1, 2}: 0, {2, 2}: 0,
	}, values)
	assert.Equal(t, Playing, s.State)

	events, err = s.Click(2, 2)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestSessionWin(t *testing.T) {
	s := playingSession(t,
		"*..",
		"...",
		"..*",
	)

	events, err := s.RightClick(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []Event{CellFlagged{X: 1, Y: 1, Flagged: true}}, events)

	_, err = s.RightClick(0, 0)
	require.NoError(t, err)
	events, err = s.RightClick(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []Event{CellFlagged{X: 2, Y: 2, Flagged: true}}, events)
	assert.Equal(t, Playing, s.State)

	events, err = s.RightClick(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []Event{CellFlagged{X: 1, Y: 1, Flagged: false}, Win{}}, events)
	assert.Equal(t, Won, s.State)
}

func TestSessionFlagBlocksClick(t *testing.T) {
	s := playingSession(t,
		"*.",
		".*",
	)
	_, err := s.RightClick(0, 0)
	require.NoError(t, err)
	events, err := s.Click(0, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, Playing, s.State)
	assert.False(t, s.Board.Cells[0].Revealed)
}

func TestSessionNoWinBeforeFirstClick(t *testing.T) {
	s := newTestSession(t, Easy)
	_, err := s.RightClick(3, 3)
	require.NoError(t, err)
	events, err := s.RightClick(3, 3)
	require.NoError(t, err)
	assert.Equal(t, []Event{CellFlagged{X: 3, Y: 3, Flagged: false}}, events)
	assert.Equal(t, Playing, s.State)
}

func TestSessionRightClickRevealedCell(t *testing.T) {
	s := playingSession(t,
		"*..",
		"...",
		"...",
	)
	_, err := s.Click(1, 1)
	require.NoError(t, err)
	events, err := s.RightClick(1, 1)
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestSessionInvalidCoordinates(t *testing.T) {
	s := newTestSession(t, Easy)

	_, err := s.Click(9, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.False(t, s.Initialized)

	_, err = s.RightClick(0, -1)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestSessionNotStartedIsNoop(t *testing.T) {
	s := NewSession(rand.New(rand.NewPCG(1, 2)))
	events, err := s.Click(0, 0)
	assert.NoError(t, err)
	assert.Nil(t, events)
	events, err = s.RightClick(0, 0)
	assert.NoError(t, err)
	assert.Nil(t, events)
	assert.Nil(t, s.Grid())
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(t, Easy)
	_, err := s.Click(4, 4)
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, NotStarted, s.State)
	assert.Nil(t, s.Board)
	assert.False(t, s.Initialized)

	require.NoError(t, s.Start(Medium))
	assert.Equal(t, Playing, s.State)
	assert.Equal(t, 12, s.Board.Cols)
}

func TestSessionBytes(t *testing.T) {
	s := newTestSession(t, Medium)
	_, err := s.Click(3, 3)
	require.NoError(t, err)
	_, err = s.RightClick(0, 0)
	require.NoError(t, err)

	buf, err := s.Bytes()
	require.NoError(t, err)

	decoded, err := DecodeSession(buf, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, s.Difficulty, decoded.Difficulty)
	assert.Equal(t, s.State, decoded.State)
	assert.Equal(t, s.Initialized, decoded.Initialized)
	assert.Equal(t, s.Board.Cells, decoded.Board.Cells)
	assert.Equal(t, s.Grid(), decoded.Grid())

	s.Reset()
	buf, err = s.Bytes()
	require.NoError(t, err)
	decoded, err = DecodeSession(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, NotStarted, decoded.State)
	assert.Nil(t, decoded.Board)

	_, err = DecodeSession([]byte("garbage"), nil)
	assert.Error(t, err)
}

func TestStateText(t *testing.T) {
	for _, s := range []State{NotStarted, Playing, Lost, Won} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	var s State
	assert.Error(t, s.UnmarshalText([]byte("paused")))
}
