package main

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

func newTestHarness(t *testing.T) (*harness, *bytes.Buffer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	var out bytes.Buffer
	h := newHarness(logger, &out, rand.New(rand.NewPCG(1, 2)), mines.PlacementShuffled)
	return h, &out
}

func TestParseXY(t *testing.T) {
	x, y, err := parseXY([]string{"3", "4"})
	require.NoError(t, err)
	assert.Equal(t, 3, x)
	assert.Equal(t, 4, y)

	_, _, err = parseXY([]string{"a", "4"})
	assert.EqualError(t, err, "first argument must be an int")
	_, _, err = parseXY([]string{"3", "b"})
	assert.EqualError(t, err, "second argument must be an int")
}

func TestExecuteErrors(t *testing.T) {
	h, _ := newTestHarness(t)

	tests := []struct {
		command string
		err     string
	}{
		{"x", `unknown command "x"`},
		{"o 1", "invalid number of arguments"},
		{"r now", "invalid number of arguments"},
		{"s easy seed extra", "invalid number of arguments"},
		{"s nightmare", "unknown preset"},
		{"c 3 3 1", "invalid number of arguments"},
		{"c 3 x 1 2", "cols must be an int"},
		{"c 3 3 5 2", "invalid difficulty"},
		{"c 100000 100000 1 2", "exceeds 65536 cells"},
	}
	for _, test := range tests {
		t.Run(test.command, func(t *testing.T) {
			err := h.execute(test.command)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}

	assert.NoError(t, h.execute("   "))
	assert.ErrorIs(t, h.execute("q"), errQuit)
}

func TestPlayThroughCommands(t *testing.T) {
	h, out := newTestHarness(t)

	require.NoError(t, h.execute("o 0 0"))
	assert.Empty(t, out.String())

	require.NoError(t, h.execute("c 3 3 8 8 dense"))
	assert.Contains(t, out.String(), "seed dense")
	assert.Equal(t, mines.Playing, h.session.State)

	require.NoError(t, h.execute("o 1 1"))
	assert.Contains(t, out.String(), "# # # \n# 8 # \n# # # \n")

	require.NoError(t, h.execute("f 0 0"))
	assert.Contains(t, out.String(), "F # # \n# 8 # \n")

	err := h.execute("o 5 5")
	assert.ErrorIs(t, err, mines.ErrInvalidCoordinate)

	require.NoError(t, h.execute("o 2 2"))
	assert.Contains(t, out.String(), "boom! 8 bombs, seed dense")
	assert.Equal(t, mines.Lost, h.session.State)

	require.NoError(t, h.execute("r"))
	assert.Equal(t, mines.NotStarted, h.session.State)
	out.Reset()
	require.NoError(t, h.execute("p"))
	assert.Equal(t, "no game running\n", out.String())
}

func TestWinThroughCommands(t *testing.T) {
	h, out := newTestHarness(t)
	require.NoError(t, h.execute("c 2 2 0 1"))
	require.NoError(t, h.execute("o 0 0"))
	assert.Contains(t, out.String(), "you won!")
	assert.Equal(t, mines.Won, h.session.State)
}

func TestRun(t *testing.T) {
	h, out := newTestHarness(t)
	in := strings.NewReader("s easy abc\nbogus\np\nq\no 0 0\n")
	require.NoError(t, h.run(in))
	assert.Contains(t, out.String(), "new 9x9(3/15) game, seed abc")
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
	assert.False(t, h.session.Initialized, "commands after q must not run")
}
