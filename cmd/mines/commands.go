package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-board/internal/mines"
)

var errQuit = errors.New("quit")

// Maps known commands to number of arguments, -1 for a variable count
var commandNargs = map[string]int{
	"s": -1,
	"c": -1,
	"o": 2,
	"f": 2,
	"r": 0,
	"p": 0,
	"h": 0,
	"q": 0,
}

const help = `commands:
  s [preset] [seed]                  start a preset game (easy, medium, expert)
  c rows cols bomb max [seed]        start a custom game
  o x y                              open a cell
  f x y                              toggle a flag
  r                                  reset
  p                                  print the board
  h                                  show this help
  q                                  quit
`

type harness struct {
	log       *logrus.Logger
	out       io.Writer
	rnd       *rand.Rand
	placement mines.Placement
	session   *mines.Session
	seed      string
}

func newHarness(log *logrus.Logger, out io.Writer, rnd *rand.Rand, placement mines.Placement) *harness {
	return &harness{
		log:       log,
		out:       out,
		rnd:       rnd,
		placement: placement,
		session:   mines.NewSession(nil, mines.WithPlacement(placement)),
	}
}

func parseXY(twoStrings []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("first argument must be an int")
		return
	}
	if y, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("second argument must be an int")
		return
	}
	return
}

func parseCustom(args []string) (d mines.Difficulty, err error) {
	if d.RowCount, err = strconv.Atoi(args[0]); err != nil {
		return d, errors.New("rows must be an int")
	}
	if d.ColCount, err = strconv.Atoi(args[1]); err != nil {
		return d, errors.New("cols must be an int")
	}
	if d.BombProbability, err = strconv.ParseFloat(args[2], 64); err != nil {
		return d, errors.New("bomb probability must be a number")
	}
	if d.MaxProbability, err = strconv.ParseFloat(args[3], 64); err != nil {
		return d, errors.New("max probability must be a number")
	}
	return d, nil
}

func (h *harness) start(d mines.Difficulty, seed string) error {
	if seed == "" {
		seed = mines.RandomSeed(h.rnd)
	}
	if err := h.session.Start(d); err != nil {
		return err
	}
	h.session.SetSource(mines.NewSource(seed))
	h.seed = seed
	h.log.WithFields(logrus.Fields{
		"difficulty": d.String(),
		"seed":       seed,
		"placement":  h.placement.String(),
	}).Info("game started")
	fmt.Fprintf(h.out, "new %s game, seed %s\n", d, seed)
	h.print()
	return nil
}

func (h *harness) print() {
	if h.session.Board == nil {
		fmt.Fprintln(h.out, "no game running")
		return
	}
	fmt.Fprint(h.out, h.session.Grid().ToString(h.session.Board.Cols))
}

func (h *harness) report(events []mines.Event) {
	for _, e := range events {
		switch e := e.(type) {
		case mines.CellRevealed:
			h.log.WithFields(logrus.Fields{"x": e.X, "y": e.Y, "value": e.Value}).Debug("revealed")
		case mines.CellFlagged:
			h.log.WithFields(logrus.Fields{"x": e.X, "y": e.Y, "flagged": e.Flagged}).Debug("flag toggled")
		case mines.Loss:
			h.log.WithField("bombs", len(e.Bombs)).Info("game lost")
			fmt.Fprintf(h.out, "boom! %d bombs, seed %s\n", len(e.Bombs), h.seed)
		case mines.Win:
			h.log.Info("game won")
			fmt.Fprintln(h.out, "you won!")
		}
	}
	if len(events) > 0 {
		h.print()
	}
}

func (h *harness) execute(c string) error {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return nil
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", parts[0])
	}
	args := parts[1:]
	if nargs >= 0 && nargs != len(args) {
		return errors.New("invalid number of arguments")
	}

	switch parts[0] {
	case "s":
		if len(args) > 2 {
			return errors.New("invalid number of arguments")
		}
		name, seed := "easy", ""
		if len(args) > 0 {
			name = args[0]
		}
		if len(args) > 1 {
			seed = args[1]
		}
		d, ok := mines.Preset(name)
		if !ok {
			return fmt.Errorf("%w: unknown preset %q", mines.ErrInvalidDifficulty, name)
		}
		return h.start(d, seed)
	case "c":
		if len(args) != 4 && len(args) != 5 {
			return errors.New("invalid number of arguments")
		}
		d, err := parseCustom(args)
		if err != nil {
			return err
		}
		seed := ""
		if len(args) == 5 {
			seed = args[4]
		}
		return h.start(d, seed)
	case "o", "f":
		x, y, err := parseXY(args)
		if err != nil {
			return err
		}
		move := h.session.Click
		if parts[0] == "f" {
			move = h.session.RightClick
		}
		events, err := move(x, y)
		if err != nil {
			return err
		}
		h.report(events)
		return nil
	case "r":
		h.session.Reset()
		fmt.Fprintln(h.out, "game reset")
		return nil
	case "p":
		h.print()
		return nil
	case "h":
		fmt.Fprint(h.out, help)
		return nil
	case "q":
		return errQuit
	}
	return errors.New("invalid command")
}
