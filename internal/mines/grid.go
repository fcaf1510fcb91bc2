package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Hidden       CellState = -2
	Flagged      CellState = -1
	Bomb         CellState = 64 // post-game
	ExplodedBomb CellState = 65
	CorrectFlag  CellState = 66
	WrongFlag    CellState = 67
	/*
	 * 0 to 8 mean the cell is open and has that many bombs around it.
	 *
	 * Bomb, CorrectFlag and WrongFlag only appear once the game is over,
	 * when every bomb is exposed. ExplodedBomb is the one the player hit.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Hidden:
		return "#"
	case s == Flagged:
		return "F"
	case s == 0:
		return "."
	case 1 <= s && s <= 8:
		return strconv.Itoa(int(s))
	case s == Bomb, s == ExplodedBomb:
		return "*"
	case s == CorrectFlag:
		return "V"
	case s == WrongFlag:
		return "X"
	default:
		return "!"
	}
}

type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	if width <= 0 {
		return ""
	}
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// Grid is what a player may see of the board. With over set, every bomb and
// every flag is shown for what it is.
func (b *Board) Grid(over bool) Grid {
	grid := make(Grid, len(b.Cells))
	for i, c := range b.Cells {
		switch {
		case c.Revealed && c.HasBomb:
			grid[i] = ExplodedBomb
		case c.Revealed:
			grid[i] = CellState(c.BombsAround)
		case c.Flagged && over && c.HasBomb:
			grid[i] = CorrectFlag
		case c.Flagged && over:
			grid[i] = WrongFlag
		case c.Flagged:
			grid[i] = Flagged
		case over && c.HasBomb:
			grid[i] = Bomb
		default:
			grid[i] = Hidden
		}
	}
	return grid
}
