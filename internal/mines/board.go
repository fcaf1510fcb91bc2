package mines

import (
	"fmt"
	"strings"
)

// Board is a rectangular grid of cells stored row-major: the cell at x:y
// lives at Cells[y*Cols+x].
type Board struct {
	Cols, Rows int
	Cells      []Cell
}

var neighborOffsets = [8]Point{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func NewBoard(cols, rows int) *Board {
	b := &Board{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
	for y := range rows {
		for x := range cols {
			b.Cells[y*cols+x] = Cell{X: x, Y: y}
		}
	}
	return b
}

func (b *Board) InBounds(x, y int) bool {
	return 0 <= x && x < b.Cols && 0 <= y && y < b.Rows
}

func (b *Board) index(x, y int) int {
	return y*b.Cols + x
}

func (b *Board) checkBounds(x, y int) error {
	if !b.InBounds(x, y) {
		return &InvalidMoveError{X: x, Y: y, Cols: b.Cols, Rows: b.Rows}
	}
	return nil
}

// Cell returns a copy of the cell at x:y.
func (b *Board) Cell(x, y int) (Cell, error) {
	if err := b.checkBounds(x, y); err != nil {
		return Cell{}, err
	}
	return b.Cells[b.index(x, y)], nil
}

// Neighbors calls fn with the index of every in-bounds 8-neighbor of x:y.
func (b *Board) Neighbors(x, y int, fn func(i int)) {
	for _, d := range neighborOffsets {
		nx, ny := x+d.X, y+d.Y
		if b.InBounds(nx, ny) {
			fn(b.index(nx, ny))
		}
	}
}

// countNeighbors fills BombsAround by walking the neighborhood of every bomb.
func (b *Board) countNeighbors() {
	for _, c := range b.Cells {
		if !c.HasBomb {
			continue
		}
		b.Neighbors(c.X, c.Y, func(i int) {
			if !b.Cells[i].HasBomb {
				b.Cells[i].BombsAround++
			}
		})
	}
}

type RevealResult struct {
	Revealed []Point
	HitBomb  bool
}

// Reveal opens the cell at x:y. A cell with no bombs around it opens its
// covered, unflagged neighbors as well, transitively. Revealing a cell that
// is already open or flagged changes nothing.
func (b *Board) Reveal(x, y int) (RevealResult, error) {
	var res RevealResult
	if err := b.checkBounds(x, y); err != nil {
		return res, err
	}

	i := b.index(x, y)
	if b.Cells[i].Revealed || b.Cells[i].Flagged {
		return res, nil
	}

	b.Cells[i].Revealed = true
	res.Revealed = append(res.Revealed, b.Cells[i].Point())
	if b.Cells[i].HasBomb {
		res.HitBomb = true
		return res, nil
	}

	stack := []int{i}
	for len(stack) > 0 {
		c := b.Cells[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if c.BombsAround != 0 {
			continue
		}
		b.Neighbors(c.X, c.Y, func(j int) {
			n := &b.Cells[j]
			if n.Revealed || n.Flagged || n.HasBomb {
				return
			}
			n.Revealed = true
			res.Revealed = append(res.Revealed, n.Point())
			stack = append(stack, j)
		})
	}

	return res, nil
}

// ToggleFlag flips the flag on a covered cell and reports the new value.
// Revealed cells are left alone.
func (b *Board) ToggleFlag(x, y int) (bool, error) {
	if err := b.checkBounds(x, y); err != nil {
		return false, err
	}
	c := &b.Cells[b.index(x, y)]
	if c.Revealed {
		return c.Flagged, nil
	}
	c.Flagged = !c.Flagged
	return c.Flagged, nil
}

// IsWon reports whether the flags sit exactly on the bombs.
func (b *Board) IsWon() bool {
	for _, c := range b.Cells {
		if c.Flagged != c.HasBomb {
			return false
		}
	}
	return true
}

func (b *Board) Bombs() []Point {
	var bombs []Point
	for _, c := range b.Cells {
		if c.HasBomb {
			bombs = append(bombs, c.Point())
		}
	}
	return bombs
}

func (b *Board) BombCount() (count int) {
	for _, c := range b.Cells {
		if c.HasBomb {
			count++
		}
	}
	return
}

func (b *Board) Flags() []Point {
	var flags []Point
	for _, c := range b.Cells {
		if c.Flagged {
			flags = append(flags, c.Point())
		}
	}
	return flags
}

func (b *Board) FlagCount() (count int) {
	for _, c := range b.Cells {
		if c.Flagged {
			count++
		}
	}
	return
}

func (b *Board) clearBombs() {
	for i := range b.Cells {
		b.Cells[i].HasBomb = false
		b.Cells[i].BombsAround = 0
	}
}

// String draws the real layout: * for a bomb, - for a safe cell.
func (b *Board) String() string {
	var s strings.Builder
	for y := range b.Rows {
		for x := range b.Cols {
			if b.Cells[b.index(x, y)].HasBomb {
				fmt.Fprint(&s, "* ")
			} else {
				fmt.Fprint(&s, "- ")
			}
		}
		fmt.Fprint(&s, "\n")
	}
	return s.String()
}
