package mines

import (
	"fmt"
	"strconv"
)

type Point struct {
	X int `json:"x" schema:"x,required"`
	Y int `json:"y" schema:"y,required"`
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.X, p.Y)
}

// Cell is one board position. The zero value is an empty, covered cell.
// BombsAround is meaningless for a cell that has a bomb.
type Cell struct {
	X, Y        int
	HasBomb     bool
	BombsAround int
	Revealed    bool
	Flagged     bool
}

func (c Cell) Point() Point {
	return Point{c.X, c.Y}
}

// Label is what a revealed safe cell displays: blank for zero.
func (c Cell) Label() string {
	if c.BombsAround == 0 {
		return ""
	}
	return strconv.Itoa(c.BombsAround)
}
