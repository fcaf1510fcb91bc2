package mines

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Difficulty controls the board size and the mine density. Every cell draws
// a bomb with chance BombProbability/MaxProbability, and no more than
// MaxProbability bombs are placed in total.
type Difficulty struct {
	RowCount        int     `json:"row_count" schema:"row_count"`
	ColCount        int     `json:"col_count" schema:"col_count"`
	BombProbability float64 `json:"bomb_probability" schema:"bomb_probability"`
	MaxProbability  float64 `json:"max_probability" schema:"max_probability"`
}

// MaxCells bounds the board area a Difficulty may ask for.
const MaxCells = 1 << 16

var (
	Easy   = Difficulty{RowCount: 9, ColCount: 9, BombProbability: 3, MaxProbability: 15}
	Medium = Difficulty{RowCount: 12, ColCount: 12, BombProbability: 5, MaxProbability: 20}
	Expert = Difficulty{RowCount: 15, ColCount: 15, BombProbability: 7, MaxProbability: 30}
)

var presets = map[string]Difficulty{
	"easy":   Easy,
	"medium": Medium,
	"expert": Expert,
}

// Preset looks a named difficulty up, ignoring case.
func Preset(name string) (Difficulty, bool) {
	d, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// PresetNames returns preset names from the smallest board to the largest.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return presets[a].Cells() - presets[b].Cells()
	})
	return names
}

type NamedDifficulty struct {
	Name string `json:"name"`
	Difficulty
}

// Presets lists the presets in [PresetNames] order.
func Presets() []NamedDifficulty {
	names := PresetNames()
	list := make([]NamedDifficulty, len(names))
	for i, name := range names {
		list[i] = NamedDifficulty{Name: name, Difficulty: presets[name]}
	}
	return list
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (d Difficulty) Validate() error {
	switch {
	case d.RowCount <= 0:
		return fmt.Errorf("%w: row count must be positive, got %d", ErrInvalidDifficulty, d.RowCount)
	case d.ColCount <= 0:
		return fmt.Errorf("%w: column count must be positive, got %d", ErrInvalidDifficulty, d.ColCount)
	case d.RowCount > MaxCells/d.ColCount:
		return fmt.Errorf(
			"%w: %dx%d board exceeds %d cells",
			ErrInvalidDifficulty, d.ColCount, d.RowCount, MaxCells,
		)
	case !finite(d.BombProbability) || d.BombProbability < 0:
		return fmt.Errorf("%w: bomb probability must be non-negative, got %v", ErrInvalidDifficulty, d.BombProbability)
	case !finite(d.MaxProbability) || d.MaxProbability <= 0:
		return fmt.Errorf("%w: max probability must be positive, got %v", ErrInvalidDifficulty, d.MaxProbability)
	case d.BombProbability > d.MaxProbability:
		return fmt.Errorf(
			"%w: bomb probability %v exceeds max probability %v",
			ErrInvalidDifficulty, d.BombProbability, d.MaxProbability,
		)
	}
	return nil
}

func (d Difficulty) Cells() int {
	return d.RowCount * d.ColCount
}

// BombCap is the hard limit on the number of bombs on a board.
func (d Difficulty) BombCap() int {
	return int(math.Floor(d.MaxProbability))
}

func (d Difficulty) String() string {
	return fmt.Sprintf(
		"%dx%d(%v/%v)", d.ColCount, d.RowCount, d.BombProbability, d.MaxProbability,
	)
}
