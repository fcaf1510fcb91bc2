package mines

import (
	"fmt"
	"log/slog"
	"strings"
)

var Log *slog.Logger = slog.Default()

type Placement int8

const (
	// PlacementShuffled draws every cell independently and, if more bombs
	// than the cap were drawn, keeps a uniformly shuffled subset of them.
	PlacementShuffled Placement = iota
	// PlacementRowMajor scans the board row by row and stops as soon as the
	// cap is reached, so cells late in the scan get fewer bombs.
	PlacementRowMajor
)

func (p Placement) String() string {
	switch p {
	case PlacementShuffled:
		return "shuffled"
	case PlacementRowMajor:
		return "row_major"
	default:
		return fmt.Sprintf("placement(%d)", int8(p))
	}
}

func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shuffled":
		return PlacementShuffled, nil
	case "row_major", "rowmajor":
		return PlacementRowMajor, nil
	}
	return 0, fmt.Errorf("unknown placement %q", s)
}

/*
Generate lays bombs out for difficulty d, never on excludeX:excludeY, and
recomputes neighbor counts. It returns the number of bombs placed.

Each cell other than the excluded one is a bomb when a draw from
[0, MaxProbability) falls below BombProbability. At most d.BombCap() bombs
end up on the board; how the cap is enforced depends on p.
*/
func (b *Board) Generate(d Difficulty, excludeX, excludeY int, src Source, p Placement) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if b.Cols != d.ColCount || b.Rows != d.RowCount {
		return 0, fmt.Errorf(
			"%w: board is %dx%d, difficulty wants %dx%d",
			ErrInvalidDifficulty, b.Cols, b.Rows, d.ColCount, d.RowCount,
		)
	}
	if err := b.checkBounds(excludeX, excludeY); err != nil {
		return 0, err
	}

	b.clearBombs()

	exclude := b.index(excludeX, excludeY)
	bombCap := d.BombCap()
	draw := func() bool {
		return src.Float64()*d.MaxProbability < d.BombProbability
	}

	placed := 0
	switch p {
	case PlacementRowMajor:
		for i := range b.Cells {
			if placed >= bombCap {
				break
			}
			if i != exclude && draw() {
				b.Cells[i].HasBomb = true
				placed++
			}
		}
	default:
		candidates := make([]int, 0, len(b.Cells))
		for i := range b.Cells {
			if i != exclude && draw() {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > bombCap {
			src.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
			candidates = candidates[:bombCap]
		}
		for _, i := range candidates {
			b.Cells[i].HasBomb = true
		}
		placed = len(candidates)
	}

	b.countNeighbors()

	Log.Debug(
		"generated board",
		slog.String("difficulty", d.String()),
		slog.String("placement", p.String()),
		slog.Int("bombs", placed),
		slog.String("exclude", Point{excludeX, excludeY}.String()),
	)

	return placed, nil
}
