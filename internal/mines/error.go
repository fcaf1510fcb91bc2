package mines

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate = errors.New("invalid cell coordinate")
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrIllegalState is never returned by [Session] methods: actions outside
	// of [Playing] are no-ops. The WebSocket adapter reports dropped moves
	// with it.
	ErrIllegalState = errors.New("session is not playing")
)

type InvalidMoveError struct {
	X, Y       int
	Cols, Rows int
}

// [InvalidMoveError] implements [error]
func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf(
		"move out of range (%d:%d) on %dx%d board", e.X, e.Y, e.Cols, e.Rows,
	)
}

func (e *InvalidMoveError) Unwrap() error {
	return ErrInvalidCoordinate
}
