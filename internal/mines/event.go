package mines

// Event is something a UI adapter should draw after a move.
type Event interface {
	event()
}

// CellRevealed is sent once per newly opened cell. Value is the number of
// bombs around it; Label gives the text to draw.
type CellRevealed struct {
	X, Y  int
	Value int
}

func (e CellRevealed) Label() string {
	return Cell{BombsAround: e.Value}.Label()
}

type CellFlagged struct {
	X, Y    int
	Flagged bool
}

// Loss carries every bomb on the board so all of them can be shown.
type Loss struct {
	Bombs []Point
}

type Win struct{}

func (CellRevealed) event() {}
func (CellFlagged) event()  {}
func (Loss) event()         {}
func (Win) event()          {}
