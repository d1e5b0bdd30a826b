package knowledge

import "fmt"

// Cell addresses a single board square, 0-indexed from the top-left
// corner. It is a plain value type so it can key the sets below.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("%d:%d", c.Row, c.Col)
}

// index flattens a cell to its row-major position on a board of the
// given width. Used as a deterministic ordering for move selection.
func (c Cell) index(width int) int {
	return c.Row*width + c.Col
}

type cellSet = map[Cell]struct{}

func copySet(s cellSet) cellSet {
	out := make(cellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}
