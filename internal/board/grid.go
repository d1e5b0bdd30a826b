package board

import (
	"fmt"
	"strconv"
	"strings"
)

// CellState is one square of the player-knowledge grid: an open count,
// or one of the marker values below.
type CellState int8

const (
	Unknown  CellState = -2 // not probed, nothing deduced
	Safe     CellState = -4 // deduced safe but not yet probed
	Flagged  CellState = -1 // deduced mine
	Exploded CellState = 65
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return " "
	case s == Safe:
		return "."
	case s == Flagged:
		return "*"
	case s == Exploded:
		return "!"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

// Grid is a row-major player-knowledge view, rendered as text for the
// CLI and debug logs.
type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
