package knowledge

import (
	"fmt"
	"slices"
	"strings"
)

// Constraint asserts that exactly Count of the cells in its set are
// mines. Constraints only ever shrink: cells proven safe or mined are
// removed as the engine learns about them, so `0 <= count <= |cells|`
// holds at all times.
type Constraint struct {
	cells cellSet
	count int
}

func NewConstraint(cells cellSet, count int) *Constraint {
	if count < 0 || count > len(cells) {
		panic(AssertionError{fmt.Sprintf(
			"constraint wants %d mines among %d cells", count, len(cells),
		)})
	}
	return &Constraint{cells: copySet(cells), count: count}
}

func (c *Constraint) Count() int { return c.count }

func (c *Constraint) Size() int { return len(c.cells) }

func (c *Constraint) Has(cell Cell) bool {
	_, ok := c.cells[cell]
	return ok
}

// Cells returns the constrained cells sorted row-major, for stable
// logging and test output.
func (c *Constraint) Cells() []Cell {
	out := make([]Cell, 0, len(c.cells))
	for cell := range c.cells {
		out = append(out, cell)
	}
	slices.SortFunc(out, func(a, b Cell) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}

func (c *Constraint) Equal(o *Constraint) bool {
	if c.count != o.count || len(c.cells) != len(o.cells) {
		return false
	}
	for cell := range c.cells {
		if !o.Has(cell) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every cell of c also appears in o.
func (c *Constraint) SubsetOf(o *Constraint) bool {
	if len(c.cells) > len(o.cells) {
		return false
	}
	for cell := range c.cells {
		if !o.Has(cell) {
			return false
		}
	}
	return true
}

// Minus derives the subset-elimination resolvent `c − sub`: when sub's
// cells all lie inside c's, the cells exclusive to c must hold exactly
// the difference of the two counts.
func (c *Constraint) Minus(sub *Constraint) *Constraint {
	cells := make(cellSet, len(c.cells)-len(sub.cells))
	for cell := range c.cells {
		if !sub.Has(cell) {
			cells[cell] = struct{}{}
		}
	}
	return NewConstraint(cells, c.count-sub.count)
}

// KnownMines returns the cells this constraint alone proves to be
// mines. ok is false when the constraint supports no conclusion either
// way (0 < count < |cells|); note that ok=true with an empty set is a
// real answer ("none of these is a provable mine"), not the same thing.
func (c *Constraint) KnownMines() (cellSet, bool) {
	switch c.count {
	case 0:
		return nil, true
	case len(c.cells):
		return copySet(c.cells), true
	default:
		return nil, false
	}
}

// KnownSafes mirrors [Constraint.KnownMines] for provably safe cells.
func (c *Constraint) KnownSafes() (cellSet, bool) {
	switch c.count {
	case 0:
		return copySet(c.cells), true
	case len(c.cells):
		return nil, true
	default:
		return nil, false
	}
}

// MarkMine records that cell is a mine: it leaves the constraint's
// set and takes one of the expected mines with it. No-op when the cell
// is not constrained here.
func (c *Constraint) MarkMine(cell Cell) {
	if !c.Has(cell) {
		return
	}
	delete(c.cells, cell)
	c.count--
	if c.count < 0 {
		panic(AssertionError{"constraint count below zero"})
	}
}

// MarkSafe records that cell is not a mine: it leaves the set and the
// count stays. No-op when the cell is not constrained here.
func (c *Constraint) MarkSafe(cell Cell) {
	if !c.Has(cell) {
		return
	}
	delete(c.cells, cell)
	if c.count > len(c.cells) {
		panic(AssertionError{"constraint count exceeds cell count"})
	}
}

func (c *Constraint) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, cell := range c.Cells() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cell.String())
	}
	fmt.Fprintf(&b, "}=%d", c.count)
	return b.String()
}
