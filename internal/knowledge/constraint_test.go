package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cells(cc ...Cell) cellSet {
	s := make(cellSet, len(cc))
	for _, c := range cc {
		s[c] = struct{}{}
	}
	return s
}

func TestConstraintNoConclusion(t *testing.T) {
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{0, 2}), 1)

	_, ok := c.KnownMines()
	assert.False(t, ok)
	_, ok = c.KnownSafes()
	assert.False(t, ok)
}

func TestConstraintZeroRule(t *testing.T) {
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}), 0)

	safes, ok := c.KnownSafes()
	assert.True(t, ok)
	assert.Equal(t, cells(Cell{0, 0}, Cell{0, 1}), safes)

	// "no provable mines" is a conclusion, distinct from "unknown"
	mines, ok := c.KnownMines()
	assert.True(t, ok)
	assert.Empty(t, mines)
}

func TestConstraintFullRule(t *testing.T) {
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}), 2)

	mines, ok := c.KnownMines()
	assert.True(t, ok)
	assert.Equal(t, cells(Cell{0, 0}, Cell{0, 1}), mines)

	safes, ok := c.KnownSafes()
	assert.True(t, ok)
	assert.Empty(t, safes)
}

func TestConstraintMarkMine(t *testing.T) {
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{1, 1}), 2)

	c.MarkMine(Cell{0, 1})
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, 2, c.Size())
	assert.False(t, c.Has(Cell{0, 1}))

	// absent cell is a no-op
	c.MarkMine(Cell{5, 5})
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, 2, c.Size())
}

func TestConstraintMarkSafe(t *testing.T) {
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{1, 1}), 1)

	c.MarkSafe(Cell{0, 0})
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, 2, c.Size())

	c.MarkSafe(Cell{5, 5})
	assert.Equal(t, 2, c.Size())
}

func TestConstraintInvariantHolds(t *testing.T) {
	// any interleaving of marks keeps 0 <= count <= |cells|
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{1, 0}), 2)
	c.MarkMine(Cell{0, 0})
	c.MarkSafe(Cell{0, 1})
	c.MarkMine(Cell{0, 2})

	assert.GreaterOrEqual(t, c.Count(), 0)
	assert.LessOrEqual(t, c.Count(), c.Size())
}

func TestConstraintBadCountPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewConstraint(cells(Cell{0, 0}), 2)
	})
	assert.Panics(t, func() {
		NewConstraint(cells(Cell{0, 0}), -1)
	})
}

func TestConstraintMinus(t *testing.T) {
	a := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{0, 2}), 1)
	b := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{0, 3}), 2)

	assert.True(t, a.SubsetOf(b))
	assert.False(t, b.SubsetOf(a))

	derived := b.Minus(a)
	assert.Equal(t, []Cell{{0, 3}}, derived.Cells())
	assert.Equal(t, 1, derived.Count())
}

func TestConstraintEqual(t *testing.T) {
	a := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}), 1)
	b := NewConstraint(cells(Cell{0, 1}, Cell{0, 0}), 1)
	c := NewConstraint(cells(Cell{0, 0}, Cell{0, 1}), 2)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
