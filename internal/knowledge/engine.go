package knowledge

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"slices"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Engine is the knowledge base of a single puzzle session. It ingests
// neighbor mine counts for probed cells and derives, by subset
// elimination run to a fixpoint, which cells are certainly safe and
// which certainly mined. It never sees the board's ground truth.
//
// Not safe for concurrent use; one engine serves one session.
type Engine struct {
	height, width int

	probed cellSet
	safes  cellSet
	mines  cellSet
	kb     []*Constraint

	rnd *rand.Rand
}

// NewEngine creates an engine for a height x width board. rnd feeds
// [Engine.NextRandomMove] only; pass a seeded source for reproducible
// runs, or nil to seed from maphash like the rest of the project.
func NewEngine(height, width int, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(),
			new(maphash.Hash).Sum64(),
		))
	}
	return &Engine{
		height: height,
		width:  width,
		probed: make(cellSet),
		safes:  make(cellSet),
		mines:  make(cellSet),
		rnd:    rnd,
	}
}

func (e *Engine) Height() int { return e.height }
func (e *Engine) Width() int  { return e.width }

// Probed returns a copy of the cells already selected by the player.
func (e *Engine) Probed() cellSet { return copySet(e.probed) }

// Safes returns a copy of the cells proven to hold no mine.
func (e *Engine) Safes() cellSet { return copySet(e.safes) }

// Mines returns a copy of the cells proven to hold a mine.
func (e *Engine) Mines() cellSet { return copySet(e.mines) }

// Constraints reports the size of the live knowledge base.
func (e *Engine) Constraints() int { return len(e.kb) }

func (e *Engine) inBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < e.height && 0 <= c.Col && c.Col < e.width
}

func (e *Engine) markSafe(cell Cell) {
	if _, ok := e.mines[cell]; ok {
		panic(AssertionError{"cell " + cell.String() + " marked both safe and mine"})
	}
	e.safes[cell] = struct{}{}
	for _, c := range e.kb {
		c.MarkSafe(cell)
	}
}

func (e *Engine) markMine(cell Cell) {
	if _, ok := e.safes[cell]; ok {
		panic(AssertionError{"cell " + cell.String() + " marked both mine and safe"})
	}
	e.mines[cell] = struct{}{}
	for _, c := range e.kb {
		c.MarkMine(cell)
	}
}

// RecordObservation feeds the engine one probe result: cell was opened
// and count of its in-bounds neighbors are mines. It files the matching
// constraint and deduces everything the updated knowledge base yields.
func (e *Engine) RecordObservation(cell Cell, count int) error {
	if !e.inBounds(cell) {
		return fmt.Errorf("%w: %s", ErrInvalidCell, cell)
	}
	if count < 0 || count > 8 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	e.probed[cell] = struct{}{}
	if _, ok := e.safes[cell]; !ok {
		e.markSafe(cell)
	}

	// Constrain only neighbors we know nothing about. Neighbors already
	// proven mines are accounted for by shrinking the local count.
	cells := make(cellSet)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Cell{cell.Row + dr, cell.Col + dc}
			if !e.inBounds(n) {
				continue
			}
			if _, ok := e.mines[n]; ok {
				count--
				continue
			}
			if _, ok := e.safes[n]; ok {
				continue
			}
			cells[n] = struct{}{}
		}
	}
	if len(cells) > 0 {
		e.kb = append(e.kb, NewConstraint(cells, count))
	}

	e.deduce()
	return nil
}

// deduce runs compaction, subset resolution and certainty extraction
// until a full pass changes nothing. A single pass is not enough:
// every marked cell reshapes the remaining constraints and may expose
// conclusions the previous pass could not see.
func (e *Engine) deduce() {
	for changed := true; changed; {
		changed = false
		e.compact()
		if e.resolve() {
			changed = true
		}
		if e.extract() {
			changed = true
		}
	}
}

// compact drops constraints whose cell set has emptied out. A leftover
// count on an empty set would have tripped the constraint invariant
// before ever getting here.
func (e *Engine) compact() {
	e.kb = slices.DeleteFunc(e.kb, func(c *Constraint) bool {
		return c.Size() == 0
	})
}

// resolve applies subset elimination across the knowledge base: when
// A's cells all lie strictly inside B's, the difference B−A is exact
// knowledge about B's exclusive cells, and B itself becomes redundant.
// Duplicate constraints collapse along the way.
func (e *Engine) resolve() bool {
	changed := false
	for again := true; again; {
		again = false
	scan:
		for i, a := range e.kb {
			for j, b := range e.kb {
				if i == j {
					continue
				}
				if a.Equal(b) {
					e.kb = slices.Delete(e.kb, j, j+1)
					again, changed = true, true
					break scan
				}
				if a.SubsetOf(b) && a.Size() < b.Size() {
					derived := b.Minus(a)
					Log.Debugf("resolved %s against %s into %s", b, a, derived)
					e.kb = slices.Delete(e.kb, j, j+1)
					if e.lookup(derived) < 0 {
						e.kb = append(e.kb, derived)
					}
					again, changed = true, true
					break scan
				}
			}
		}
	}
	return changed
}

func (e *Engine) lookup(c *Constraint) int {
	return slices.IndexFunc(e.kb, c.Equal)
}

type verdict struct {
	cell Cell
	mine bool
}

// extract collects every certain conclusion from a snapshot of the
// knowledge base onto a work list, then applies them one by one.
// Marking mutates every constraint, so conclusions are never applied
// while the knowledge base is being read.
func (e *Engine) extract() bool {
	var todo deque.Deque[verdict]
	for _, c := range e.kb {
		if safes, ok := c.KnownSafes(); ok {
			for cell := range safes {
				todo.PushBack(verdict{cell, false})
			}
		}
		if mines, ok := c.KnownMines(); ok {
			for cell := range mines {
				todo.PushBack(verdict{cell, true})
			}
		}
	}

	changed := false
	for todo.Len() > 0 {
		v := todo.PopFront()
		if v.mine {
			if _, ok := e.mines[v.cell]; ok {
				continue
			}
			Log.Debugf("deduced mine at %s", v.cell)
			e.markMine(v.cell)
		} else {
			if _, ok := e.safes[v.cell]; ok {
				continue
			}
			Log.Debugf("deduced safe at %s", v.cell)
			e.markSafe(v.cell)
		}
		changed = true
	}
	return changed
}

// NextCertainMove returns a cell proven safe that has not been probed
// yet. Among several candidates it picks the lowest row-major one, so
// seeded runs replay identically.
func (e *Engine) NextCertainMove() (Cell, bool) {
	var best Cell
	found := false
	for cell := range e.safes {
		if _, ok := e.probed[cell]; ok {
			continue
		}
		if !found || cell.index(e.width) < best.index(e.width) {
			best, found = cell, true
		}
	}
	return best, found
}

// NextRandomMove returns a uniformly random cell that has not been
// probed and is not a known mine. Known-safe cells are excluded too:
// those belong to [Engine.NextCertainMove], which callers are expected
// to exhaust first.
func (e *Engine) NextRandomMove() (Cell, bool) {
	var candidates []Cell
	for row := 0; row < e.height; row++ {
		for col := 0; col < e.width; col++ {
			cell := Cell{row, col}
			if _, ok := e.probed[cell]; ok {
				continue
			}
			if _, ok := e.safes[cell]; ok {
				continue
			}
			if _, ok := e.mines[cell]; ok {
				continue
			}
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return Cell{}, false
	}
	return candidates[e.rnd.IntN(len(candidates))], true
}

type constraintState struct {
	Cells []Cell
	Count int
}

type engineState struct {
	Height, Width int
	Probed        []Cell
	Safes         []Cell
	Mines         []Cell
	KB            []constraintState
}

func setToSlice(s cellSet) []Cell {
	out := make([]Cell, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}

func sliceToSet(cells []Cell) cellSet {
	out := make(cellSet, len(cells))
	for _, c := range cells {
		out[c] = struct{}{}
	}
	return out
}

// GobEncode implements [gob.GobEncoder] so sessions can persist the
// engine alongside the board state.
func (e *Engine) GobEncode() ([]byte, error) {
	state := engineState{
		Height: e.height,
		Width:  e.width,
		Probed: setToSlice(e.probed),
		Safes:  setToSlice(e.safes),
		Mines:  setToSlice(e.mines),
	}
	for _, c := range e.kb {
		state.KB = append(state.KB, constraintState{c.Cells(), c.Count()})
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(state)
	return buf.Bytes(), err
}

// GobDecode restores a persisted engine. The random source is freshly
// seeded; replay determinism across a persistence boundary is not a
// supported property.
func (e *Engine) GobDecode(data []byte) error {
	var state engineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	restored := NewEngine(state.Height, state.Width, nil)
	restored.probed = sliceToSet(state.Probed)
	restored.safes = sliceToSet(state.Safes)
	restored.mines = sliceToSet(state.Mines)
	for _, c := range state.KB {
		restored.kb = append(restored.kb, NewConstraint(sliceToSet(c.Cells), c.Count))
	}
	*e = *restored
	return nil
}
