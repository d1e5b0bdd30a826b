package knowledge

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(height, width int) *Engine {
	return NewEngine(height, width, rand.New(rand.NewPCG(1, 2)))
}

func TestRecordObservationRejectsBadInput(t *testing.T) {
	e := testEngine(3, 3)

	assert.ErrorIs(t, e.RecordObservation(Cell{-1, 0}, 0), ErrInvalidCell)
	assert.ErrorIs(t, e.RecordObservation(Cell{3, 0}, 0), ErrInvalidCell)
	assert.ErrorIs(t, e.RecordObservation(Cell{0, 3}, 0), ErrInvalidCell)
	assert.ErrorIs(t, e.RecordObservation(Cell{0, 0}, 9), ErrInvalidCount)
	assert.ErrorIs(t, e.RecordObservation(Cell{0, 0}, -1), ErrInvalidCount)
}

func TestZeroCountClearsAllNeighbors(t *testing.T) {
	// 3x3 board, center reports 0: all 8 neighbors are provably safe
	e := testEngine(3, 3)
	require.NoError(t, e.RecordObservation(Cell{1, 1}, 0))

	safes := e.Safes()
	assert.Len(t, safes, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			assert.Contains(t, safes, Cell{row, col})
		}
	}
	assert.Empty(t, e.Mines())
}

func TestFullCountFlagsAllNeighbors(t *testing.T) {
	// corner cell with 3 neighbors reporting 3: all of them are mines
	e := testEngine(3, 3)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 3))

	mines := e.Mines()
	assert.Equal(t, cells(Cell{0, 1}, Cell{1, 0}, Cell{1, 1}), mines)
}

func TestSubsetResolution(t *testing.T) {
	// 2x4 board with mines at 0:0 and 0:3, bottom row probed left to
	// right. After 1:1 the base reads {0:0,0:1}=1 and
	// {0:0,0:1,0:2,1:2}=1; subset elimination derives {0:2,1:2}=0,
	// which only resolution (not any single observation) can prove.
	e := testEngine(2, 4)
	require.NoError(t, e.RecordObservation(Cell{1, 0}, 1))
	require.NoError(t, e.RecordObservation(Cell{1, 1}, 1))

	assert.Contains(t, e.Safes(), Cell{0, 2})
	assert.Contains(t, e.Safes(), Cell{1, 2})

	// the freed cells finish the row; 0:3 falls out as a mine
	require.NoError(t, e.RecordObservation(Cell{1, 3}, 1))
	assert.Contains(t, e.Mines(), Cell{0, 3})
}

func TestSubsetResolutionDirect(t *testing.T) {
	// drive resolve/extract directly on a handcrafted knowledge base
	e := testEngine(1, 5)
	c1, c2, c3, c4 := Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{0, 3}
	e.kb = append(e.kb,
		NewConstraint(cells(c1, c2, c3), 1),
		NewConstraint(cells(c1, c2, c3, c4), 2),
	)
	e.deduce()

	assert.Contains(t, e.Mines(), c4)
	assert.NotContains(t, e.Mines(), c1)
}

func TestFixpointCascade(t *testing.T) {
	// marking one mine must reshape sibling constraints and cascade:
	// {a}=1 and {a,b}=1 leave b provably safe only on a second pass
	e := testEngine(1, 3)
	a, b := Cell{0, 0}, Cell{0, 1}
	e.kb = append(e.kb,
		NewConstraint(cells(a), 1),
		NewConstraint(cells(a, b), 1),
	)
	e.deduce()

	assert.Contains(t, e.Mines(), a)
	assert.Contains(t, e.Safes(), b)
}

func TestDeduceIdempotent(t *testing.T) {
	e := testEngine(4, 4)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 2))
	require.NoError(t, e.RecordObservation(Cell{3, 3}, 1))

	safes, mines, kb := e.Safes(), e.Mines(), e.Constraints()
	e.deduce()

	assert.Equal(t, safes, e.Safes())
	assert.Equal(t, mines, e.Mines())
	assert.Equal(t, kb, e.Constraints())
}

func TestSafesAndMinesDisjoint(t *testing.T) {
	e := testEngine(4, 4)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 3))
	require.NoError(t, e.RecordObservation(Cell{3, 3}, 0))
	require.NoError(t, e.RecordObservation(Cell{0, 3}, 1))

	for cell := range e.Mines() {
		assert.NotContains(t, e.Safes(), cell)
	}
}

func TestKnownMineDiscountsLaterObservations(t *testing.T) {
	e := testEngine(1, 3)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 1)) // {0:1}=1 -> mine
	require.Contains(t, e.Mines(), Cell{0, 1})

	// 0:2's only neighbor is the known mine; the local count discounts
	// it and no constraint (let alone a broken one) is filed
	require.NoError(t, e.RecordObservation(Cell{0, 2}, 1))
	assert.Zero(t, e.Constraints())
}

func TestNextCertainMove(t *testing.T) {
	e := testEngine(3, 3)
	require.NoError(t, e.RecordObservation(Cell{1, 1}, 0))

	// lowest row-major unprobed safe cell first
	move, ok := e.NextCertainMove()
	require.True(t, ok)
	assert.Equal(t, Cell{0, 0}, move)

	require.NoError(t, e.RecordObservation(move, 0))
	move, ok = e.NextCertainMove()
	require.True(t, ok)
	assert.Equal(t, Cell{0, 1}, move)
}

func TestNextCertainMoveNone(t *testing.T) {
	e := testEngine(3, 3)
	_, ok := e.NextCertainMove()
	assert.False(t, ok)
}

func TestNextRandomMoveExcludesKnowledge(t *testing.T) {
	e := testEngine(1, 3)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 1)) // 0:1 is a mine

	// only 0:2 remains: not probed, not safe-known, not a mine
	move, ok := e.NextRandomMove()
	require.True(t, ok)
	assert.Equal(t, Cell{0, 2}, move)
}

func TestNextRandomMoveSolvedBoard(t *testing.T) {
	e := testEngine(1, 3)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 1))
	require.NoError(t, e.RecordObservation(Cell{0, 2}, 1))

	_, ok := e.NextRandomMove()
	assert.False(t, ok)
}

func TestNextRandomMoveSeededReplay(t *testing.T) {
	pick := func() Cell {
		e := NewEngine(8, 8, rand.New(rand.NewPCG(7, 11)))
		move, ok := e.NextRandomMove()
		require.True(t, ok)
		return move
	}
	assert.Equal(t, pick(), pick())
}

func TestEngineGobRoundTrip(t *testing.T) {
	e := testEngine(4, 4)
	require.NoError(t, e.RecordObservation(Cell{0, 0}, 2))
	require.NoError(t, e.RecordObservation(Cell{2, 2}, 1))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(e))

	var restored Engine
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	assert.Equal(t, e.Height(), restored.Height())
	assert.Equal(t, e.Width(), restored.Width())
	assert.Equal(t, e.Probed(), restored.Probed())
	assert.Equal(t, e.Safes(), restored.Safes())
	assert.Equal(t, e.Mines(), restored.Mines())
	assert.Equal(t, e.Constraints(), restored.Constraints())
}
