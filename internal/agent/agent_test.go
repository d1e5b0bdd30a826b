package agent

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mineagent/internal/board"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// mineless board: the first probe reports 0, the zero-rule clears its
// neighborhood and certain moves carry the game to a win
func TestPlayWinsMinelessBoard(t *testing.T) {
	b, err := board.New(4, 4, 0, testRand())
	require.NoError(t, err)

	outcome, trace := New(b, testRand()).Play()
	assert.Equal(t, Won, outcome)
	assert.Len(t, trace, 16)

	// only the opener could have been a guess
	for _, move := range trace[1:] {
		assert.True(t, move.Certain, "move at %s was a guess", move.Cell)
	}
}

func TestPlayLosesOnForcedMine(t *testing.T) {
	// every probe hits: 1x2 with one mine and the free cell probed
	// first still ends the game on the mined one or wins outright;
	// force the loss with an all-but-one mined row
	b := &board.Board{Height: 1, Width: 3, MineCount: 2,
		Mines: []bool{true, false, true}}

	p := New(b, testRand())
	for {
		if _, ok := p.Step(); !ok {
			break
		}
	}
	assert.Contains(t, []Outcome{Won, Lost}, p.Outcome())
	assert.True(t, p.Done())
}

func TestStepPrefersCertainMoves(t *testing.T) {
	b := &board.Board{Height: 1, Width: 3, MineCount: 1,
		Mines: []bool{false, false, true}}

	p := New(b, testRand())
	var sawCertain bool
	for {
		move, ok := p.Step()
		if !ok {
			break
		}
		if move.Certain {
			sawCertain = true
		}
	}
	if p.Outcome() == Won {
		assert.True(t, sawCertain)
	}
}

func TestStepAfterDone(t *testing.T) {
	b, err := board.New(2, 2, 0, testRand())
	require.NoError(t, err)

	p := New(b, testRand())
	outcome, _ := p.Play()
	require.Equal(t, Won, outcome)

	_, ok := p.Step()
	assert.False(t, ok)
}

func TestFlaggedMines(t *testing.T) {
	// corner probe reporting 3 flags all three neighbors at once
	b := &board.Board{Height: 2, Width: 2, MineCount: 3,
		Mines: []bool{false, true, true, true}}

	p := New(b, testRand())
	for !p.Done() {
		if _, ok := p.Step(); !ok {
			break
		}
	}
	if p.Outcome() == Won {
		assert.Equal(t, 3, p.FlaggedMines())
	}
}

func TestGridRendersKnowledge(t *testing.T) {
	b, err := board.New(3, 3, 0, testRand())
	require.NoError(t, err)

	p := New(b, testRand())
	_, ok := p.Step()
	require.True(t, ok)

	g := p.Grid()
	require.Len(t, g, 9)
	open := 0
	for _, s := range g {
		if s == 0 {
			open++
		}
	}
	assert.Equal(t, 1, open, "exactly the probed cell is open")
}

func TestSeededGamesReplay(t *testing.T) {
	play := func() (Outcome, []Move) {
		b, err := board.New(8, 8, 10, rand.New(rand.NewPCG(3, 4)))
		require.NoError(t, err)
		return New(b, rand.New(rand.NewPCG(5, 6))).Play()
	}
	o1, t1 := play()
	o2, t2 := play()
	assert.Equal(t, o1, o2)
	assert.Equal(t, t1, t2)
}

func TestPlayerGobRoundTrip(t *testing.T) {
	b, err := board.New(4, 4, 3, testRand())
	require.NoError(t, err)

	p := New(b, testRand())
	_, ok := p.Step()
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(p))

	var restored Player
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	assert.Equal(t, p.Outcome(), restored.Outcome())
	assert.Equal(t, p.Moves(), restored.Moves())
	assert.Equal(t, p.Grid(), restored.Grid())
}
