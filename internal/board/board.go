package board

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"mineagent/internal/knowledge"
)

var (
	ErrBadDims      = errors.New("board dimensions must be positive")
	ErrTooManyMines = errors.New("mine count must leave at least one open cell")
)

// Board holds the ground truth of one puzzle: dimensions and mine
// placement. The deduction engine never reads it directly — it only
// ever learns the neighbor counts a probe reports.
type Board struct {
	Height    int
	Width     int
	MineCount int
	Mines     []bool // row-major
}

// New places MineCount mines uniformly at random, rejecting occupied
// squares until enough distinct ones are found.
func New(height, width, mineCount int, rnd *rand.Rand) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDims, height, width)
	}
	if mineCount < 0 || mineCount >= height*width {
		return nil, fmt.Errorf("%w: %d mines on %dx%d", ErrTooManyMines,
			mineCount, height, width)
	}
	b := &Board{
		Height:    height,
		Width:     width,
		MineCount: mineCount,
		Mines:     make([]bool, height*width),
	}
	for placed := 0; placed < mineCount; {
		i := rnd.IntN(height*width)
		if !b.Mines[i] {
			b.Mines[i] = true
			placed++
		}
	}
	return b, nil
}

func (b *Board) ValidatePoint(row, col int) bool {
	return 0 <= row && row < b.Height && 0 <= col && col < b.Width
}

func (b *Board) IsMine(cell knowledge.Cell) bool {
	return b.Mines[cell.Row*b.Width+cell.Col]
}

// NearbyMines counts mines within one row and column of cell, the
// cell itself excluded. This count is the only truth a probe leaks.
func (b *Board) NearbyMines(cell knowledge.Cell) int {
	count := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			row, col := cell.Row+dr, cell.Col+dc
			if b.ValidatePoint(row, col) && b.Mines[row*b.Width+col] {
				count++
			}
		}
	}
	return count
}

// Probe opens a cell. mine reports a hit; count is only meaningful
// when the probe survived.
func (b *Board) Probe(cell knowledge.Cell) (count int, mine bool) {
	if b.IsMine(cell) {
		return 0, true
	}
	return b.NearbyMines(cell), false
}

// Won reports whether every non-mine cell has been probed.
func (b *Board) Won(probed int) bool {
	return probed == b.Height*b.Width-b.MineCount
}

// String draws the ground truth, for logs and tests only.
func (b *Board) String() string {
	var sb strings.Builder
	rule := strings.Repeat("--", b.Width) + "-\n"
	for row := 0; row < b.Height; row++ {
		sb.WriteString(rule)
		for col := 0; col < b.Width; col++ {
			if b.Mines[row*b.Width+col] {
				sb.WriteString("|X")
			} else {
				sb.WriteString("| ")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(rule)
	return sb.String()
}
