// Package agent drives one game: it probes the board, feeds every
// observation to the knowledge engine and lets deduction pick the next
// move, falling back to a random probe only when nothing is provable.
package agent

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"mineagent/internal/board"
	"mineagent/internal/knowledge"
)

var log = logrus.New()

// SetLogger redirects the package log, so commands can plug in their
// configured instance.
func SetLogger(l *logrus.Logger) { log = l }

type Outcome int

const (
	Playing Outcome = iota
	Won
	Lost
	// Stuck means no legal probe remains but the win condition has not
	// been met; it cannot happen on a well-formed board and is reported
	// rather than swallowed.
	Stuck
)

func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Stuck:
		return "stuck"
	default:
		return "unknown"
	}
}

// Move is one probe made by the player, kept for traces and the
// websocket feed.
type Move struct {
	Cell    knowledge.Cell `json:"cell"`
	Certain bool           `json:"certain"`
	Count   int            `json:"count"`
	Mine    bool           `json:"mine"`
}

// Player owns a board, an engine and the bookkeeping between them.
type Player struct {
	board   *board.Board
	engine  *knowledge.Engine
	counts  map[knowledge.Cell]int
	outcome Outcome
	moves   int
	fatal   *knowledge.Cell // the probe that lost the game, if any
}

func New(b *board.Board, rnd *rand.Rand) *Player {
	return &Player{
		board:  b,
		engine: knowledge.NewEngine(b.Height, b.Width, rnd),
		counts: make(map[knowledge.Cell]int),
	}
}

func (p *Player) Board() *board.Board { return p.board }
func (p *Player) Outcome() Outcome    { return p.outcome }
func (p *Player) Moves() int          { return p.moves }
func (p *Player) Done() bool          { return p.outcome != Playing }
func (p *Player) FlaggedMines() int   { return len(p.engine.Mines()) }

// Step plays a single move: a certain one when the engine has proved a
// safe cell, a uniformly random fallback otherwise. ok is false once
// the game is over or no probe remains.
func (p *Player) Step() (move Move, ok bool) {
	if p.outcome != Playing {
		return Move{}, false
	}

	cell, certain := p.engine.NextCertainMove()
	if !certain {
		var found bool
		cell, found = p.engine.NextRandomMove()
		if !found {
			p.outcome = Stuck
			log.Warn("no probe remains on an unfinished board")
			return Move{}, false
		}
	}

	move = Move{Cell: cell, Certain: certain}
	p.moves++

	count, mine := p.board.Probe(cell)
	if mine {
		move.Mine = true
		p.outcome = Lost
		p.fatal = &cell
		log.Debugf("probe %s hit a mine", cell)
		return move, true
	}

	move.Count = count
	p.counts[cell] = count
	if err := p.engine.RecordObservation(cell, count); err != nil {
		// the cell came from the engine itself and the count from the
		// board; neither can be out of range
		panic(err)
	}

	if p.board.Won(len(p.counts)) {
		p.outcome = Won
	}
	return move, true
}

// Play runs the game to completion and returns the move trace.
func (p *Player) Play() (Outcome, []Move) {
	var trace []Move
	for {
		move, ok := p.Step()
		if !ok {
			break
		}
		trace = append(trace, move)
	}
	return p.outcome, trace
}

// Grid renders the player's knowledge: open counts for probed cells,
// flags on deduced mines, dots on deduced-but-unprobed safe cells.
func (p *Player) Grid() board.Grid {
	g := make(board.Grid, p.board.Height*p.board.Width)
	for i := range g {
		g[i] = board.Unknown
	}
	at := func(c knowledge.Cell) *board.CellState {
		return &g[c.Row*p.board.Width+c.Col]
	}
	for cell := range p.engine.Safes() {
		*at(cell) = board.Safe
	}
	for cell, count := range p.counts {
		*at(cell) = board.CellState(count)
	}
	for cell := range p.engine.Mines() {
		*at(cell) = board.Flagged
	}
	if p.fatal != nil {
		*at(*p.fatal) = board.Exploded
	}
	return g
}

type playerState struct {
	Board   *board.Board
	Engine  *knowledge.Engine
	Counts  map[knowledge.Cell]int
	Outcome Outcome
	MoveNum int
	Fatal   *knowledge.Cell
}

// GobEncode implements [gob.GobEncoder] for session persistence.
func (p *Player) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(playerState{
		Board:   p.board,
		Engine:  p.engine,
		Counts:  p.counts,
		Outcome: p.outcome,
		MoveNum: p.moves,
		Fatal:   p.fatal,
	})
	return buf.Bytes(), err
}

func (p *Player) GobDecode(data []byte) error {
	var state playerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	p.board = state.Board
	p.engine = state.Engine
	p.counts = state.Counts
	p.outcome = state.Outcome
	p.moves = state.MoveNum
	p.fatal = state.Fatal
	return nil
}
