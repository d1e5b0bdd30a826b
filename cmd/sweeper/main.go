package main

import (
	"flag"
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"mineagent/internal/agent"
	"mineagent/internal/board"
	"mineagent/internal/knowledge"
)

var (
	log = logrus.New()

	width   int
	height  int
	mines   int
	games   int
	seed    uint64
	verbose bool
)

func init() {
	flag.IntVar(&width, "width", 8, "board width")
	flag.IntVar(&height, "height", 8, "board height")
	flag.IntVar(&mines, "mines", 8, "mine count")
	flag.IntVar(&games, "games", 1, "number of games to play")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 seeds from maphash)")
	flag.BoolVar(&verbose, "v", false, "log every move")
}

func newRand() *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(),
			new(maphash.Hash).Sum64(),
		))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func main() {
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		knowledge.Log = log
	}
	agent.SetLogger(log)

	rnd := newRand()
	won := 0
	for i := 1; i <= games; i++ {
		b, err := board.New(height, width, mines, rnd)
		if err != nil {
			log.Fatal("unable to build board: ", err)
		}

		player := agent.New(b, rnd)
		outcome, trace := player.Play()

		for _, move := range trace {
			if verbose {
				kind := "random"
				if move.Certain {
					kind = "certain"
				}
				log.WithFields(logrus.Fields{
					"cell": move.Cell.String(),
					"kind": kind,
					"mine": move.Mine,
				}).Debug("move")
			}
		}

		if outcome == agent.Won {
			won++
		}
		log.WithFields(logrus.Fields{
			"game":    i,
			"outcome": outcome.String(),
			"moves":   player.Moves(),
			"flagged": player.FlaggedMines(),
		}).Info("game over")
		if verbose {
			log.Debug("final knowledge:\n" + player.Grid().ToString(width))
		}
	}

	log.WithFields(logrus.Fields{
		"games":    games,
		"won":      won,
		"win_rate": float64(won) / float64(games),
	}).Info("done")
}
