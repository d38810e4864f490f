// Package montecarlo implements a flat Monte Carlo reference player:
// rather than searching with an evaluation function, it scores each
// candidate root move by the average outcome of random playouts starting
// from it, and plays whichever move wins most often. Grounded on
// original_source/src/Players/Monte_Carlo_AI.cpp's choose_move, simplified
// to a single-level move scoring pass (no persistent UCB search tree across
// moves, no pondering thread) since this player is only ever asked to move
// on its own turn.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
)

// maxPlayoutPlies caps a single random playout so a sequence of moves that
// never trips the fifty-move or repetition counters can't run forever; a
// playout that hits the cap counts as a draw.
const maxPlayoutPlies = 200

// timeFraction is the share of the mover's remaining time spent on a
// single move's playouts.
const timeFraction = 30

// minPlayouts is run regardless of the clock, so untimed play still samples
// every legal move at least once.
const minPlayouts = 200

// Player is a Player (see pkg/player) that scores moves by random playout.
type Player struct {
	rng *rand.Rand
}

// NewPlayer returns a Player that draws its random choices from rng.
func NewPlayer(rng *rand.Rand) *Player {
	return &Player{rng: rng}
}

func (p *Player) Name() string {
	return "Monte Carlo"
}

type moveStats struct {
	move     board.Move
	playouts int
	total    float64
}

func (p *Player) ChooseMove(ctx context.Context, b *board.Board, clk *clock.Clock) (board.Move, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return board.Move{}, fmt.Errorf("montecarlo: no legal moves available to choose from")
	}
	if len(moves) == 1 {
		return moves[0], nil
	}

	stats := make([]*moveStats, len(moves))
	for i, m := range moves {
		stats[i] = &moveStats{move: m}
	}

	deadline := p.deadline(clk, b.Turn())
	self := b.Turn()

	for i := 0; ; i++ {
		timeUp := deadline.IsZero() || time.Now().After(deadline)
		if i >= minPlayouts && (ctx.Err() != nil || timeUp) {
			break
		}
		s := stats[i%len(stats)]
		next := b.Apply(s.move)
		s.total += p.playout(&next, self)
		s.playouts++
	}

	best := stats[0]
	for _, s := range stats[1:] {
		if average(s) > average(best) {
			best = s
		}
	}
	return best.move, nil
}

func average(s *moveStats) float64 {
	if s.playouts == 0 {
		return 0
	}
	return s.total / float64(s.playouts)
}

// playout plays uniformly random moves to completion (or to maxPlayoutPlies)
// and returns the outcome from self's perspective: 1 for a win, 0 for a
// draw, -1 for a loss.
func (p *Player) playout(b *board.Board, self board.Color) float64 {
	cur := *b
	for ply := 0; ply < maxPlayoutPlies; ply++ {
		result := cur.Result()
		if !result.IsOngoing() {
			return outcome(result, self)
		}

		moves := cur.LegalMoves()
		m := moves[p.rng.Intn(len(moves))]
		cur = cur.Apply(m)
	}
	return 0
}

func outcome(result board.Result, self board.Color) float64 {
	if !result.HasWinner() {
		return 0
	}
	if result.Winner == self {
		return 1
	}
	return -1
}

func (p *Player) deadline(clk *clock.Clock, c board.Color) time.Time {
	left := clk.TimeLeft(c)
	if left <= 0 {
		return time.Time{}
	}
	return time.Now().Add(left / timeFraction)
}
