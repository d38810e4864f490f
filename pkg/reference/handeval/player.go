// Player wraps Eval in a fixed, non-evolved opponent: a plain iterative-
// deepening negamax search with the quiescence extension from search.go,
// used as a baseline the genetic population is measured against rather
// than bred into.
package handeval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
)

// defaultMaxDepth bounds the iterative deepening ladder when the clock
// leaves no useful way to estimate how deep is affordable (untimed play).
const defaultMaxDepth = 4

// timeFraction is the share of a side's remaining time spent thinking about
// a single move.
const timeFraction = 30

// Player is a Player (see pkg/player) backed by Eval's fixed heuristic.
type Player struct {
	MaxDepth int
}

// NewPlayer returns a Player that deepens up to maxDepth plies (or
// defaultMaxDepth if maxDepth <= 0).
func NewPlayer(maxDepth int) *Player {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Player{MaxDepth: maxDepth}
}

func (p *Player) Name() string {
	return "TUROCHAMP"
}

func (p *Player) ChooseMove(ctx context.Context, b *board.Board, clk *clock.Clock) (board.Move, error) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return board.Move{}, fmt.Errorf("handeval: no legal moves available to choose from")
	}

	deadline := p.deadline(clk, b.Turn())
	sctx := ctx
	var cancel context.CancelFunc
	if !deadline.IsZero() {
		sctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	best := moves[0]
	s := &search{eval: Eval{}}

	for depth := 1; depth <= p.MaxDepth; depth++ {
		if sctx.Err() != nil {
			break
		}

		bestScore := math.Inf(-1)
		improved := board.Move{}
		found := false
		for _, m := range orderMoves(moves) {
			if sctx.Err() != nil {
				break
			}
			next := b.Apply(m)
			score := -s.negamax(sctx, &next, depth-1, math.Inf(-1), math.Inf(1))
			if score > bestScore {
				bestScore = score
				improved = m
				found = true
			}
		}
		if found && sctx.Err() == nil {
			best = improved
		}
	}

	return best, nil
}

// deadline estimates when to stop thinking: a fraction of the side's
// remaining time, or the zero time for untimed play (no deadline).
func (p *Player) deadline(clk *clock.Clock, c board.Color) time.Time {
	left := clk.TimeLeft(c)
	if left <= 0 {
		return time.Time{}
	}
	return time.Now().Add(left / timeFraction)
}
