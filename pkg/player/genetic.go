package player

import (
	"context"
	"fmt"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/search"
)

// GeneticPlayer is a Player backed by one evolved Genome, grounded on
// original_source/src/Players/Genetic_AI.cpp's choose_move: launch a
// fixed-time-budget search from the genome's search-policy gene and play
// whatever principal variation it settles on when the search halts.
type GeneticPlayer struct {
	Genome      *eval.Genome
	PerNodeTime time.Duration
}

// NewGeneticPlayer returns a player for genome using a previously measured
// per-node evaluation cost (search.Calibrate), so the fixed-budget search's
// minimum-depth estimate reflects this genome's own evaluation cost rather
// than a shared guess.
func NewGeneticPlayer(genome *eval.Genome, perNodeTime time.Duration) *GeneticPlayer {
	return &GeneticPlayer{Genome: genome, PerNodeTime: perNodeTime}
}

func (p *GeneticPlayer) Name() string {
	return fmt.Sprintf("Genome %d", p.Genome.ID)
}

func (p *GeneticPlayer) ChooseMove(ctx context.Context, b *board.Board, clk *clock.Clock) (board.Move, error) {
	it := &search.Iterative{
		Genome:      p.Genome,
		Mode:        search.FixedBudget,
		PerNodeTime: p.PerNodeTime,
	}
	h, out := it.Launch(ctx, b, clk)

	var last search.PV
	for pv := range out {
		last = pv
	}
	_ = h.Halt()

	if len(last.Moves) == 0 {
		moves := b.LegalMoves()
		if len(moves) == 0 {
			return board.Move{}, fmt.Errorf("player: no legal moves available to choose from")
		}
		return moves[0], nil
	}
	return last.Moves[0], nil
}
