// Package eval implements the evaluation gene suite: a set of independently
// mutable scoring terms whose weighted sum, computed from both perspectives,
// is the position score search.Search optimizes.
package eval

import (
	"math"
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// Gene is one term of a Genome's composite score. Implementations are
// grounded one-for-one on original_source/include/Genes/*.h; each embeds
// Base for its priority/activation-window bookkeeping and supplies its own
// ScoreBoard and mutable parameters.
type Gene interface {
	// Name identifies the gene for genome-file persistence and logging.
	Name() string

	// ScoreBoard returns the raw, unweighted score contribution from
	// perspective's point of view. depth is the number of plies already
	// searched below the root; none of the current genes use it.
	ScoreBoard(b *board.Board, perspective board.Color, depth int) float64

	// Priority returns this gene's weight at the given game progress
	// (0 = game start, 1 = all non-king material gone), zero outside the
	// gene's activation window. Genome.Evaluate multiplies ScoreBoard by
	// this before summing.
	Priority(gameProgress float64) float64

	// Mutate randomly perturbs the gene's own parameters by an amount
	// proportional to rate. Genes that call Base.MutatePriority also perturb
	// their priorities and activation window; the others leave them fixed.
	Mutate(rng *rand.Rand, rate float64)
}

// Base holds the fields every gene carries per spec.md §3: a linearly
// interpolated opening/endgame priority and a game-progress window outside
// which the gene contributes nothing. Embed this in every Gene
// implementation and call its methods to satisfy the Priority and the
// priority/window portion of Mutate.
type Base struct {
	OpeningPriority float64
	EndgamePriority float64

	// ActivationStart/End bound the game-progress range, in [0,1], over
	// which this gene is active. The zero value (0,0) would deactivate a
	// gene everywhere except game_progress==0; NewBase defaults to the
	// always-active window [0,1].
	ActivationStart float64
	ActivationEnd   float64
}

// NewBase returns a Base with the given priorities and the always-active
// window [0,1].
func NewBase(openingPriority, endgamePriority float64) Base {
	return Base{OpeningPriority: openingPriority, EndgamePriority: endgamePriority, ActivationStart: 0, ActivationEnd: 1}
}

// Priority implements the Gene.Priority contract for an embedding gene.
func (b *Base) Priority(gameProgress float64) float64 {
	if gameProgress < b.ActivationStart || gameProgress > b.ActivationEnd {
		return 0
	}
	return lerp(b.OpeningPriority, b.EndgamePriority, gameProgress)
}

// MutatePriority perturbs the opening/endgame priorities and, with lower
// probability, the activation window; called by an embedding gene's Mutate.
// Grounded on Gene.cpp's gene_specific_mutation dispatch, which mutates
// priorities/activation about as often as it mutates the gene's own
// parameters.
func (b *Base) MutatePriority(rng *rand.Rand, rate float64) {
	switch rng.Intn(4) {
	case 0:
		b.OpeningPriority += laplace(rng, rate)
	case 1:
		b.EndgamePriority += laplace(rng, rate)
	case 2:
		b.ActivationStart = clamp01(b.ActivationStart + laplace(rng, rate))
		if b.ActivationStart > b.ActivationEnd {
			b.ActivationStart, b.ActivationEnd = b.ActivationEnd, b.ActivationStart
		}
	case 3:
		b.ActivationEnd = clamp01(b.ActivationEnd + laplace(rng, rate))
		if b.ActivationStart > b.ActivationEnd {
			b.ActivationStart, b.ActivationEnd = b.ActivationEnd, b.ActivationStart
		}
	}
}

func lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// laplace draws a symmetric Laplace-distributed perturbation scaled by
// amount, matching Random::random_laplace's use throughout the original
// gene_specific_mutation implementations for small, occasionally large,
// centered parameter nudges.
func laplace(rng *rand.Rand, amount float64) float64 {
	if amount == 0 {
		return 0
	}
	u := rng.Float64() - 0.5
	sign := 1.0
	if u < 0 {
		sign = -1.0
		u = -u
	}
	// u in (0, 0.5]; inverse CDF of the Laplace distribution.
	return -sign * amount * math.Log(1-2*u)
}
