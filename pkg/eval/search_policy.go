package eval

import (
	"math"
	"math/rand"
	"time"

	"github.com/corvane/evochess/pkg/board"
)

// SearchPolicyGene is the "Search-policy gene" special role of spec.md §3: it
// determines per-move time budget from clock state and a speculation factor
// that allows overcommitting time under the expectation of α-β cutoffs. It
// folds in two sub-parameters recovered from original_source as additive
// detail rather than new gene slots (SPEC_FULL.md §6 supplement):
// Branch_Pruning_Gene's minimum-score-change threshold and
// Last_Minute_Panic_Gene's critical-time multiplier.
type SearchPolicyGene struct {
	Base

	// timeUseFactor scales the fraction of remaining time spent on a move;
	// mutated like Minimax_AI's time-allocation constants.
	timeUseFactor float64

	// speculationConstant inflates the move-count estimate when deciding
	// how much time can be risked on the expectation of future cutoffs,
	// grounded on Genetic_AI::speculation_time_factor.
	speculationConstant float64

	// branchPruningThreshold: the margin GoodEnoughToExamine tests a move's
	// static exchange evaluation against. Grounded on Branch_Pruning_Gene.
	// The search does not call GoodEnoughToExamine, so no move is skipped
	// on this threshold.
	branchPruningThreshold float64

	// panicTimeThreshold: below this fraction of the original clock
	// allotment, PanicMultiplier returns panicMultiplier. Grounded on
	// Last_Minute_Panic_Gene. The search does not call PanicMultiplier, so
	// the per-move time budget is never multiplied.
	panicTimeThreshold float64
	panicMultiplier    float64
}

// NewSearchPolicyGene returns a policy with conservative defaults: spend
// 1/30th of the per-move share of remaining time (remaining time over the
// estimated moves left), inflated 1.5x by speculation, a three-pawn pruning
// margin, and a 3x panic multiplier below 5% of the clock's original
// allotment.
func NewSearchPolicyGene() *SearchPolicyGene {
	return &SearchPolicyGene{
		Base:                   NewBase(0, 0),
		timeUseFactor:          1.0 / 30,
		speculationConstant:    1.5,
		branchPruningThreshold: 3.0,
		panicTimeThreshold:     0.05,
		panicMultiplier:        3.0,
	}
}

func (g *SearchPolicyGene) Name() string { return "Search Policy Gene" }

func (g *SearchPolicyGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// BranchingFactor estimates the number of plausible replies at gameProgress,
// used to derive minimum search depth from a time budget: fewer pieces on
// the board means fewer legal replies on average.
func (g *SearchPolicyGene) BranchingFactor(gameProgress float64) float64 {
	return lerp(35, 8, gameProgress)
}

// EstimatedMovesLeft estimates the remaining game length as a 40-move game
// scaled by (1 - gameProgress), floored at one move. The estimate is linear
// in gameProgress; it does not use a log-normal prior over game length.
func (g *SearchPolicyGene) EstimatedMovesLeft(gameProgress float64) float64 {
	const medianGameLength = 40.0
	remaining := medianGameLength * (1 - gameProgress)
	if remaining < 1 {
		remaining = 1
	}
	return remaining
}

// TimeBudget computes the per-move time allotment from remaining clock time,
// the estimated moves left, and whether a moves-until-reset cap binds
// sooner, inflated by the speculation constant on the expectation that α-β
// cutoffs will return most nodes early. Grounded on Minimax_AI::choose_move's
// time_to_use computation. The panic multiplier (for critically low clocks)
// is not part of this budget: PanicMultiplier computes it separately, from
// the clock's original allotment which this gene does not track, and no
// caller in this module applies it.
func (g *SearchPolicyGene) TimeBudget(remaining time.Duration, movesToReset int, gameProgress float64) time.Duration {
	if remaining <= 0 {
		return 0
	}
	horizon := g.EstimatedMovesLeft(gameProgress)
	if movesToReset > 0 && float64(movesToReset) < horizon {
		horizon = float64(movesToReset)
	}

	perMoveShare := float64(remaining) / horizon
	budget := time.Duration(perMoveShare * g.timeUseFactor * g.speculationConstant)
	if budget > remaining {
		budget = remaining
	}
	return budget
}

// PanicMultiplier returns panicMultiplier when remaining clock time has fallen
// below panicTimeThreshold of the clock's original allotment, else 1.
func (g *SearchPolicyGene) PanicMultiplier(remaining, original time.Duration) float64 {
	if original <= 0 {
		return 1
	}
	if float64(remaining)/float64(original) < g.panicTimeThreshold {
		return g.panicMultiplier
	}
	return 1
}

// GoodEnoughToExamine reports whether a move whose static exchange
// evaluation falls scoreDifference pawns short of the best move found so far
// is still worth fully examining at low remaining depth. Grounded on
// Branch_Pruning_Gene::good_enough_to_examine.
func (g *SearchPolicyGene) GoodEnoughToExamine(scoreDifference float64) bool {
	return math.Abs(scoreDifference) < g.branchPruningThreshold
}

func (g *SearchPolicyGene) Mutate(rng *rand.Rand, rate float64) {
	switch rng.Intn(5) {
	case 0:
		g.timeUseFactor = math.Max(0.001, g.timeUseFactor+laplace(rng, rate*0.01))
	case 1:
		g.speculationConstant = math.Max(1, g.speculationConstant+laplace(rng, rate))
	case 2:
		g.branchPruningThreshold = math.Max(0, g.branchPruningThreshold+laplace(rng, rate))
	case 3:
		g.panicTimeThreshold = clamp01(g.panicTimeThreshold + laplace(rng, rate*0.01))
	case 4:
		g.panicMultiplier = math.Max(1, g.panicMultiplier+laplace(rng, rate))
	}
}
