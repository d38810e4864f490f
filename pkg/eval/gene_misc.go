package eval

import (
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// NullGene always scores zero, present so evolution can "turn off" a slot by
// mutating a gene's activation window to never fire or by otherwise reducing
// its influence without removing it from the genome. Grounded on
// Null_Gene.cpp.
type NullGene struct{ Base }

func NewNullGene() *NullGene { return &NullGene{Base: NewBase(0, 0)} }

func (g *NullGene) Name() string { return "Null Gene" }

func (g *NullGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

func (g *NullGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// DrawValueGene adds a constant, perspective-signed score to drawn leaves.
// search.Search applies this in place of the zero a draw otherwise scores,
// per spec.md §4.6: "draw leaves score zero but are tagged so that the
// search can apply a separate draw value offset controlled by a dedicated
// gene." Grounded on Draw_Value_Gene.cpp; ScoreBoard itself is not called
// from the normal per-node composite sum (it has no useful signal outside a
// draw leaf) so it carries an always-zero priority and is instead read
// directly by search via Value.
type DrawValueGene struct {
	Base
	valueInCentipawns float64
}

func NewDrawValueGene() *DrawValueGene {
	return &DrawValueGene{Base: NewBase(0, 0), valueInCentipawns: 0}
}

func (g *DrawValueGene) Name() string { return "Draw Value Gene" }

func (g *DrawValueGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// Value returns the genetically determined draw value in centipawns, from
// the perspective of the side to move.
func (g *DrawValueGene) Value() float64 { return g.valueInCentipawns }

func (g *DrawValueGene) Mutate(rng *rand.Rand, rate float64) {
	g.valueInCentipawns += laplace(rng, rate*10)
}

// OpeningMoveGene holds a small lookup table from position to preferred move,
// read through FirstMoveChoice. Mutation only deletes entries; none are added
// or swapped. Grounded on Opening_Move_Gene.cpp; ScoreBoard is always zero,
// and nothing outside this package calls FirstMoveChoice, so the gene affects
// neither scoring nor move choice.
type OpeningMoveGene struct {
	Base
	// choices maps a starting FEN-like board encoding to a preferred move in
	// coordinate form (e.g. "e2e4"). Populated sparsely; most positions have
	// no entry.
	choices map[string]string
}

func NewOpeningMoveGene() *OpeningMoveGene {
	return &OpeningMoveGene{
		Base: NewBase(0, 0),
		choices: map[string]string{
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1": "e2e4",
		},
	}
}

func (g *OpeningMoveGene) Name() string { return "Opening Move Gene" }

func (g *OpeningMoveGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// FirstMoveChoice returns the pre-chosen coordinate move for b's position, if
// any, and whether one was found.
func (g *OpeningMoveGene) FirstMoveChoice(b *board.Board) (string, bool) {
	mv, ok := g.choices[b.FEN()]
	return mv, ok
}

func (g *OpeningMoveGene) Mutate(rng *rand.Rand, rate float64) {
	// A small, fixed set of openings evolves by occasionally forgetting one;
	// rate governs how readily that happens, matching the original's low
	// per-mutation-event probability of altering this gene's single entry.
	if rate <= 0 {
		return
	}
	for fen := range g.choices {
		if rng.Float64() < rate {
			delete(g.choices, fen)
		}
		break
	}
}

// MoveSortingGene is behaviorally active in the search's move ordering
// (search.orderMoves), not as a score contributor. Grounded on Move_Sorting_Gene.cpp; ScoreBoard is always zero.
type MoveSortingGene struct {
	Base
	// recapturesFirst, mvvLvaCaptures, checksBeforeQuiet mirror the original's
	// ordered list of partition predicates: each stage is independently
	// disabled by evolution by flipping its flag off.
	recapturesFirst   bool
	mvvLvaCaptures    bool
	checksBeforeQuiet bool
}

func NewMoveSortingGene() *MoveSortingGene {
	return &MoveSortingGene{Base: NewBase(0, 0), recapturesFirst: true, mvvLvaCaptures: true, checksBeforeQuiet: true}
}

func (g *MoveSortingGene) Name() string { return "Move Sorting Gene" }

func (g *MoveSortingGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// RecapturesFirst, MVVLVACaptures and ChecksBeforeQuiet report which ordering
// stages are currently enabled, consulted by search.orderMoves.
func (g *MoveSortingGene) RecapturesFirst() bool  { return g.recapturesFirst }
func (g *MoveSortingGene) MVVLVACaptures() bool   { return g.mvvLvaCaptures }
func (g *MoveSortingGene) ChecksBeforeQuiet() bool { return g.checksBeforeQuiet }

func (g *MoveSortingGene) Mutate(rng *rand.Rand, rate float64) {
	switch rng.Intn(3) {
	case 0:
		g.recapturesFirst = !g.recapturesFirst
	case 1:
		g.mvvLvaCaptures = !g.mvvLvaCaptures
	case 2:
		g.checksBeforeQuiet = !g.checksBeforeQuiet
	}
}

// MutationRateGene is behaviorally active in genepool.Pool's breeding loop
// (see spec.md §4.9), not as a score contributor: it controls how many
// mutable components of the genome change per Genome.Mutate event. Grounded
// on Mutation_Rate_Gene.cpp.
type MutationRateGene struct {
	Base
	mutatedComponentsPerMutation float64
}

func NewMutationRateGene() *MutationRateGene {
	return &MutationRateGene{Base: NewBase(0, 0), mutatedComponentsPerMutation: 1}
}

func (g *MutationRateGene) Name() string { return "Mutation Rate Gene" }

func (g *MutationRateGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// MutationCount returns the evolved number of components genepool.Pool
// should mutate per breeding event, rounded up to at least one.
func (g *MutationRateGene) MutationCount() int {
	if g.mutatedComponentsPerMutation < 1 {
		return 1
	}
	return int(g.mutatedComponentsPerMutation + 0.5)
}

func (g *MutationRateGene) Mutate(rng *rand.Rand, rate float64) {
	g.mutatedComponentsPerMutation += laplace(rng, rate)
	if g.mutatedComponentsPerMutation < 0 {
		g.mutatedComponentsPerMutation = 0
	}
}
