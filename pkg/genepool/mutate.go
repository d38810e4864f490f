package genepool

import (
	"math/rand"

	"github.com/corvane/evochess/pkg/eval"
)

// mutationScale is the unit Laplace-distribution scale each point
// mutation draws its offset from; each gene's Mutate applies its own
// gene-specific width on top of this, per spec.md §4.9.
const mutationScale = 1.0

// breed produces the genome that replaces a round's loser: a mutated
// clone of the winner in cloning mode, or a mutated cross of both
// parents in mating mode (eval.NewGenomeFromParents), per spec.md §4.9's
// "Reproduction" paragraph. The number of point mutations applied comes
// from the offspring's own evolved Mutation Rate Gene.
func breed(mode ReproductionMode, winner, other *eval.Genome, rng *rand.Rand) *eval.Genome {
	var offspring *eval.Genome
	if mode == Mating {
		offspring = eval.NewGenomeFromParents(winner, other, rng)
	} else {
		offspring = winner.Clone()
	}

	count := 1
	if mr := offspring.MutationRate(); mr != nil {
		count = mr.MutationCount()
	}
	for i := 0; i < count; i++ {
		offspring.Mutate(rng, mutationScale)
	}
	return offspring
}
