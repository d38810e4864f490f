package eval

import (
	"math"
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// Genome is an ordered sequence of Gene instances plus the two special-role
// genes named in spec.md §3. Genome.Evaluate is the composite score
// search.Search maximizes.
type Genome struct {
	// ID identifies this genome in the genome file (spec.md §6): the
	// "ID: <n>" line a genome block begins with, and the id genepool.Pool
	// writes into "Still Alive" lines. Zero until genepool.Pool assigns one.
	ID uint64

	Genes []Gene

	PieceStrength *PieceStrengthGene
	SearchPolicy  *SearchPolicyGene

	// ActiveThreshold gates genes whose |priority| at the current game
	// progress falls below it, in addition to the per-gene activation
	// window. Supplement recovered from
	// original_source/include/Genes/Priority_Threshold_Gene.h: genes below
	// an evolved priority are skipped entirely rather than scored at a
	// near-zero weight, so that evolution can "turn off" a gene cheaply
	// without driving its priority to exactly zero.
	ActiveThreshold float64
}

// NewGenome returns a genome containing every representative gene from
// spec.md §4.6, wired to a shared PieceStrengthGene and SearchPolicyGene,
// with fixed per-gene starting priorities; some (passed pawns, checkmate
// material) start low or at zero in the opening and rise toward the endgame.
func NewGenome() *Genome {
	strength := NewPieceStrengthGene()
	policy := NewSearchPolicyGene()

	g := &Genome{
		PieceStrength:   strength,
		SearchPolicy:    policy,
		ActiveThreshold: 0,
	}
	g.Genes = []Gene{
		strength,
		policy,
		NewTotalForceGene(strength),
		NewOpponentPiecesTargetedGene(strength),
		NewFreedomToMoveGene(),
		NewPawnAdvancementGene(),
		NewPassedPawnGene(),
		NewStackedPawnsGene(),
		NewPawnIslandsGene(),
		NewPawnStructureGene(),
		NewCastlingPossibleGene(),
		NewKingConfinementGene(),
		NewKingProtectionGene(),
		NewSphereOfInfluenceGene(),
		NewCheckmateMaterialGene(strength),
		NewOpeningMoveGene(),
		NewDrawValueGene(),
		NewMoveSortingGene(),
		NewMutationRateGene(),
		NewNullGene(),
	}
	return g
}

// GameProgress estimates how far the game has advanced, in [0,1], as the
// fraction of non-king material that has left the board, using whichever
// side has lost the most material (the side closer to having only a bare
// king is what determines how "endgame-like" the position is). Grounded on
// Total_Force_Gene::game_progress: material is weighed by the piece-strength
// gene and normalized against a full starting army so the result is
// independent of the gene's evolved absolute scale.
func (g *Genome) GameProgress(b *board.Board) float64 {
	kingValue := math.Abs(g.PieceStrength.Value(board.King))
	normalizer := g.PieceStrength.normalizer()
	if normalizer == kingValue {
		return 0
	}

	var materialLeft [board.NumColors]float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() {
			continue
		}
		materialLeft[p.Color] += math.Abs(g.PieceStrength.Value(p.Kind))
	}

	weakest := materialLeft[board.White]
	if materialLeft[board.Black] < weakest {
		weakest = materialLeft[board.Black]
	}

	progress := 1 - (weakest-kingValue)/(normalizer-kingValue)
	return clamp01(progress)
}

// Evaluate returns the composite score from self's perspective: the sum of
// every active gene's contribution for self minus the same sum for self's
// opponent, per spec.md §4.6. depth is the number of plies already searched
// below the search root, passed through to every gene's ScoreBoard; none of
// the current genes use it.
func (g *Genome) Evaluate(b *board.Board, self board.Color, depth int) float64 {
	progress := g.GameProgress(b)
	return g.perspectiveScore(b, self, depth, progress) - g.perspectiveScore(b, self.Opponent(), depth, progress)
}

func (g *Genome) perspectiveScore(b *board.Board, perspective board.Color, depth int, progress float64) float64 {
	var sum float64
	for _, gene := range g.Genes {
		priority := gene.Priority(progress)
		if priority == 0 || math.Abs(priority) < g.ActiveThreshold {
			continue
		}
		sum += priority * gene.ScoreBoard(b, perspective, depth)
	}
	return sum
}

// Mutate perturbs exactly one randomly chosen gene's parameters by rate,
// matching Gene_Pool.cpp's practice of mutating a single randomly-selected
// component per breeding round rather than the whole genome at once.
// genepool.Pool calls this MutationRate().MutationCount() times per
// breeding event, per spec.md §4.9's "number of point mutations ...
// distributed across the set of mutable scalar parameters in all genes".
func (g *Genome) Mutate(rng *rand.Rand, rate float64) {
	if len(g.Genes) == 0 {
		return
	}
	g.Genes[rng.Intn(len(g.Genes))].Mutate(rng, rate)
}

// MutationRate returns the genome's Mutation Rate Gene, or nil if absent.
func (g *Genome) MutationRate() *MutationRateGene {
	for _, gene := range g.Genes {
		if mr, ok := gene.(*MutationRateGene); ok {
			return mr
		}
	}
	return nil
}

// NewGenomeFromParents implements spec.md §4.9's cross-mode reproduction:
// for each gene slot, the offspring copies parent a's or parent b's gene
// with equal probability, then re-seats the piece-strength reference in
// whichever material genes it kept so that the offspring's shared gene is
// its own copy rather than aliasing either parent's. a and b must share the
// same gene layout (both produced by NewGenome). The re-seat runs after every
// slot's coin flip, so material genes kept from a also follow a
// piece-strength gene taken from b.
func NewGenomeFromParents(a, b *Genome, rng *rand.Rand) *Genome {
	offspring := a.Clone()
	if len(b.Genes) != len(offspring.Genes) {
		return offspring
	}
	for i := range offspring.Genes {
		if rng.Intn(2) == 0 {
			continue
		}
		switch offspring.Genes[i].(type) {
		case *PieceStrengthGene:
			cp := *b.PieceStrength
			offspring.PieceStrength = &cp
			offspring.Genes[i] = offspring.PieceStrength
		case *SearchPolicyGene:
			cp := *b.SearchPolicy
			offspring.SearchPolicy = &cp
			offspring.Genes[i] = offspring.SearchPolicy
		default:
			offspring.Genes[i] = cloneGene(b.Genes[i], offspring.PieceStrength)
		}
	}
	for i, gene := range offspring.Genes {
		switch gene.(type) {
		case *TotalForceGene, *OpponentPiecesTargetedGene, *CheckmateMaterialGene:
			offspring.Genes[i] = cloneGene(gene, offspring.PieceStrength)
		}
	}
	return offspring
}
