package eval

import (
	"math"
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

func homeRank(c board.Color) board.Rank {
	if c == board.White {
		return board.Rank2
	}
	return board.Rank7
}

// PawnAdvancementGene rewards pawns in proportion to their distance from
// home, raised to a mutable power so evolution can choose between a linear
// reward and one that only values pawns near promotion. Grounded on
// Pawn_Advancement_Gene.cpp.
type PawnAdvancementGene struct {
	Base
	nonLinearity float64
}

func NewPawnAdvancementGene() *PawnAdvancementGene {
	return &PawnAdvancementGene{Base: NewBase(0.2, 0.6), nonLinearity: 0}
}

func (g *PawnAdvancementGene) Name() string { return "Pawn Advancement Gene" }

func (g *PawnAdvancementGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	home := homeRank(perspective)
	var score float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != perspective || p.Kind != board.Pawn {
			continue
		}
		distance := float64(home.Distance(sq.Rank()))
		score += math.Pow(distance/5.0, 1.0+g.nonLinearity) / 8
	}
	return score
}

func (g *PawnAdvancementGene) Mutate(rng *rand.Rand, rate float64) {
	if rng.Intn(2) == 0 {
		g.nonLinearity += laplace(rng, rate*0.01)
	} else {
		g.MutatePriority(rng, rate)
	}
}

// PassedPawnGene rewards own pawns not blocked, on their file or an
// adjacent one, by an enemy pawn further toward promotion: each such pawn
// counts 1 and the total is divided by eight. Grounded on
// Passed_Pawn_Gene.cpp's file-sweep.
type PassedPawnGene struct{ Base }

func NewPassedPawnGene() *PassedPawnGene { return &PassedPawnGene{Base: NewBase(0.1, 0.8)} }

func (g *PassedPawnGene) Name() string { return "Passed Pawn Gene" }

func (g *PassedPawnGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	forward := 1
	if perspective == board.Black {
		forward = -1
	}

	var score float64
	for f := board.FileA; f <= board.FileH; f++ {
		for sq := board.Square(0); sq < board.NumSquares; sq++ {
			if sq.File() != f {
				continue
			}
			p := b.At(sq)
			if p.IsEmpty() || p.Kind != board.Pawn || p.Color != perspective {
				continue
			}
			if isPassed(b, sq, f, perspective, forward) {
				score += 1
			}
		}
	}
	return score / 8
}

func isPassed(b *board.Board, sq board.Square, f board.File, perspective board.Color, forward int) bool {
	enemy := perspective.Opponent()
	lo, hi := f, f
	if f > board.FileA {
		lo = f - 1
	}
	if f < board.FileH {
		hi = f + 1
	}

	for candidate := board.Square(0); candidate < board.NumSquares; candidate++ {
		if candidate.File() < lo || candidate.File() > hi {
			continue
		}
		p := b.At(candidate)
		if p.IsEmpty() || p.Kind != board.Pawn || p.Color != enemy {
			continue
		}
		ahead := (int(candidate.Rank())-int(sq.Rank()))*forward > 0
		if ahead {
			return false
		}
	}
	return true
}

func (g *PassedPawnGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// StackedPawnsGene penalizes files with more than one own pawn. Grounded on
// Stacked_Pawns_Gene.cpp; the score is negative (and divided by six, the
// most pawns beyond the first on their file that one side can have across
// the whole board) but
// the priority can still evolve to be negative, flipping the sign.
type StackedPawnsGene struct{ Base }

func NewStackedPawnsGene() *StackedPawnsGene { return &StackedPawnsGene{Base: NewBase(0.3, 0.1)} }

func (g *StackedPawnsGene) Name() string { return "Stacked Pawns Gene" }

func (g *StackedPawnsGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	var counts [8]int
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Kind != board.Pawn || p.Color != perspective {
			continue
		}
		counts[sq.File()]++
	}
	var stacked float64
	for _, n := range counts {
		if n > 1 {
			stacked += float64(n - 1)
		}
	}
	return -stacked / 6
}

func (g *StackedPawnsGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// PawnIslandsGene penalizes the number of contiguous-file groups of own
// pawns. Grounded on Pawn_Islands_Gene.cpp.
type PawnIslandsGene struct{ Base }

func NewPawnIslandsGene() *PawnIslandsGene { return &PawnIslandsGene{Base: NewBase(0.2, 0.1)} }

func (g *PawnIslandsGene) Name() string { return "Pawn Islands Gene" }

func (g *PawnIslandsGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	var islands int
	onIsland := false
	for f := board.FileA; f <= board.FileH; f++ {
		found := false
		for sq := board.Square(0); sq < board.NumSquares; sq++ {
			if sq.File() != f {
				continue
			}
			p := b.At(sq)
			if !p.IsEmpty() && p.Kind == board.Pawn && p.Color == perspective {
				found = true
				break
			}
		}
		if found && !onIsland {
			islands++
		}
		onIsland = found
	}
	return -float64(islands) / 4
}

func (g *PawnIslandsGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// PawnStructureGene rewards own pawns defended by another pawn more than
// ones defended only by a piece, with the two weights kept normalized to sum
// to a constant. Grounded on Pawn_Structure_Gene.cpp.
type PawnStructureGene struct {
	Base
	guardedByPawn  float64
	guardedByPiece float64
}

func NewPawnStructureGene() *PawnStructureGene {
	g := &PawnStructureGene{Base: NewBase(0.2, 0.1), guardedByPawn: 0.7, guardedByPiece: 0.3}
	g.normalize()
	return g
}

func (g *PawnStructureGene) normalize() {
	sum := g.guardedByPawn + g.guardedByPiece
	if sum == 0 {
		g.guardedByPawn, g.guardedByPiece = 0.5, 0.5
		return
	}
	g.guardedByPawn /= sum
	g.guardedByPiece /= sum
}

func (g *PawnStructureGene) Name() string { return "Pawn Structure Gene" }

func (g *PawnStructureGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	guardRankDelta := -1
	if perspective == board.Black {
		guardRankDelta = 1
	}

	var score float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Kind != board.Pawn || p.Color != perspective {
			continue
		}

		guardRank := int(sq.Rank()) + guardRankDelta
		if guardRank < 0 || guardRank > int(board.Rank8) {
			continue
		}
		switch {
		case pawnAt(b, sq.File()-1, board.Rank(guardRank), perspective) || pawnAt(b, sq.File()+1, board.Rank(guardRank), perspective):
			score += g.guardedByPawn
		case b.IsAttacked(sq, perspective):
			score += g.guardedByPiece
		}
	}
	return score / 8
}

func pawnAt(b *board.Board, f board.File, r board.Rank, perspective board.Color) bool {
	if f > board.FileH { // wraps below zero for File(-1) since File is unsigned
		return false
	}
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		if sq.File() == f && sq.Rank() == r {
			p := b.At(sq)
			return !p.IsEmpty() && p.Kind == board.Pawn && p.Color == perspective
		}
	}
	return false
}

func (g *PawnStructureGene) Mutate(rng *rand.Rand, rate float64) {
	if rng.Intn(2) == 0 {
		g.guardedByPawn += laplace(rng, rate)
	} else {
		g.guardedByPiece += laplace(rng, rate)
	}
	g.normalize()
}
