package eval

import (
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// PieceStrengthGene holds the six piece values shared by reference with
// every gene that weighs material (Total_Force_Gene, Opponent_Pieces_Targeted,
// Checkmate_Material), per spec.md §3's "Piece-strength gene" special role.
// It never contributes to the composite score itself: ScoreBoard is always
// zero, grounded on Piece_Strength_Gene.cpp's score_board.
type PieceStrengthGene struct {
	Base

	values [board.NumPieceKinds]float64
}

// NewPieceStrengthGene returns a gene with the conventional pawn=1 opening
// values, grounded on the teacher's eval.NominalValue table.
func NewPieceStrengthGene() *PieceStrengthGene {
	g := &PieceStrengthGene{Base: NewBase(0, 0)}
	g.values[board.Pawn] = 1
	g.values[board.Knight] = 3
	g.values[board.Bishop] = 3
	g.values[board.Rook] = 5
	g.values[board.Queen] = 9
	g.values[board.King] = 100
	return g
}

func (g *PieceStrengthGene) Name() string { return "Piece Strength Gene" }

func (g *PieceStrengthGene) ScoreBoard(*board.Board, board.Color, int) float64 { return 0 }

// Value returns the evolved value of a piece kind, zero for NoPieceKind.
func (g *PieceStrengthGene) Value(kind board.PieceKind) float64 {
	if kind == board.NoPieceKind {
		return 0
	}
	return g.values[kind]
}

// normalizer is the weighted piece count of a full army (8 pawns, 2 of each
// minor/rook, 1 queen, 1 king), used by Genome.GameProgress to turn absolute
// material left into a [0,1] fraction. Grounded on
// Piece_Strength_Gene::recalculate_normalizing_value.
func (g *PieceStrengthGene) normalizer() float64 {
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return 8*abs(g.values[board.Pawn]) +
		2*abs(g.values[board.Rook]) +
		2*abs(g.values[board.Knight]) +
		2*abs(g.values[board.Bishop]) +
		abs(g.values[board.Queen]) +
		abs(g.values[board.King])
}

func (g *PieceStrengthGene) Mutate(rng *rand.Rand, rate float64) {
	kind := board.AllPieceKinds[rng.Intn(len(board.AllPieceKinds))]
	g.values[kind] += laplace(rng, rate)
}
