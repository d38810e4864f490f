package eval

import (
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// FreedomToMoveGene scores the side to move's legal-move count, normalized,
// plus an additive "active pieces" term for non-pawn, non-king pieces that
// have left their home square. Grounded on Freedom_To_Move_Gene.cpp, folding
// in Active_Pieces_Gene.cpp as additive detail per SPEC_FULL.md §6
// (Active_Pieces_Gene has no dedicated slot in spec.md's gene list, and this
// board representation has no per-square "has moved" flag to reproduce it
// literally, so presence off the home square stands in for it).
type FreedomToMoveGene struct {
	Base
	maximumMoves float64
}

func NewFreedomToMoveGene() *FreedomToMoveGene {
	return &FreedomToMoveGene{Base: NewBase(1, 0.5), maximumMoves: 128}
}

func (g *FreedomToMoveGene) Name() string { return "Freedom to Move Gene" }

func (g *FreedomToMoveGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	var mobility float64
	if perspective == b.Turn() {
		mobility = float64(len(b.LegalMoves())) / g.maximumMoves
	}
	return mobility + activePieceFraction(b, perspective)
}

func activePieceFraction(b *board.Board, perspective board.Color) float64 {
	const nonPawnNonKingPerSide = 7 // 2N + 2B + 2R + Q
	var active int
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != perspective {
			continue
		}
		if p.Kind == board.Pawn || p.Kind == board.King {
			continue
		}
		if !isHomeSquare(p, sq) {
			active++
		}
	}
	return float64(active) / nonPawnNonKingPerSide
}

func isHomeSquare(p board.Piece, sq board.Square) bool {
	rank := board.Rank1
	if p.Color == board.Black {
		rank = board.Rank8
	}
	if sq.Rank() != rank {
		return false
	}
	switch sq.File() {
	case board.FileB, board.FileG:
		return p.Kind == board.Knight
	case board.FileC, board.FileF:
		return p.Kind == board.Bishop
	case board.FileA, board.FileH:
		return p.Kind == board.Rook
	case board.FileD:
		return p.Kind == board.Queen
	default:
		return false
	}
}

func (g *FreedomToMoveGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// SphereOfInfluenceGene counts squares that are not safe for the opponent's
// king -- i.e. attacked by some piece -- as a proxy for board control.
// Grounded on Sphere_of_Influence_Gene.cpp; "opponent-half squares weighted"
// per spec.md §4.6 is implemented by doubling the count of attacked squares
// on the opponent's side of the board.
type SphereOfInfluenceGene struct {
	Base
	opponentHalfBonus float64
}

func NewSphereOfInfluenceGene() *SphereOfInfluenceGene {
	return &SphereOfInfluenceGene{Base: NewBase(0.3, 0.5), opponentHalfBonus: 1}
}

func (g *SphereOfInfluenceGene) Name() string { return "Sphere of Influence Gene" }

func (g *SphereOfInfluenceGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	var sum float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		if !b.IsAttacked(sq, perspective) {
			continue
		}
		weight := 1.0
		if onOpponentHalf(sq, perspective) {
			weight += g.opponentHalfBonus
		}
		sum += weight
	}
	return sum / 64.0
}

func onOpponentHalf(sq board.Square, perspective board.Color) bool {
	if perspective == board.White {
		return sq.Rank() >= board.Rank5
	}
	return sq.Rank() <= board.Rank4
}

func (g *SphereOfInfluenceGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }
