package eval

import (
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// TotalForceGene sums the piece-strength value of every piece perspective
// owns. Grounded on Total_Force_Gene.cpp.
type TotalForceGene struct {
	Base
	strength *PieceStrengthGene
}

func NewTotalForceGene(strength *PieceStrengthGene) *TotalForceGene {
	return &TotalForceGene{Base: NewBase(1, 1), strength: strength}
}

func (g *TotalForceGene) Name() string { return "Total Force Gene" }

func (g *TotalForceGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	var sum float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.Color == perspective && !p.IsEmpty() {
			sum += g.strength.Value(p.Kind)
		}
	}
	return sum
}

func (g *TotalForceGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// OpponentPiecesTargetedGene sums the piece-strength value of every enemy
// piece currently attacked by perspective. Grounded on
// Opponent_Pieces_Targeted_Gene.cpp, adapted from the teacher's attack-map
// representation (board.Board.IsAttacked) in place of the original's
// square-by-square attacker recomputation.
type OpponentPiecesTargetedGene struct {
	Base
	strength *PieceStrengthGene
}

func NewOpponentPiecesTargetedGene(strength *PieceStrengthGene) *OpponentPiecesTargetedGene {
	return &OpponentPiecesTargetedGene{Base: NewBase(0.3, 0.1), strength: strength}
}

func (g *OpponentPiecesTargetedGene) Name() string { return "Opponent Pieces Targeted Gene" }

func (g *OpponentPiecesTargetedGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	opponent := perspective.Opponent()
	var sum float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.Color != opponent || p.IsEmpty() {
			continue
		}
		if b.IsAttacked(sq, perspective) {
			sum += g.strength.Value(p.Kind)
		}
	}
	return sum
}

func (g *OpponentPiecesTargetedGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }

// CheckmateMaterialGene scores +1 for perspective if it retains enough
// material to ever force checkmate, -1 if not, grounded on
// Checkmate_Material_Gene.cpp's "has mating material" sign convention. The
// test is the hasMatingMaterial helper below, which looks only at
// perspective's pieces.
type CheckmateMaterialGene struct {
	Base
	strength *PieceStrengthGene
}

func NewCheckmateMaterialGene(strength *PieceStrengthGene) *CheckmateMaterialGene {
	return &CheckmateMaterialGene{Base: NewBase(0, 2), strength: strength}
}

func (g *CheckmateMaterialGene) Name() string { return "Checkmate Material Gene" }

func (g *CheckmateMaterialGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	if hasMatingMaterial(b, perspective) {
		return 1
	}
	return -1
}

// hasMatingMaterial reports whether perspective alone (ignoring the
// opponent's material) retains a pawn, rook or queen, or at least two minor
// pieces that are not all bishops on squares of one colour -- i.e. anything
// beyond a bare king, a single minor piece, or same-coloured bishops only.
func hasMatingMaterial(b *board.Board, perspective board.Color) bool {
	var knights, lightBishops, darkBishops int
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.Color != perspective || p.IsEmpty() {
			continue
		}
		switch p.Kind {
		case board.Pawn, board.Rook, board.Queen:
			return true
		case board.Knight:
			knights++
		case board.Bishop:
			if isLightSquare(sq) {
				lightBishops++
			} else {
				darkBishops++
			}
		}
	}
	minors := knights + lightBishops + darkBishops
	if minors <= 1 {
		return false
	}
	if knights == 0 && (lightBishops == 0 || darkBishops == 0) {
		return false
	}
	return true
}

func isLightSquare(sq board.Square) bool {
	return (int(sq.File())+int(sq.Rank()))%2 != 0
}

func (g *CheckmateMaterialGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }
