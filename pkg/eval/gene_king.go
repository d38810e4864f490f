package eval

import (
	"math"
	"math/rand"

	"github.com/corvane/evochess/pkg/board"
)

// CastlingPossibleGene rewards an unmoved king and rook, clear intervening
// squares, and a safe king walk, with independent kingside/queenside
// preference weights. Grounded on Castling_Possible_Gene.cpp; simplified
// since this board does not keep Castling_Possible_Gene's "move index at
// which castling occurred" record (spec.md §9's minimal-state recommendation
// is followed here instead): once castling rights are gone, the score is
// zero regardless of whether they were lost by castling or by losing the
// right some other way, rather than collapsing to the preference constant
// only in the castled case.
type CastlingPossibleGene struct {
	Base
	kingsidePreference  float64
	queensidePreference float64
}

func NewCastlingPossibleGene() *CastlingPossibleGene {
	return &CastlingPossibleGene{Base: NewBase(0.3, 0), kingsidePreference: 1, queensidePreference: 0.8}
}

func (g *CastlingPossibleGene) Name() string { return "Castling Possible Gene" }

func (g *CastlingPossibleGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	rights := b.Castling()
	kingside, queenside := board.WhiteKingSideCastle, board.WhiteQueenSideCastle
	if perspective == board.Black {
		kingside, queenside = board.BlackKingSideCastle, board.BlackQueenSideCastle
	}
	if !rights.IsAllowed(kingside) && !rights.IsAllowed(queenside) {
		return 0
	}

	kingSq := b.KingSquare(perspective)
	var score float64
	if rights.IsAllowed(kingside) {
		score += g.sideScore(b, perspective, kingSq, board.FileH, g.kingsidePreference)
	}
	if rights.IsAllowed(queenside) {
		score += g.sideScore(b, perspective, kingSq, board.FileA, g.queensidePreference)
	}

	normalizer := math.Abs(g.kingsidePreference) + math.Abs(g.queensidePreference)
	if normalizer == 0 {
		return 0
	}
	return score / normalizer
}

func (g *CastlingPossibleGene) sideScore(b *board.Board, perspective board.Color, kingSq board.Square, rookFile board.File, preference float64) float64 {
	filesToClear := int(kingSq.File()) - int(rookFile)
	if filesToClear < 0 {
		filesToClear = -filesToClear
	}
	filesToClear--
	scorePerSquare := preference / float64(filesToClear+4)

	lo, hi := kingSq.File(), rookFile
	if rookFile < kingSq.File() {
		lo, hi = rookFile, kingSq.File()
	}

	// The caller has already verified rights allow this side, which this
	// board model treats as equivalent to "rook has not moved"; score that
	// alone, matching Castling_Possible_Gene.cpp's unconditional credit for
	// an unmoved rook before scoring the squares between king and rook.
	score := scorePerSquare
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		if sq.Rank() != kingSq.Rank() || sq.File() <= lo || sq.File() >= hi {
			continue
		}
		p := b.At(sq)
		if !p.IsEmpty() {
			continue
		}
		score += scorePerSquare

		delta := int(sq.File()) - int(kingSq.File())
		if delta < 0 {
			delta = -delta
		}
		if delta <= 2 && !b.IsAttacked(sq, perspective.Opponent()) {
			score += scorePerSquare
		}
	}
	return score
}

func (g *CastlingPossibleGene) Mutate(rng *rand.Rand, rate float64) {
	if rng.Intn(2) == 0 {
		g.kingsidePreference += laplace(rng, rate)
	} else {
		g.queensidePreference += laplace(rng, rate)
	}
}

// KingConfinementGene flood-fills from the king's square over squares that
// are empty and not attacked by the opponent, penalizing friendly-occupied
// and opponent-attacked boundary squares with independent coefficients.
// Grounded on King_Confinement_Gene.cpp.
type KingConfinementGene struct {
	Base
	friendlyBlockScore float64
	opponentBlockScore float64
}

func NewKingConfinementGene() *KingConfinementGene {
	return &KingConfinementGene{Base: NewBase(0, 0.5), friendlyBlockScore: -1, opponentBlockScore: -2}
}

func (g *KingConfinementGene) Name() string { return "King Confinement Gene" }

func (g *KingConfinementGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	kingSq := b.KingSquare(perspective)

	var visited [64]bool
	queue := []board.Square{kingSq}
	visited[kingSq] = true

	var friendlyBlockTotal, opponentBlockTotal float64
	var freeSpaceTotal int

	for i := 0; i < len(queue); i++ {
		sq := queue[i]
		attackedByOther := b.IsAttacked(sq, perspective.Opponent())
		p := b.At(sq)
		occupiedBySame := !p.IsEmpty() && p.Color == perspective && p.Kind != board.King

		keepGoing := sq == kingSq
		switch {
		case occupiedBySame:
			friendlyBlockTotal += g.friendlyBlockScore
		case attackedByOther:
			opponentBlockTotal += g.opponentBlockScore
		default:
			freeSpaceTotal++
			keepGoing = true
		}

		if !keepGoing {
			continue
		}
		for _, next := range board.KingTargets(sq) {
			if next == board.NoSquare || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	normalizer := math.Abs(g.friendlyBlockScore) + math.Abs(g.opponentBlockScore)
	if freeSpaceTotal == 0 || normalizer == 0 {
		return 0
	}
	return (friendlyBlockTotal + opponentBlockTotal) / float64(freeSpaceTotal) / normalizer
}

func (g *KingConfinementGene) Mutate(rng *rand.Rand, rate float64) {
	amount := laplace(rng, rate*2)
	if rng.Intn(2) == 0 {
		g.friendlyBlockScore += amount
	} else {
		g.opponentBlockScore += amount
	}
}

// KingProtectionGene counts the open (unoccupied) lines of sight from the
// king outward along all 16 attack directions, lower being safer. Grounded
// on King_Protection_Gene.cpp; the normalizing constant (35) is the maximum
// number of open squares summed across all directions from a square in the
// board's interior, matching the original's fixed constant rather than a
// per-square recomputation.
type KingProtectionGene struct{ Base }

func NewKingProtectionGene() *KingProtectionGene { return &KingProtectionGene{Base: NewBase(0.2, 0.1)} }

func (g *KingProtectionGene) Name() string { return "King Protection Gene" }

const kingProtectionMaxOpenSquares = 8 + 7 + 7 + 7 + 6

func (g *KingProtectionGene) ScoreBoard(b *board.Board, perspective board.Color, _ int) float64 {
	kingSq := b.KingSquare(perspective)

	var openSquares int
	for dir := board.Direction(0); dir < board.NumSlidingDirections; dir++ {
		for _, sq := range board.Ray(kingSq, dir) {
			if !b.At(sq).IsEmpty() {
				break
			}
			openSquares++
		}
	}
	for i := 0; i < 8; i++ {
		sq := board.KnightTargetAt(kingSq, i)
		if sq != board.NoSquare && b.At(sq).IsEmpty() {
			openSquares++
		}
	}

	return float64(kingProtectionMaxOpenSquares-openSquares) / kingProtectionMaxOpenSquares
}

func (g *KingProtectionGene) Mutate(rng *rand.Rand, rate float64) { g.MutatePriority(rng, rate) }
