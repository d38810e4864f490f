// Package handeval implements a fixed, non-evolved evaluation function in
// the style of Turing's 1948 hand-scored chess heuristic: material balance
// as a ratio plus a handful of positional scoring rules (mobility, piece
// safety, king safety, castling, pawn advancement, mate/check threats).
// Adapted from a bitboard evaluator onto this module's mailbox board.Board,
// so attacker/defender counts are recomputed from Ray/KnightTargets instead
// of precomputed attack boards.
package handeval

import (
	"math"

	"github.com/corvane/evochess/pkg/board"
)

// Eval combines Material and PositionPlay, scaling Material to dominate so
// a genuine material advantage always outweighs positional scoring.
type Eval struct{}

// Evaluate scores b from self's perspective. self must be b.Turn(); the
// separate parameter mirrors eval.Genome.Evaluate's signature.
func (Eval) Evaluate(b *board.Board, self board.Color) float64 {
	mat := Material{}.Evaluate(b, self)
	if mat != 0 {
		mat = math.Copysign(math.Abs(mat)+10000, mat)
	}
	return mat + PositionPlay{}.Evaluate(b, self)
}

// Material scores the material balance as a percentage ratio (own/opp or
// opp/own, whichever is larger), using Turing's piece values pawn=1,
// knight=3, bishop=3.5, rook=5, queen=10 scaled by 100. The king carries no
// material weight.
type Material struct{}

func (Material) Evaluate(b *board.Board, self board.Color) float64 {
	own := material(b, self)
	opp := material(b, self.Opponent())

	switch {
	case own == opp:
		return 0
	case own > opp:
		return float64(self.Unit()) * ratio(own, opp)
	default:
		return float64(self.Opponent().Unit()) * ratio(opp, own)
	}
}

var materialKinds = []board.PieceKind{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen}

func material(b *board.Board, c board.Color) float64 {
	var total float64
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != c {
			continue
		}
		for _, k := range materialKinds {
			if p.Kind == k {
				total += pieceValue(k)
				break
			}
		}
	}
	return total
}

func pieceValue(k board.PieceKind) float64 {
	switch k {
	case board.King:
		return 10000
	case board.Queen:
		return 1000
	case board.Rook:
		return 500
	case board.Bishop:
		return 350
	case board.Knight:
		return 300
	case board.Pawn:
		return 100
	default:
		panic("handeval: invalid piece kind")
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return 100 * a / b
}

// PositionPlay captures Turing's positional rules:
//
//   - Mobility. For Q,R,B,N, add the square root of the number of legal
//     moves the piece can make; count a capture as two moves.
//   - Piece safety. For R,B,N, add 1.0 point if defended, 1.5 if defended
//     at least twice.
//   - King mobility. Same as (1), less castling moves.
//   - King safety. Deduct points for exposure: place a virtual queen on the
//     king's square, take its reach, and subtract the square root of the
//     reach size plus the number of opposing pieces within it.
//   - Castling. 1.0 point for retaining the right, another for castling
//     being available next move; having just castled earns no credit.
//   - Pawn credit. 0.2 point per rank advanced, 0.3 for being defended by a
//     non-pawn.
//   - Mates and checks. 1.0 point for a threatened mate, 0.5 for a check.
//
// Scored with a 10x multiplier throughout for one decimal point of
// precision, as in the original rules.
type PositionPlay struct{}

func (PositionPlay) Evaluate(b *board.Board, self board.Color) float64 {
	var score float64

	if b.Castling()&castlingRights(self) != 0 {
		score += 10
	}

	mobility := map[board.Square]int{}
	var mayCheckmate, mayCheck, mayCastle bool

	for _, m := range b.LegalMoves() {
		next := b.Apply(m)

		if !mayCheckmate && next.Result().Kind == board.Checkmate {
			mayCheckmate = true
			score += 10
		} else if !mayCheck && next.InCheck(next.Turn()) {
			mayCheck = true
			score += 5
		}
		if !mayCastle && m.IsCastle() {
			mayCastle = true
			score += 10
		}

		if m.Piece != board.Pawn && !m.IsCastle() {
			mobility[m.From]++
			if m.IsCapture() {
				mobility[m.From]++
			}
		}
	}
	for _, n := range mobility {
		score += 10 * math.Sqrt(float64(n))
	}

	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != self {
			continue
		}
		if p.Kind != board.Rook && p.Kind != board.Knight && p.Kind != board.Bishop {
			continue
		}
		nonPawn, pawn := attackerCounts(b, sq, self)
		defenders := nonPawn + pawn
		if defenders > 0 {
			score += 10
		}
		if defenders > 1 {
			score += 5
		}
	}

	king := b.KingSquare(self)
	reach := queenReach(b, king)
	safety := len(reach)
	for _, s := range reach {
		if p := b.At(s); !p.IsEmpty() && p.Color == self.Opponent() {
			safety++
		}
	}
	score -= 10 * math.Sqrt(float64(safety))

	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := b.At(sq)
		if p.IsEmpty() || p.Color != self || p.Kind != board.Pawn {
			continue
		}

		var ranks int
		if self == board.White {
			ranks = sq.Rank().V() - 1
		} else {
			ranks = 6 - sq.Rank().V()
		}
		score += 2 * float64(ranks)

		nonPawn, _ := attackerCounts(b, sq, self)
		if nonPawn > 0 {
			score += 3
		}
	}

	return float64(self.Unit()) * score
}

func castlingRights(c board.Color) board.Castling {
	if c == board.White {
		return board.WhiteKingSideCastle | board.WhiteQueenSideCastle
	}
	return board.BlackKingSideCastle | board.BlackQueenSideCastle
}

// queenReach returns the squares a queen standing on sq would attack given
// the current occupancy: every square along each of the 8 sliding
// directions up to and including the first occupied square.
func queenReach(b *board.Board, sq board.Square) []board.Square {
	var out []board.Square
	for d := board.Direction(0); d < board.NumSlidingDirections; d++ {
		for _, s := range board.Ray(sq, d) {
			out = append(out, s)
			if !b.At(s).IsEmpty() {
				break
			}
		}
	}
	return out
}

func isOrthogonal(d board.Direction) bool {
	return d%2 == 0
}

func pawnDefendsAlong(c board.Color, d board.Direction) bool {
	if c == board.White {
		return d == board.DirSW || d == board.DirSE
	}
	return d == board.DirNW || d == board.DirNE
}

// attackerCounts returns how many of by's pieces attack sq, split into
// non-pawn (king, queen, rook, knight, bishop) and pawn attackers.
func attackerCounts(b *board.Board, sq board.Square, by board.Color) (nonPawn, pawn int) {
	for d := board.Direction(0); d < board.NumSlidingDirections; d++ {
		ray := board.Ray(sq, d)
		for i, s := range ray {
			p := b.At(s)
			if p.IsEmpty() {
				continue
			}
			if p.Color != by {
				break
			}
			first := i == 0
			switch {
			case p.Kind == board.Queen:
				nonPawn++
			case p.Kind == board.Rook && isOrthogonal(d):
				nonPawn++
			case p.Kind == board.Bishop && !isOrthogonal(d):
				nonPawn++
			case p.Kind == board.King && first:
				nonPawn++
			case p.Kind == board.Pawn && first && pawnDefendsAlong(by, d):
				pawn++
			}
			break
		}
	}

	for _, target := range board.KnightTargets(sq) {
		p := b.At(target)
		if !p.IsEmpty() && p.Color == by && p.Kind == board.Knight {
			nonPawn++
		}
	}
	return nonPawn, pawn
}
