package handeval

import (
	"context"
	"math"
	"sort"

	"github.com/corvane/evochess/pkg/board"
)

// quiescenceCaptureCap bounds the quiet-search recursion so a long forced
// capture sequence cannot recurse without bound.
const quiescenceCaptureCap = 8

// search carries one negamax descent's node count; values are not reused
// across concurrent searches.
type search struct {
	eval  Eval
	nodes uint64
}

// negamax returns depth's best score from b.Turn()'s perspective, extending
// into quiescence once depth reaches zero.
func (s *search) negamax(ctx context.Context, b *board.Board, depth int, alpha, beta float64) float64 {
	if ctx.Err() != nil {
		return s.eval.Evaluate(b, b.Turn())
	}
	if !b.Result().IsOngoing() {
		return s.terminal(b)
	}
	if depth == 0 {
		return s.quiesce(ctx, b, alpha, beta, quiescenceCaptureCap)
	}

	s.nodes++
	moves := orderMoves(b.LegalMoves())

	best := math.Inf(-1)
	for _, m := range moves {
		next := b.Apply(m)
		score := -s.negamax(ctx, &next, depth-1, -beta, -alpha)
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// terminal scores a game-over position from the side to move's perspective:
// a loss for being checkmated, zero for any drawn outcome.
func (s *search) terminal(b *board.Board) float64 {
	result := b.Result()
	if result.Kind == board.Checkmate {
		return math.Inf(-1)
	}
	return 0
}

// quiesce extends the search along "considerable" moves only: recaptures on
// the square the last move landed on, captures of undefended pieces, captures that win
// material, and moves that deliver checkmate.
func (s *search) quiesce(ctx context.Context, b *board.Board, alpha, beta float64, capsLeft int) float64 {
	s.nodes++

	standPat := s.eval.Evaluate(b, b.Turn())
	if standPat > alpha {
		alpha = standPat
	}
	if alpha >= beta || capsLeft == 0 || ctx.Err() != nil {
		return alpha
	}

	var recaptureTarget board.Square
	mayRecapture := false
	if last, ok := b.LastMove(); ok && last.IsCapture() {
		mayRecapture = true
		recaptureTarget = last.To
	}

	for _, m := range orderMoves(b.LegalMoves()) {
		if !m.IsCapture() {
			continue
		}

		next := b.Apply(m)
		considerable := next.Result().Kind == board.Checkmate
		if mayRecapture && m.To == recaptureTarget {
			considerable = true
		}
		if pieceValue(m.Piece) < pieceValue(m.Capture) {
			considerable = true
		}
		if !next.IsAttacked(m.To, next.Turn()) {
			considerable = true // the captured piece was undefended
		}
		if !considerable {
			continue
		}

		score := -s.quiesce(ctx, &next, -beta, -alpha, capsLeft-1)
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return alpha
}

// orderMoves puts captures first so alpha-beta cutoffs trigger earlier.
func orderMoves(moves []board.Move) []board.Move {
	out := make([]board.Move, len(moves))
	copy(out, moves)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsCapture() && !out[j].IsCapture()
	})
	return out
}
