package search

import (
	"context"
	"sort"

	"github.com/corvane/evochess/pkg/board"
)

// quiesce implements spec.md §4.7 step 5: rather than a general capture
// search, it plays out forced recaptures on the square the last move
// landed on, weakest attacker first (tie-broken by piece kind), until no
// further capture is legal on that square or quiescenceCaptureCap is
// reached. Grounded on teacher's pkg/turochamp/quiescence.go's
// recapture-on-target-square selective extension, adapted from that
// file's mayRecapture/target tracking to this board's immutable Apply.
func (s *Search) quiesce(ctx context.Context, b *board.Board, alpha, beta Score, ply, capturesLeft int) Score {
	if s.MoveNow.Load() {
		return alpha
	}
	select {
	case <-ctx.Done():
		return alpha
	default:
	}

	if result := b.Result(); !result.IsOngoing() {
		return s.terminalScore(b, result)
	}

	s.nodes++

	standPat := Score{Value: s.Genome.Evaluate(b, b.Turn(), ply)}
	alpha = Max(alpha, standPat)
	if !alpha.Less(beta) {
		return alpha
	}
	if capturesLeft <= 0 {
		return alpha
	}

	last, ok := b.LastMove()
	if !ok {
		return alpha
	}
	target := last.To

	var recaptures []board.Move
	for _, m := range b.LegalMoves() {
		if m.IsCapture() && m.To == target {
			recaptures = append(recaptures, m)
		}
	}
	if len(recaptures) == 0 {
		return alpha
	}

	sort.Slice(recaptures, func(i, j int) bool {
		vi := s.Genome.PieceStrength.Value(recaptures[i].Piece)
		vj := s.Genome.PieceStrength.Value(recaptures[j].Piece)
		if vi != vj {
			return vi < vj
		}
		return recaptures[i].Piece < recaptures[j].Piece
	})

	for _, m := range recaptures {
		next := b.Apply(m)
		score := IncrementMateDistance(s.quiesce(ctx, &next, beta.Negate(), alpha.Negate(), ply+1, capturesLeft-1)).Negate()
		alpha = Max(alpha, score)
		if !alpha.Less(beta) {
			break
		}
	}
	return alpha
}
