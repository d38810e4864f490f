package handeval

import (
	"context"
	"math"
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegamaxFindsMateInOne(t *testing.T) {
	// White to move: Qg1-g7 (protected by the king on f6) is checkmate
	// against the lone black king.
	b, err := board.FromFEN("7k/8/5K2/8/8/8/8/6Q1 w - - 0 1")
	require.NoError(t, err)

	s := &search{eval: Eval{}}
	moves := b.LegalMoves()

	var mateMove board.Move
	found := false
	for _, m := range moves {
		next := b.Apply(m)
		if next.Result().Kind == board.Checkmate {
			mateMove = m
			found = true
			break
		}
	}
	require.True(t, found, "expected a mating move to exist in the position")

	next := b.Apply(mateMove)
	score := -s.negamax(context.Background(), &next, 0, math.Inf(-1), math.Inf(1))
	assert.True(t, math.IsInf(score, 1), "mating move should score as a win, got %v", score)
}

func TestQuiesceStopsAtQuietPosition(t *testing.T) {
	b := board.NewBoard()
	s := &search{eval: Eval{}}

	score := s.quiesce(context.Background(), &b, math.Inf(-1), math.Inf(1), quiescenceCaptureCap)
	assert.Equal(t, Eval{}.Evaluate(&b, b.Turn()), score)
	assert.Equal(t, uint64(1), s.nodes)
}

func TestOrderMovesPutsCapturesFirst(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	ordered := orderMoves(b.LegalMoves())
	require.NotEmpty(t, ordered)
	assert.True(t, ordered[0].IsCapture())
}
