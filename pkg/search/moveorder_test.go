package search

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMovesPutsPVMoveFirst(t *testing.T) {
	b := board.NewBoard()
	genome := eval.NewGenome()
	moves := b.LegalMoves()
	require.NotEmpty(t, moves)

	pv := moves[len(moves)-1] // pick whichever move sorts last by default
	orderMoves(moves, &b, genome, nil, pv, true)

	assert.True(t, moves[0].Equals(pv))
}

func TestOrderMovesPutsRecaptureBeforeOtherCaptures(t *testing.T) {
	// A white knight takes a pawn on d5; black can recapture with either
	// flanking pawn, which should now sort ahead of any other move.
	b, err := board.FromFEN("4k3/8/2p1p3/3p4/8/2N5/8/4K3 w - - 0 1")
	require.NoError(t, err)

	var capture board.Move
	var found bool
	for _, m := range b.LegalMoves() {
		if m.IsCapture() && m.To == board.D5 {
			capture, found = m, true
			break
		}
	}
	require.True(t, found)
	next := b.Apply(capture)

	sorting := eval.NewMoveSortingGene()
	moves := next.LegalMoves()
	require.NotEmpty(t, moves)

	orderMoves(moves, &next, eval.NewGenome(), sorting, board.Move{}, false)

	assert.True(t, moves[0].IsCapture())
	assert.Equal(t, board.D5, moves[0].To)
}
