package search

import (
	"context"
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuiesceStopsWhenNoRecaptureIsLegal(t *testing.T) {
	b := board.NewBoard()
	s := NewSearch(eval.NewGenome())

	score := s.quiesce(context.Background(), &b, NegInfScore, PosInfScore, 0, quiescenceCaptureCap)
	assert.False(t, score.IsMate())
}

func TestQuiescePlaysOutAForcedRecaptureSequence(t *testing.T) {
	// White knight takes a pawn defended by two black pawns; after
	// Nxd5 cxd5 (or exd5) the quiescence search should settle rather than
	// stop at the first capture, since a legal recapture remains on d5.
	b, err := board.FromFEN("4k3/8/2p1p3/3p4/8/2N5/8/4K3 w - - 0 1")
	require.NoError(t, err)

	var capture board.Move
	for _, m := range b.LegalMoves() {
		if m.IsCapture() && m.To == board.D5 {
			capture = m
			break
		}
	}
	require.True(t, capture.Piece == board.Knight)
	next := b.Apply(capture)

	s := NewSearch(eval.NewGenome())
	_ = s.quiesce(context.Background(), &next, NegInfScore, PosInfScore, 0, quiescenceCaptureCap)

	assert.Positive(t, s.nodes)
}
