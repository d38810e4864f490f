package board_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoardHash(t *testing.T) {
	a := board.NewBoard()
	b := board.NewBoard()
	assert.Equal(t, a.Hash(), b.Hash(), "identical positions must hash identically")
	assert.Equal(t, 0, a.NoProgressCount(), "fresh game has played zero no-progress plies")
}

func TestApplyHashMatchesRecompute(t *testing.T) {
	b := board.NewBoard()
	for _, moves := range [][]string{
		{"e2e4"},
		{"e2e4", "c7c5"},
		{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4"},
	} {
		after := playCoordinates(t, b, moves...)
		reEncoded, err := board.FromFEN(after.FEN())
		require.NoError(t, err)
		assert.Equal(t, after.Hash(), reEncoded.Hash(), "hash must match a from-scratch FEN decode of the same position")
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	start := board.NewBoard()
	snapshot := start.FEN()

	legal := start.LegalMoves()
	require.NotEmpty(t, legal)
	_ = start.Apply(legal[0])

	assert.Equal(t, snapshot, start.FEN(), "Apply must return a new Board, not mutate the receiver")
}

func TestNoProgressResetsOnCaptureAndPawnMove(t *testing.T) {
	b := board.NewBoard()
	b = playCoordinates(t, b, "g1f3", "g8f6")
	assert.Equal(t, 2, b.NoProgressCount())

	b = playCoordinates(t, b, "e2e4")
	assert.Equal(t, 0, b.NoProgressCount(), "a pawn move resets the no-progress counter")

	b = playCoordinates(t, b, "e7e5")
	assert.Equal(t, 0, b.NoProgressCount())

	b = playCoordinates(t, b, "f1c4", "f8c5", "d1h5")
	assert.Equal(t, 3, b.NoProgressCount())
}

func TestCaptureAvailable(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, b.CaptureAvailable())

	b2, err := board.FromFEN("4k3/8/8/8/4P3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.False(t, b2.CaptureAvailable())
}

func TestLastMove(t *testing.T) {
	b := board.NewBoard()
	_, ok := b.LastMove()
	assert.False(t, ok, "no move has been played yet")

	b = playCoordinates(t, b, "e2e4")
	last, ok := b.LastMove()
	require.True(t, ok)
	assert.Equal(t, board.E2, last.From)
	assert.Equal(t, board.E4, last.To)
	assert.False(t, b.LastMoveWasCapture())
}
