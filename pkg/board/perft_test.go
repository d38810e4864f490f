package board_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerftStartingPosition(t *testing.T) {
	b := board.NewBoard()

	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, c := range cases {
		assert.Equal(t, c.nodes, board.Perft(b, c.depth), "depth %d", c.depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	b, err := board.FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 48},
		{2, 2039},
	}
	for _, c := range cases {
		assert.Equal(t, c.nodes, board.Perft(b, c.depth), "depth %d", c.depth)
	}
}

func TestPerftPosition3(t *testing.T) {
	b, err := board.FromFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)

	cases := []struct {
		depth int
		nodes uint64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
	}
	for _, c := range cases {
		assert.Equal(t, c.nodes, board.Perft(b, c.depth), "depth %d", c.depth)
	}
}

// TestPosition3EnPassantDiscoveredCheck guards the perft counts above against
// the one capture in this position that an ordinary pin/checker scan misses:
// b5xc6 e.p. vacates both b5 and c5 on the same rank as the white king on a5
// and the black rook on h5, uncovering a check that neither square alone was
// flagged for.
func TestPosition3EnPassantDiscoveredCheck(t *testing.T) {
	start, err := board.FromFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)
	b := playCoordinates(t, start, "b4c4", "c7c5")

	ep, ok := b.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.C6, ep)

	for _, m := range b.LegalMoves() {
		if m.Tag == board.EnPassant {
			assert.NotEqual(t, board.B5, m.From, "b5xc6 e.p. leaves the white king on a5 exposed to the rook on h5")
		}
	}
}
