package board_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripSAN renders every legal move of b as SAN and checks that parsing
// the rendered token against b resolves back to an equal move.
func roundTripSAN(t *testing.T, b board.Board) {
	t.Helper()
	for _, m := range b.LegalMoves() {
		san := board.SAN(&b, m)
		parsed, err := board.ParseSAN(&b, san)
		require.NoErrorf(t, err, "parsing rendered SAN %q", san)
		assert.Truef(t, m.Equals(parsed), "SAN %q round-tripped to a different move: %v vs %v", san, m, parsed)
	}
}

func TestSANRoundTripStartingPosition(t *testing.T) {
	roundTripSAN(t, board.NewBoard())
}

func TestSANRoundTripKiwipete(t *testing.T) {
	b, err := board.FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	roundTripSAN(t, b)
}

func TestSANCastling(t *testing.T) {
	b, err := board.FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	kingside, ok := lastLegalMatching(t, b, "e1g1")
	require.True(t, ok)
	assert.Equal(t, "O-O", board.SAN(&b, kingside))

	queenside, ok := lastLegalMatching(t, b, "e1c1")
	require.True(t, ok)
	assert.Equal(t, "O-O-O", board.SAN(&b, queenside))
}

func TestSANPromotion(t *testing.T) {
	b, err := board.FromFEN("8/P6k/8/8/8/8/7p/K7 w - - 0 1")
	require.NoError(t, err)

	m, ok := lastLegalMatching(t, b, "a7a8q")
	require.True(t, ok)
	assert.Equal(t, "a8=Q", board.SAN(&b, m))
}

func TestSANDisambiguation(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/8/R6R/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	// both rooks sit on rank 4 with a clear path to d4, so SAN must
	// disambiguate by file.
	m, ok := lastLegalMatching(t, b, "a4d4")
	require.True(t, ok)
	assert.Equal(t, "Rad4", board.SAN(&b, m))

	m2, ok := lastLegalMatching(t, b, "h4d4")
	require.True(t, ok)
	assert.Equal(t, "Rhd4", board.SAN(&b, m2))
}

func TestParseSANRejectsAmbiguousToken(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/8/R6R/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	_, err = board.ParseSAN(&b, "Rd4")
	assert.Error(t, err, "two rooks can reach d4, so the bare token is ambiguous")
}
