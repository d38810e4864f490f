package board_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playCoordinates(t *testing.T, b board.Board, moves ...string) board.Board {
	t.Helper()
	for _, mv := range moves {
		parsed, err := board.ParseMove(mv)
		require.NoError(t, err, "parsing %q", mv)

		var found *board.Move
		for _, legal := range b.LegalMoves() {
			if legal.Equals(parsed) {
				m := legal
				found = &m
				break
			}
		}
		require.NotNilf(t, found, "%q is not legal in position %v", mv, b.FEN())
		b = b.Apply(*found)
	}
	return b
}

func TestFoolsMate(t *testing.T) {
	start := board.NewBoard()
	b := playCoordinates(t, start, "f2f3", "e7e5", "g2g4")

	last, _ := lastLegalMatching(t, b, "d8h4")
	result := b.Apply(last)

	assert.Equal(t, board.Checkmate, result.Result().Kind)
	assert.Equal(t, board.Black, result.Result().Winner)
	assert.Equal(t, "Qh4#", board.SAN(&b, last))
}

func TestScholarsMate(t *testing.T) {
	start := board.NewBoard()
	b := playCoordinates(t, start, "e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6")

	last, _ := lastLegalMatching(t, b, "h5f7")
	result := b.Apply(last)

	assert.Equal(t, board.Checkmate, result.Result().Kind)
	assert.Equal(t, board.White, result.Result().Winner)
	assert.Equal(t, "Qxf7#", board.SAN(&b, last))
}

func lastLegalMatching(t *testing.T, b board.Board, coord string) (board.Move, bool) {
	t.Helper()
	parsed, err := board.ParseMove(coord)
	require.NoError(t, err)
	for _, legal := range b.LegalMoves() {
		if legal.Equals(parsed) {
			return legal, true
		}
	}
	require.Failf(t, "move not legal", "%q not legal in %v", coord, b.FEN())
	return board.Move{}, false
}

func TestEnPassantAvailability(t *testing.T) {
	start := board.NewBoard()
	b := playCoordinates(t, start, "e2e4", "a7a6", "e4e5", "d7d5")

	ep, ok := b.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.D6, ep)

	// A double step on the far side of the board from White's only advanced
	// pawn sets a transit square with no adjacent White pawn to capture it,
	// so the target must be suppressed rather than merely unreachable.
	b2 := playCoordinates(t, start, "e2e4", "a7a6", "e4e5", "g7g5")
	_, ok = b2.EnPassant()
	assert.False(t, ok, "no white pawn can capture on g6, so en passant must be suppressed")
}

func TestThreefoldByKingShuffle(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	// Four plies (e1d1, e8d8, d1e1, d8e8) return both kings to their starting
	// squares with white to move again: the second occurrence of that exact
	// position. A second full cycle produces the third occurrence.
	b = playCoordinates(t, b, "e1d1", "e8d8", "d1e1", "d8e8")
	require.NotEqual(t, board.Threefold, b.Result().Kind)
	b = playCoordinates(t, b, "e1d1", "e8d8", "d1e1", "d8e8")
	assert.Equal(t, board.Threefold, b.Result().Kind)
}

// TestFiftyMoveRule plays 100 plies of knight shuffles on a king-and-knight
// endgame. Each knight's destination is chosen, by a tabu walk over actual
// legal moves, to avoid any square it visited in its last 45 own moves --
// over a 50-move sequence that bounds any one square (and so the joint
// position, since the kings never move) to at most two occurrences, so the
// walk cannot accidentally trip the threefold rule before the no-progress
// buffer itself reaches its 100-ply cap.
func TestFiftyMoveRule(t *testing.T) {
	b, err := board.FromFEN("4k3/8/3n4/8/8/8/4N3/4K3 w - - 0 1")
	require.NoError(t, err)

	const tabuWindow = 45
	recent := map[board.Color][]board.Square{board.White: nil, board.Black: nil}

	for ply := 0; ply < 100; ply++ {
		turn := b.Turn()
		legal := b.LegalMoves()
		require.NotEmpty(t, legal)

		chosen := legal[0]
		for _, m := range legal {
			if !containsRecent(recent[turn], m.To) {
				chosen = m
				break
			}
		}
		recent[turn] = append(recent[turn], chosen.To)
		if len(recent[turn]) > tabuWindow {
			recent[turn] = recent[turn][len(recent[turn])-tabuWindow:]
		}

		b = b.Apply(chosen)
		require.NotEqualf(t, board.Threefold, b.Result().Kind, "repetition triggered at ply %d", ply+1)
		if ply < 99 {
			require.NotEqualf(t, board.FiftyMove, b.Result().Kind, "fifty-move triggered early at ply %d", ply+1)
		}
	}

	assert.Equal(t, board.FiftyMove, b.Result().Kind)
	assert.Equal(t, 100, b.NoProgressCount())
}

func containsRecent(squares []board.Square, s board.Square) bool {
	for _, x := range squares {
		if x == s {
			return true
		}
	}
	return false
}

func TestCastlingRevocation(t *testing.T) {
	b, err := board.FromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	after := playCoordinates(t, b, "a1a2")
	assert.Equal(t, "Kkq", after.Castling().String())

	after2 := playCoordinates(t, b, "e1e2")
	assert.Equal(t, "kq", after2.Castling().String())
}
