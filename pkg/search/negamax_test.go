package search_test

import (
	"context"
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFindsMateInOne(t *testing.T) {
	b, err := board.FromFEN("k7/8/1K6/8/8/8/8/7R w - - 0 1")
	require.NoError(t, err)

	s := search.NewSearch(eval.NewGenome())
	_, score, pv := s.Run(context.Background(), &b, 1, 0, 0, nil)

	require.NotEmpty(t, pv)
	assert.Equal(t, "h1h8", pv[0].String())
	assert.True(t, score.IsMate())
	assert.Greater(t, score.Value, 0.0)
}

func TestSearchScoresACheckmatedPositionAsALossForTheMover(t *testing.T) {
	// Black to move, already checkmated by the rook on h8.
	b, err := board.FromFEN("k6R/8/1K6/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.Equal(t, board.Checkmate, b.Result().Kind)

	s := search.NewSearch(eval.NewGenome())
	_, score, pv := s.Run(context.Background(), &b, 1, 0, 0, nil)

	assert.Equal(t, search.NegInfScore, score)
	assert.Empty(t, pv)
}

func TestSearchNodeCountIsPositive(t *testing.T) {
	b := board.NewBoard()
	s := search.NewSearch(eval.NewGenome())

	nodes, _, pv := s.Run(context.Background(), &b, 2, 0, 0, nil)

	assert.Positive(t, nodes)
	assert.NotEmpty(t, pv)
}

func TestSearchMoveNowHaltsEarly(t *testing.T) {
	b := board.NewBoard()
	s := search.NewSearch(eval.NewGenome())
	s.MoveNow.Store(true)

	nodes, _, pv := s.Run(context.Background(), &b, 4, 0, 0, nil)

	assert.Zero(t, nodes)
	assert.Empty(t, pv)
}

func TestSearchRunIsReusableAcrossCalls(t *testing.T) {
	b := board.NewBoard()
	s := search.NewSearch(eval.NewGenome())

	_, _, pv1 := s.Run(context.Background(), &b, 1, 0, 0, nil)
	_, _, pv2 := s.Run(context.Background(), &b, 1, 0, 0, nil)

	require.NotEmpty(t, pv1)
	require.NotEmpty(t, pv2)
	assert.Equal(t, pv1[0].String(), pv2[0].String())
}
