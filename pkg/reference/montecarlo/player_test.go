package montecarlo

import (
	"context"
	"math/rand"
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMoveReturnsALegalMove(t *testing.T) {
	b := board.NewBoard()
	clk := clock.New(clock.Config{})
	p := NewPlayer(rand.New(rand.NewSource(1)))

	m, err := p.ChooseMove(context.Background(), &b, clk)
	require.NoError(t, err)

	found := false
	for _, legal := range b.LegalMoves() {
		if legal.Equals(m) {
			found = true
			break
		}
	}
	assert.True(t, found, "chosen move %v was not in the legal move list", m)
}

func TestAverageIsZeroForNoPlayouts(t *testing.T) {
	assert.Equal(t, 0.0, average(&moveStats{}))
}

func TestAverageIsTotalOverPlayouts(t *testing.T) {
	s := &moveStats{total: 3, playouts: 4}
	assert.Equal(t, 0.75, average(s))
}

func TestPlayoutScoresWinForCheckmatingSide(t *testing.T) {
	b, err := board.FromFEN("7k/6Q1/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.Equal(t, board.Checkmate, b.Result().Kind)

	p := NewPlayer(rand.New(rand.NewSource(1)))
	assert.Equal(t, -1.0, p.playout(&b, board.Black))
	assert.Equal(t, 1.0, p.playout(&b, board.White))
}
