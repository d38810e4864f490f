package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterativeDeepeningReportsIncreasingDepths(t *testing.T) {
	b := board.NewBoard()
	it := &search.Iterative{Genome: eval.NewGenome(), Mode: search.IterativeDeepening, MaxDepth: 3}

	_, out := it.Launch(context.Background(), &b, nil)

	var depths []int
	for pv := range out {
		depths = append(depths, pv.Depth)
	}

	require.Len(t, depths, 3)
	assert.Equal(t, []int{1, 2, 3}, depths)
}

func TestIterativeDeepeningHaltReturnsAPV(t *testing.T) {
	b := board.NewBoard()
	it := &search.Iterative{Genome: eval.NewGenome(), Mode: search.IterativeDeepening}

	h, out := it.Launch(context.Background(), &b, nil)
	<-out // wait for at least one iteration to publish

	pv := h.Halt()
	assert.NotEmpty(t, pv.Moves)

	// Idempotent: a second Halt must not panic or block.
	pv2 := h.Halt()
	assert.Equal(t, pv.Moves[0].String(), pv2.Moves[0].String())
}

func TestFixedBudgetModeProducesAResult(t *testing.T) {
	b := board.NewBoard()
	it := &search.Iterative{
		Genome:      eval.NewGenome(),
		Mode:        search.FixedBudget,
		PerNodeTime: time.Microsecond,
	}

	_, out := it.Launch(context.Background(), &b, nil)

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.NotEmpty(t, last.Moves)
	assert.GreaterOrEqual(t, last.Depth, 1)
}
