package eval_test

import (
	"math/rand"
	"testing"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameProgressStartsNearZero(t *testing.T) {
	g := eval.NewGenome()
	b := board.NewBoard()
	assert.InDelta(t, 0, g.GameProgress(&b), 0.05)
}

func TestGameProgressBareKingsIsOne(t *testing.T) {
	g := eval.NewGenome()
	b, err := board.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, 1.0, g.GameProgress(&b))
}

func TestEvaluateIsAntisymmetricAcrossPerspectives(t *testing.T) {
	g := eval.NewGenome()
	b, err := board.FromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3")
	require.NoError(t, err)

	white := g.Evaluate(&b, board.White, 0)
	black := g.Evaluate(&b, board.Black, 0)
	assert.InDelta(t, -white, black, 1e-9)
}

func TestTotalForceGenePrefersMaterial(t *testing.T) {
	strength := eval.NewPieceStrengthGene()
	gene := eval.NewTotalForceGene(strength)

	up, err := board.FromFEN("4k3/8/8/8/8/8/8/R3K3 w Q - 0 1")
	require.NoError(t, err)
	even, err := board.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t, gene.ScoreBoard(&up, board.White, 0), gene.ScoreBoard(&even, board.White, 0))
}

func TestFreedomToMoveGeneOnlyScoresSideToMove(t *testing.T) {
	gene := eval.NewFreedomToMoveGene()
	b := board.NewBoard()

	assert.Greater(t, gene.ScoreBoard(&b, board.White, 0), 0.0)
	assert.Equal(t, 0.0, gene.ScoreBoard(&b, board.Black, 0))
}

func TestStackedPawnsGenePenalizesDoubledPawns(t *testing.T) {
	gene := eval.NewStackedPawnsGene()

	doubled, err := board.FromFEN("4k3/8/8/8/8/4P3/4P3/4K3 w - - 0 1")
	require.NoError(t, err)
	clean, err := board.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Less(t, gene.ScoreBoard(&doubled, board.White, 0), gene.ScoreBoard(&clean, board.White, 0))
}

func TestPassedPawnGeneRewardsUnopposedPawn(t *testing.T) {
	gene := eval.NewPassedPawnGene()

	passed, err := board.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)
	blocked, err := board.FromFEN("4k3/4p3/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t, gene.ScoreBoard(&passed, board.White, 0), gene.ScoreBoard(&blocked, board.White, 0))
}

func TestKingProtectionGeneIsBounded(t *testing.T) {
	gene := eval.NewKingProtectionGene()
	b := board.NewBoard()

	score := gene.ScoreBoard(&b, board.White, 0)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestCastlingPossibleGeneZeroWithoutRights(t *testing.T) {
	gene := eval.NewCastlingPossibleGene()
	b, err := board.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Equal(t, 0.0, gene.ScoreBoard(&b, board.White, 0))
}

func TestCastlingPossibleGeneNonZeroAtStart(t *testing.T) {
	gene := eval.NewCastlingPossibleGene()
	b := board.NewBoard()

	assert.NotEqual(t, 0.0, gene.ScoreBoard(&b, board.White, 0))
}

func TestNullGeneAlwaysZero(t *testing.T) {
	gene := eval.NewNullGene()
	b := board.NewBoard()

	assert.Equal(t, 0.0, gene.ScoreBoard(&b, board.White, 0))
	assert.Equal(t, 0.0, gene.ScoreBoard(&b, board.Black, 3))
}

func TestGenomeMutateChangesSomething(t *testing.T) {
	g := eval.NewGenome()
	rng := rand.New(rand.NewSource(1))
	b := board.NewBoard()

	before := g.Evaluate(&b, board.White, 0)
	for i := 0; i < 50; i++ {
		g.Mutate(rng, 1.0)
	}
	after := g.Evaluate(&b, board.White, 0)
	assert.NotEqual(t, before, after)
}
