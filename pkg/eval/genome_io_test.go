package eval_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/corvane/evochess/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenParseGenomeRoundTrips(t *testing.T) {
	g := eval.NewGenome()
	g.ID = 7
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		g.Mutate(rng, 1.0)
	}

	var buf bytes.Buffer
	require.NoError(t, eval.WriteGenome(&buf, g))

	genomes, err := eval.ParseGenomes(&buf)
	require.NoError(t, err)

	got, ok := genomes[7]
	require.True(t, ok)

	var rewritten bytes.Buffer
	require.NoError(t, eval.WriteGenome(&rewritten, got))

	var original bytes.Buffer
	require.NoError(t, eval.WriteGenome(&original, g))

	assert.Equal(t, original.String(), rewritten.String())
}

func TestParseGenomesKeepsLatestBlockPerID(t *testing.T) {
	first := eval.NewGenome()
	first.ID = 1
	first.MutationRate().Mutate(rand.New(rand.NewSource(1)), 5.0)

	second := eval.NewGenome()
	second.ID = 1

	var buf bytes.Buffer
	require.NoError(t, eval.WriteGenome(&buf, first))
	require.NoError(t, eval.WriteGenome(&buf, second))

	genomes, err := eval.ParseGenomes(&buf)
	require.NoError(t, err)

	var rewritten bytes.Buffer
	require.NoError(t, eval.WriteGenome(&rewritten, genomes[1]))

	var expected bytes.Buffer
	require.NoError(t, eval.WriteGenome(&expected, second))

	assert.Equal(t, expected.String(), rewritten.String())
}

func TestParseGenomesRejectsMissingKey(t *testing.T) {
	text := "ID: 1\n\nName: Null Gene\nOpening Priority: 0\nEndgame Priority: 0\nActivation Start: 0\n\n"
	_, err := eval.ParseGenomes(bytes.NewBufferString(text))
	require.Error(t, err)

	var formatErr *eval.GenomeFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "missing key", formatErr.Kind)
}

func TestParseGenomesRejectsDuplicateKey(t *testing.T) {
	text := "ID: 1\n\nName: Null Gene\nOpening Priority: 0\nOpening Priority: 1\nEndgame Priority: 0\n" +
		"Activation Start: 0\nActivation End: 1\n\n"
	_, err := eval.ParseGenomes(bytes.NewBufferString(text))
	require.Error(t, err)

	var formatErr *eval.GenomeFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "duplicate key", formatErr.Kind)
}

func TestCloneDoesNotAliasPieceStrength(t *testing.T) {
	g := eval.NewGenome()
	clone := g.Clone()

	// With seed 1 the mutation picks the king (piece kind 6).
	clone.PieceStrength.Mutate(rand.New(rand.NewSource(1)), 10.0)

	assert.NotEqual(t, g.PieceStrength.Value(6), clone.PieceStrength.Value(6))
}

func TestNewGenomeFromParentsProducesAValidGenome(t *testing.T) {
	a := eval.NewGenome()
	b := eval.NewGenome()
	b.MutationRate().Mutate(rand.New(rand.NewSource(2)), 5.0)
	rng := rand.New(rand.NewSource(9))

	offspring := eval.NewGenomeFromParents(a, b, rng)

	assert.Len(t, offspring.Genes, len(a.Genes))
	assert.NotNil(t, offspring.PieceStrength)
	assert.NotNil(t, offspring.SearchPolicy)
}
