package search_test

import (
	"testing"

	"github.com/corvane/evochess/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestScoreLessOrdersByValue(t *testing.T) {
	assert.True(t, search.Score{Value: 1}.Less(search.Score{Value: 2}))
	assert.False(t, search.Score{Value: 2}.Less(search.Score{Value: 1}))
}

func TestScoreLessPrefersFasterMate(t *testing.T) {
	fast := search.Score{Value: search.PosInfScore.Value, Depth: 2}
	slow := search.Score{Value: search.PosInfScore.Value, Depth: 5}

	assert.True(t, slow.Less(fast))
	assert.False(t, fast.Less(slow))
}

func TestScoreLessPrefersSlowerLoss(t *testing.T) {
	soon := search.Score{Value: search.NegInfScore.Value, Depth: 1}
	later := search.Score{Value: search.NegInfScore.Value, Depth: 4}

	assert.True(t, soon.Less(later))
	assert.False(t, later.Less(soon))
}

func TestNegateFlipsValuePreservesDepth(t *testing.T) {
	s := search.Score{Value: 42, Depth: 3}
	n := s.Negate()

	assert.Equal(t, -42.0, n.Value)
	assert.Equal(t, 3, n.Depth)
}

func TestIncrementMateDistanceOnlyAffectsMateScores(t *testing.T) {
	finite := search.Score{Value: 10, Depth: 0}
	assert.Equal(t, finite, search.IncrementMateDistance(finite))

	mate := search.Score{Value: search.PosInfScore.Value, Depth: 0}
	assert.Equal(t, 1, search.IncrementMateDistance(mate).Depth)
}

func TestMaxReturnsBetterScore(t *testing.T) {
	a := search.Score{Value: 1}
	b := search.Score{Value: 2}
	assert.Equal(t, b, search.Max(a, b))
	assert.Equal(t, b, search.Max(b, a))
}
