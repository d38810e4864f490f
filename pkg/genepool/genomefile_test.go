package genepool_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/genepool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenome(id uint64) *eval.Genome {
	g := eval.NewGenome()
	g.ID = id
	return g
}

func TestStoreWriteGenerationThenLoadPoolsRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	store := genepool.NewStore(path)

	pools := [][]*eval.Genome{
		{newGenome(1), newGenome(2)},
		{newGenome(3), newGenome(4)},
	}
	require.NoError(t, store.WriteGeneration(pools, 0))
	require.NoError(t, store.WriteGeneration(pools, 1))

	reloaded := genepool.NewStore(path)
	loaded, err := reloaded.LoadPools()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.ElementsMatch(t, []uint64{1, 2}, idsOf(loaded[0]))
	assert.ElementsMatch(t, []uint64{3, 4}, idsOf(loaded[1]))
}

func idsOf(pool []*eval.Genome) []uint64 {
	ids := make([]uint64, len(pool))
	for i, g := range pool {
		ids[i] = g.ID
	}
	return ids
}

func TestStoreLoadPoolsKeepsLatestMembershipPerPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	store := genepool.NewStore(path)

	pools := [][]*eval.Genome{{newGenome(1), newGenome(2)}}
	require.NoError(t, store.WriteGeneration(pools, 0))

	// Pool 0's second generation: genome 2 died, genome 3 replaced it.
	pools[0] = []*eval.Genome{newGenome(1), newGenome(3)}
	require.NoError(t, store.WriteGeneration(pools, 0))

	loaded, err := genepool.NewStore(path).LoadPools()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.ElementsMatch(t, []uint64{1, 3}, idsOf(loaded[0]))
}

func TestStoreLoadPoolsReturnsNilForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.txt")
	loaded, err := genepool.NewStore(path).LoadPools()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreLoadPoolsRejectsUnknownStillAliveID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	require.NoError(t, os.WriteFile(path, []byte("Still Alive: 0 : 999\n\n"), 0o644))

	_, err := genepool.NewStore(path).LoadPools()
	require.Error(t, err)
	var badLine *genepool.BadStillAliveLineError
	assert.ErrorAs(t, err, &badLine)
}

func TestStoreResumePositionAdvancesPastLastPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	store := genepool.NewStore(path)

	pools := [][]*eval.Genome{{newGenome(1)}, {newGenome(2)}, {newGenome(3)}}
	require.NoError(t, store.WriteGeneration(pools, 0))
	require.NoError(t, store.WriteGeneration(pools, 1))

	startingPool, roundsSinceSwap, err := genepool.NewStore(path).ResumePosition(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, startingPool)
	assert.Equal(t, 0, roundsSinceSwap)
}

func TestStoreWriteBestGenomeIsAtomicallyRenamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.txt")
	store := genepool.NewStore(path)

	require.NoError(t, store.WriteBestGenome(newGenome(7)))

	data, err := os.ReadFile(path + "_best_genome.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "ID: 7")

	_, err = os.Stat(path + "_best_genome.txt.tmp")
	assert.True(t, os.IsNotExist(err))
}
