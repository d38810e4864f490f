// Package genepool runs the tournament breeding loop that evolves
// eval.Genome population strength over successive rounds, grounded on
// original_source/src/Breeding/Gene_Pool.cpp's gene_pool function.
package genepool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/corvane/evochess/pkg/eval"
	"github.com/corvane/evochess/pkg/pgn"
	"github.com/corvane/evochess/pkg/player"
	"github.com/corvane/evochess/pkg/search"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Pool runs one gene-pool: gene_pool_count sub-populations, each bred
// independently round by round with an occasional global reshuffle.
type Pool struct {
	cfg   *Config
	store *Store
	pgn   *pgn.Writer
	rng   *rand.Rand

	pools      [][]*eval.Genome
	poolIndex  int
	roundsLeft int // rounds since the last global pool swap

	nextID uint64

	wins, draws, originalPool map[uint64]int

	gameTime          time.Duration
	gameTimeIncrement time.Duration

	winsToBeat float64

	calibrationMu sync.Mutex
	perNodeTime   map[uint64]time.Duration
}

// NewPool loads or creates the pool described by cfg, resuming from
// cfg.GenomeFile's Still-Alive lines and the accompanying PGN file's
// last-used game time if either exists.
func NewPool(cfg *Config, rng *rand.Rand) (*Pool, error) {
	store := NewStore(cfg.GenomeFile)
	pools, err := store.LoadPools()
	if err != nil {
		return nil, err
	}
	if len(pools) > cfg.PoolCount {
		pools = pools[:cfg.PoolCount]
	}
	for len(pools) < cfg.PoolCount {
		pools = append(pools, nil)
	}

	var maxID uint64
	for _, pool := range pools {
		for _, g := range pool {
			if g.ID > maxID {
				maxID = g.ID
			}
		}
	}

	var seed *eval.Genome
	if cfg.HasSeed {
		seed, err = loadSeed(cfg.SeedFile, cfg.SeedID, cfg.SeedIDSet)
		if err != nil {
			return nil, err
		}
	}

	p := &Pool{
		cfg:          cfg,
		store:        store,
		rng:          rng,
		pools:        pools,
		nextID:       maxID + 1,
		wins:         make(map[uint64]int),
		draws:        make(map[uint64]int),
		originalPool: make(map[uint64]int),
		perNodeTime:  make(map[uint64]time.Duration),
	}

	for i := range pools {
		for len(pools[i]) < cfg.PoolPopulation {
			pools[i] = append(pools[i], p.newMember(seed))
		}
		pools[i] = pools[i][:cfg.PoolPopulation]
		for _, g := range pools[i] {
			p.originalPool[g.ID] = i
		}
		if err := store.WriteGeneration(pools, i); err != nil {
			return nil, err
		}
	}
	p.pools = pools

	p.poolIndex, p.roundsLeft, err = store.ResumePosition(cfg.PoolCount, cfg.PoolSwapInterval)
	if err != nil {
		return nil, err
	}

	gamesPath := cfg.GenomeFile + "_games.pgn"
	p.gameTime, p.gameTimeIncrement, err = loadGameTime(gamesPath, cfg)
	if err != nil {
		return nil, err
	}
	p.pgn = pgn.NewWriter(gamesPath)

	return p, nil
}

// newMember returns a fresh pool entry: a scramble-mutated copy of seed
// if one is configured, otherwise a scramble-mutated stock genome, per
// spec.md §4.9's "initial scramble mutation count" and "If the file is
// absent or empty and a seed id is configured, the pool is initialized
// by cloning and scramble-mutating that seed."
func (p *Pool) newMember(seed *eval.Genome) *eval.Genome {
	var g *eval.Genome
	if seed != nil {
		g = seed.Clone()
	} else {
		g = eval.NewGenome()
	}
	g.ID = p.nextID
	p.nextID++
	for i := 0; i < p.cfg.InitialMutations; i++ {
		g.Mutate(p.rng, mutationScale)
	}
	return g
}

// loadSeed reads one genome out of path: the one named by id if idSet,
// otherwise the lowest-id genome in the file.
func loadSeed(path string, id uint64, idSet bool) (*eval.Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("genepool: seed file: %w", err)
	}
	defer f.Close()

	genomes, err := eval.ParseGenomes(f)
	if err != nil {
		return nil, err
	}
	if idSet {
		g, ok := genomes[id]
		if !ok {
			return nil, fmt.Errorf("genepool: seed file %s has no genome with id %d", path, id)
		}
		return g, nil
	}

	var best *eval.Genome
	for _, g := range genomes {
		if best == nil || g.ID < best.ID {
			best = g
		}
	}
	if best == nil {
		return nil, fmt.Errorf("genepool: seed file %s contains no genomes", path)
	}
	return best, nil
}

// loadGameTime recovers the per-game clock duration and its
// round-to-round increment from a prior run's recorded games, per
// gene_pool()'s own startup scan of "<genome_file>_games.pgn" for
// TimeControl tags: the increment direction flips if the file shows time
// was most recently decreasing, so a restarted process continues the
// same oscillation instead of resetting it.
func loadGameTime(path string, cfg *Config) (gameTime, increment time.Duration, err error) {
	gameTime, increment = cfg.MinGameTime, cfg.GameTimeIncrement

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return gameTime, increment, nil
	}
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var timeLine, previousTimeLine string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "[TimeControl") {
			continue
		}
		if line != timeLine {
			previousTimeLine, timeLine = timeLine, line
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}

	if timeLine == "" {
		return gameTime, increment, nil
	}
	seconds, err := tagFloat(timeLine)
	if err != nil {
		return 0, 0, err
	}
	gameTime = clampDuration(time.Duration(seconds*float64(time.Second)), cfg.MinGameTime, cfg.MaxGameTime)

	previousGameTime := gameTime
	if previousTimeLine != "" {
		if s, err := tagFloat(previousTimeLine); err == nil {
			previousGameTime = time.Duration(s * float64(time.Second))
		}
	}
	if previousGameTime > gameTime {
		increment = -absDuration(increment)
	}
	gameTime = clampDuration(gameTime+increment, cfg.MinGameTime, cfg.MaxGameTime)
	return gameTime, increment, nil
}

func tagFloat(line string) (float64, error) {
	parts := strings.SplitN(line, "\"", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("genepool: malformed PGN tag line: %s", line)
	}
	return strconv.ParseFloat(parts[1], 64)
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Run drives the breeding loop until ctx is cancelled, pausing at round
// boundaries while a SIGTSTP toggle is latched, per spec.md §5's
// "SIGINT (Windows) or SIGTSTP (POSIX) toggles a pause/quit latch
// honored at round boundaries". Quitting is left to ctx cancellation
// (the CLI layer's own signal handling), which is the idiomatic Go way
// to plumb a cooperative shutdown rather than a second raw signal hook.
func (p *Pool) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTSTP)
	defer signal.Stop(sigCh)

	var paused atomic.Bool
	go func() {
		for range sigCh {
			if paused.Load() {
				paused.Store(false)
				logw.Infof(ctx, "Gene pool: resuming")
			} else {
				paused.Store(true)
				logw.Infof(ctx, "Gene pool: pausing at the next round boundary (Ctrl-Z to resume)")
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for paused.Load() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}
		if err := p.runRound(ctx); err != nil {
			return err
		}
	}
}

type pairOutcome struct {
	whiteIdx, blackIdx int
	white, black       *eval.Genome
	record             player.GameRecord
	timeLeftWhite      time.Duration
	timeLeftBlack      time.Duration
}

// runRound plays one round of games within the current sub-pool, breeds
// each pair's result, persists the updated membership, and advances the
// pool index, game time, and (every cfg.PoolSwapInterval rounds) the
// global pool partition, per spec.md §4.9's main-loop steps 1-6.
func (p *Pool) runRound(ctx context.Context) error {
	pool := p.pools[p.poolIndex]
	p.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	logw.Infof(ctx, "Gene pool %d: size=%d time=%v swap-rounds=%d/%d", p.poolIndex, len(pool), p.gameTime, p.roundsLeft, p.cfg.PoolSwapInterval)

	concurrency := p.cfg.MaxSimultaneousGames
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	outcomes := make([]pairOutcome, len(pool)/2)
	var wg sync.WaitGroup
	for i := 0; i < len(pool)-1; i += 2 {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i/2] = p.playPair(ctx, i, pool)
		}()
	}
	wg.Wait()

	defaultFEN := board.NewBoard().FEN()
	for _, o := range outcomes {
		meta := pgn.Game{
			Event:         "Gene pool",
			Site:          fmt.Sprintf("pool %d", p.poolIndex),
			TimeControl:   fmt.Sprintf("%g", p.gameTime.Seconds()),
			TimeLeftWhite: o.timeLeftWhite,
			TimeLeftBlack: o.timeLeftBlack,
			StartFEN:      o.record.StartFEN,
			DefaultFEN:    defaultFEN,
			PlayedAt:      time.Now(),
		}
		if err := p.pgn.WriteGame(o.record, meta); err != nil {
			return err
		}

		p.resolvePair(o, pool)
	}

	sortGenomesByID(pool)

	if err := p.store.WriteGeneration(p.pools, p.poolIndex); err != nil {
		return err
	}
	p.purgeStats()

	if err := p.updateBestGenome(); err != nil {
		return err
	}

	p.advanceGameTime()

	if len(p.pools) > 1 && p.poolIndex == len(p.pools)-1 {
		p.roundsLeft++
		if p.roundsLeft >= p.cfg.PoolSwapInterval {
			p.roundsLeft = 0
			if err := p.reshufflePools(); err != nil {
				return err
			}
		}
	}
	p.poolIndex = (p.poolIndex + 1) % len(p.pools)
	return nil
}

// playPair plays one game between pool[i] (white) and pool[i+1] (black).
func (p *Pool) playPair(ctx context.Context, i int, pool []*eval.Genome) pairOutcome {
	white, black := pool[i], pool[i+1]

	seed := int64(white.ID)<<32 ^ int64(black.ID) ^ time.Now().UnixNano()
	rng := rand.New(rand.NewSource(seed))

	wp := player.NewGeneticPlayer(white, p.calibratedTime(ctx, white, rng))
	bp := player.NewGeneticPlayer(black, p.calibratedTime(ctx, black, rng))

	clk := clock.New(clock.Config{Initial: p.gameTime})
	record := player.PlayGame(ctx, board.NewBoard(), clk, wp, bp)

	return pairOutcome{
		whiteIdx: i, blackIdx: i + 1,
		white: white, black: black,
		record:        record,
		timeLeftWhite: clk.TimeLeft(board.White),
		timeLeftBlack: clk.TimeLeft(board.Black),
	}
}

// calibratedTime returns (and caches) genome's measured per-node search
// cost, so repeated games with the same genome don't recalibrate.
func (p *Pool) calibratedTime(ctx context.Context, g *eval.Genome, rng *rand.Rand) time.Duration {
	p.calibrationMu.Lock()
	if d, ok := p.perNodeTime[g.ID]; ok {
		p.calibrationMu.Unlock()
		return d
	}
	p.calibrationMu.Unlock()

	d := search.Calibrate(ctx, g, rng).PerNodeTime

	p.calibrationMu.Lock()
	p.perNodeTime[g.ID] = d
	p.calibrationMu.Unlock()
	return d
}

// resolvePair applies one pair's game result to the pool: a decisive
// result breeds an offspring into the loser's slot; a draw leaves both
// entries alive, per spec.md §4.9 step 3.
func (p *Pool) resolvePair(o pairOutcome, pool []*eval.Genome) {
	if !o.record.Result.HasWinner() {
		p.draws[o.white.ID]++
		p.draws[o.black.ID]++
		return
	}

	winner, loser := o.white, o.black
	loserIdx := o.blackIdx
	if o.record.Result.Winner == board.Black {
		winner, loser = o.black, o.white
		loserIdx = o.whiteIdx
	}
	p.wins[winner.ID]++

	offspring := breed(p.cfg.Reproduction, winner, loser, p.rng)
	offspring.ID = p.nextID
	p.nextID++
	p.originalPool[offspring.ID] = p.poolIndex

	pool[loserIdx] = offspring
}

// purgeStats drops bookkeeping entries for ids no longer in any pool.
func (p *Pool) purgeStats() {
	alive := make(map[uint64]bool)
	for _, pool := range p.pools {
		for _, g := range pool {
			alive[g.ID] = true
		}
	}
	for _, m := range []map[uint64]int{p.wins, p.draws, p.originalPool} {
		for id := range m {
			if !alive[id] {
				delete(m, id)
			}
		}
	}
}

// updateBestGenome implements spec.md §4.9 step 5: decay the threshold,
// then persist the most-winning entry across all pools that now exceeds
// it, ratcheting the threshold up to that entry's win count. Grounded on
// include/Breeding/Think_Tank.h's decayed win-count "best so far"
// heuristic (Gene_Pool.cpp itself tracks the oldest-id genome instead;
// this module follows spec.md's explicit choice of the decayed-win
// variant).
func (p *Pool) updateBestGenome() error {
	p.winsToBeat *= 0.99

	var best *eval.Genome
	bestWins := 0
	for _, pool := range p.pools {
		for _, g := range pool {
			w := p.wins[g.ID]
			if float64(w) > p.winsToBeat && w > bestWins {
				best, bestWins = g, w
			}
		}
	}
	if best == nil {
		return nil
	}
	p.winsToBeat = float64(bestWins)
	return p.store.WriteBestGenome(best)
}

// advanceGameTime updates the per-game clock duration for the next
// round, reversing direction at either bound when oscillation is
// enabled, per spec.md §4.9's "per-round clock increment (with optional
// oscillation between min and max)".
func (p *Pool) advanceGameTime() {
	p.gameTime += p.gameTimeIncrement
	if p.gameTime > p.cfg.MaxGameTime || p.gameTime < p.cfg.MinGameTime {
		if p.cfg.OscillatingTime {
			p.gameTimeIncrement = -p.gameTimeIncrement
		} else {
			p.gameTimeIncrement = 0
		}
	}
	p.gameTime = clampDuration(p.gameTime, p.cfg.MinGameTime, p.cfg.MaxGameTime)
}

// reshufflePools collects every pool's membership, shuffles it globally,
// and re-partitions it into equally sized pools, per spec.md §4.9 step 6.
func (p *Pool) reshufflePools() error {
	var all []*eval.Genome
	for _, pool := range p.pools {
		all = append(all, pool...)
	}
	p.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	p.pools = make([][]*eval.Genome, len(p.pools))
	for i := range p.pools {
		start := i * p.cfg.PoolPopulation
		end := start + p.cfg.PoolPopulation
		if end > len(all) {
			end = len(all)
		}
		p.pools[i] = append([]*eval.Genome(nil), all[start:end]...)
		sortGenomesByID(p.pools[i])
		for _, g := range p.pools[i] {
			p.originalPool[g.ID] = i
		}
		if err := p.store.WriteGeneration(p.pools, i); err != nil {
			return err
		}
	}
	return nil
}

func sortGenomesByID(pool []*eval.Genome) {
	for i := 1; i < len(pool); i++ {
		for j := i; j > 0 && pool[j].ID < pool[j-1].ID; j-- {
			pool[j], pool[j-1] = pool[j-1], pool[j]
		}
	}
}
