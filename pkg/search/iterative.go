package search

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/corvane/evochess/pkg/eval"
	"go.uber.org/atomic"
)

// PV is the principal variation found by one completed iteration: the move
// sequence, its score, the node count, and the depth and wall time it took.
type PV struct {
	Moves []board.Move
	Score Score
	Nodes uint64
	Depth int
	Time  time.Duration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%d score=%v nodes=%d time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, p.Moves)
}

// Mode selects which of spec.md §4.7's two search entry modes Iterative.Launch
// runs.
type Mode uint8

const (
	// IterativeDeepening searches depth 1, 2, 3, … with full α-β at each
	// depth, seeding each depth's move order from the previous depth's PV.
	IterativeDeepening Mode = iota
	// FixedBudget computes a time budget and an analytical minimum depth up
	// front, then lets Search's per-node step-4 triggers extend beyond it.
	FixedBudget
)

// Iterative is the search harness: it owns a genome and drives repeated
// Search.Run calls, publishing a PV per completed iteration. Grounded on
// teacher's pkg/search/iterative.go's atomic.Bool-latched handle and PV
// channel, adapted to this module's two entry modes and value-semantics
// board.
type Iterative struct {
	Genome *eval.Genome
	Mode   Mode

	// PerNodeTime is the calibrated per-node search cost used by
	// FixedBudget's minimum-depth formula; zero falls back to a
	// conservative 1ms estimate. See calibrate.go.
	PerNodeTime time.Duration

	// Budget bounds total wall time for IterativeDeepening's abort check
	// ("abort the next deepening iff elapsed · expected_branching_factor >
	// remaining_budget"); zero disables the check (MaxDepth or context
	// cancellation are then the only stopping conditions).
	Budget time.Duration

	// MaxDepth caps IterativeDeepening's depth loop; 0 means unbounded
	// (subject to Budget/ctx/Halt).
	MaxDepth int
}

// Launch starts a new search from b on its own goroutine and returns a
// Handle to stop it and a channel of PVs, one per completed iteration; a PV
// still unread when the next one is published is replaced by it. The
// channel is closed once the search has nothing more to report.
func (it *Iterative) Launch(ctx context.Context, b *board.Board, clk *clock.Clock) (*Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &Handle{search: NewSearch(it.Genome), init: make(chan struct{})}
	go h.process(ctx, it, b, clk, out)
	return h, out
}

// Handle lets the engine stop an in-progress search and retrieve its best
// result so far. Halt is idempotent.
type Handle struct {
	search *Search

	init              chan struct{}
	initialized, done atomic.Bool

	mu sync.Mutex
	pv PV
}

// Halt stops the search, if running, and returns the best PV found.
func (h *Handle) Halt() PV {
	<-h.init
	if h.done.CompareAndSwap(false, true) {
		h.search.MoveNow.Store(true)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

func (h *Handle) markInitialized() {
	if h.initialized.CompareAndSwap(false, true) {
		close(h.init)
	}
}

func (h *Handle) publish(pv PV, out chan PV) {
	h.mu.Lock()
	h.pv = pv
	h.mu.Unlock()

	select {
	case <-out:
	default:
	}
	out <- pv
	h.markInitialized()
}

func (h *Handle) process(ctx context.Context, it *Iterative, b *board.Board, clk *clock.Clock, out chan PV) {
	defer h.markInitialized()
	defer close(out)

	progress := it.Genome.GameProgress(b)
	if it.Mode == FixedBudget {
		h.runFixedBudget(ctx, it, b, clk, progress, out)
		return
	}
	h.runIterativeDeepening(ctx, it, b, progress, out)
}

// runFixedBudget implements spec.md §4.7's "Fixed-budget mode": compute the
// time budget and an analytical minimum depth from it, then hand off to
// Search.Run, which applies the per-node extension triggers from there.
func (h *Handle) runFixedBudget(ctx context.Context, it *Iterative, b *board.Board, clk *clock.Clock, progress float64, out chan PV) {
	policy := it.Genome.SearchPolicy

	var remaining time.Duration
	movesToReset := -1
	if clk != nil {
		remaining = clk.TimeLeft(b.Turn())
		movesToReset = clk.MovesToReset(b.Turn())
	}
	budget := policy.TimeBudget(remaining, movesToReset, progress)

	perNodeTime := it.PerNodeTime
	if perNodeTime <= 0 {
		perNodeTime = time.Millisecond
	}

	minimumDepth := 1
	if branchingFactor := policy.BranchingFactor(progress); budget > perNodeTime && branchingFactor > 1 {
		minimumDepth = int(math.Log(float64(budget)/float64(perNodeTime)) / math.Log(branchingFactor))
		if minimumDepth < 1 {
			minimumDepth = 1
		}
	}

	start := time.Now()
	nodes, score, moves := h.search.Run(ctx, b, minimumDepth, budget, perNodeTime, nil)
	h.publish(PV{Moves: moves, Score: score, Nodes: nodes, Depth: minimumDepth, Time: time.Since(start)}, out)
}

// runIterativeDeepening implements spec.md §4.7's "Iterative-deepening
// mode": depth 1, 2, 3, … with the previous depth's PV seeding move order,
// aborting the next deepening once the expected next iteration would
// overrun the budget.
func (h *Handle) runIterativeDeepening(ctx context.Context, it *Iterative, b *board.Board, progress float64, out chan PV) {
	branchingFactor := it.Genome.SearchPolicy.BranchingFactor(progress)

	deadline := time.Now().Add(it.Budget)

	var prevPV []board.Move
	for depth := 1; !h.done.Load(); depth++ {
		start := time.Now()
		nodes, score, moves := h.search.Run(ctx, b, depth, 0, 0, prevPV)
		elapsed := time.Since(start)

		if h.done.Load() {
			return
		}
		h.publish(PV{Moves: moves, Score: score, Nodes: nodes, Depth: depth, Time: elapsed}, out)
		if len(moves) > 0 {
			prevPV = moves
		}

		if h.done.Load() {
			return
		}
		if it.MaxDepth > 0 && depth >= it.MaxDepth {
			return
		}
		if it.Budget > 0 {
			remaining := time.Until(deadline)
			if time.Duration(float64(elapsed)*branchingFactor) > remaining {
				return
			}
		}
	}
}
