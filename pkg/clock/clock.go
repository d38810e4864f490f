// Package clock implements the per-side game clock: remaining time,
// increment, and a moves-until-reset counter with either "add the original
// time" or "reset to the original time" semantics.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/seekerror/logw"
)

// ResetMode selects what happens to a side's clock when its
// moves-until-reset counter reaches zero.
type ResetMode uint8

const (
	// Addition adds the original allotment to whatever time remains.
	Addition ResetMode = iota
	// SetToOriginal discards whatever time remains and restores the
	// original allotment exactly.
	SetToOriginal
)

// Config describes a game clock's settings. A zero Initial means untimed
// play: Punch and TimeLeft become no-ops.
type Config struct {
	Initial      time.Duration
	Increment    time.Duration
	MovesToReset int // 0 disables the reset counter
	Mode         ResetMode
}

// Clock is a two-sided chess clock. Safe for concurrent use: punch() is
// called from the game driver's goroutine while an external protocol
// handler may concurrently read TimeLeft or call SetTime on another
// goroutine, per spec the sole cross-thread access to the clock besides the
// search "move now" flag.
type Clock struct {
	mu sync.Mutex

	cfg Config

	remaining    [board.NumColors]time.Duration
	movesToReset [board.NumColors]int

	running    bool
	runningFor board.Color
	lastPunch  time.Time
}

// New returns a Clock configured per cfg, with White to move first.
func New(cfg Config) *Clock {
	c := &Clock{cfg: cfg, runningFor: board.White}
	c.remaining[board.White] = cfg.Initial
	c.remaining[board.Black] = cfg.Initial
	c.movesToReset[board.White] = cfg.MovesToReset
	c.movesToReset[board.Black] = cfg.MovesToReset
	return c
}

func (c *Clock) untimed() bool {
	return c.cfg.Initial <= 0
}

// Start begins or resumes the clock, charging no time for the interval
// since a prior Stop.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastPunch = time.Now()
	c.running = true
}

// Stop pauses the clock, charging the running side for time elapsed since
// the last punch or Start.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.untimed() {
		c.running = false
		return
	}
	c.remaining[c.runningFor] -= time.Since(c.lastPunch)
	c.running = false
}

// Punch is invoked after a move is played on b. It subtracts elapsed time
// from the side that just moved; if that leaves a negative balance it stops
// the clock and returns a TimeForfeit result (or TimeExpiredInsufficientMaterial
// if neither side has enough material on this board to force mate; the
// non-flagging side's material is not judged on its own). Otherwise it flips
// the running side, applies that side's
// increment, and advances the moves-until-reset counter.
func (c *Clock) Punch(ctx context.Context, b *board.Board) board.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.untimed() {
		return board.Result{Kind: board.Ongoing}
	}

	mover := c.runningFor
	now := time.Now()
	c.remaining[mover] -= now.Sub(c.lastPunch)

	if c.remaining[mover] < 0 {
		c.running = false
		winner := mover.Opponent()
		if b.HasInsufficientMatingMaterial() {
			logw.Infof(ctx, "Clock: %v flagged but %v cannot mate, draw", mover, winner)
			return board.Result{Kind: board.TimeExpiredInsufficientMaterial}
		}
		logw.Infof(ctx, "Clock: %v flagged, %v wins on time", mover, winner)
		return board.Result{Kind: board.TimeForfeit, Winner: winner}
	}

	if c.cfg.MovesToReset > 0 {
		c.movesToReset[mover]--
		if c.movesToReset[mover] <= 0 {
			switch c.cfg.Mode {
			case SetToOriginal:
				c.remaining[mover] = c.cfg.Initial
			default: // Addition
				c.remaining[mover] += c.cfg.Initial
			}
			c.movesToReset[mover] = c.cfg.MovesToReset
			logw.Infof(ctx, "Clock: %v's move counter reset, %v remaining", mover, c.remaining[mover])
		}
	}

	c.runningFor = mover.Opponent()
	c.remaining[c.runningFor] += c.cfg.Increment
	c.lastPunch = now

	return board.Result{Kind: board.Ongoing}
}

// TimeLeft returns color's remaining time, accounting for time elapsed
// since the last punch if color is currently running.
func (c *Clock) TimeLeft(color board.Color) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.untimed() {
		return 0
	}
	if !c.running || c.runningFor != color {
		return c.remaining[color]
	}
	return c.remaining[color] - time.Since(c.lastPunch)
}

// MovesToReset returns the number of moves color has left before its
// moves-until-reset counter fires.
func (c *Clock) MovesToReset(color board.Color) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.MovesToReset <= 0 {
		return -1 // unbounded: no reset configured
	}
	return c.movesToReset[color]
}

// IsRunning reports whether the clock is currently ticking.
func (c *Clock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RunningFor returns the side the clock is currently charging.
func (c *Clock) RunningFor() board.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningFor
}

// SetTime overwrites color's remaining time, for use by an external
// protocol's time-update commands.
func (c *Clock) SetTime(color board.Color, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining[color] = d
}
