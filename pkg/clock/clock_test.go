package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/corvane/evochess/pkg/board"
	"github.com/corvane/evochess/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestClockUntimedIsNoop(t *testing.T) {
	c := clock.New(clock.Config{})
	c.Start()

	result := c.Punch(context.Background(), newBoard(t))
	assert.True(t, result.IsOngoing())
	assert.Equal(t, time.Duration(0), c.TimeLeft(board.White))
}

func TestClockTimeLeftTicksWhileRunning(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute})
	c.Start()

	time.Sleep(5 * time.Millisecond)
	left := c.TimeLeft(board.White)
	assert.Less(t, left, time.Minute)
	assert.Greater(t, left, time.Minute-time.Second)
}

func TestClockStopDoesNotChargeThePauseInterval(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute})
	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Stop()

	paused := c.TimeLeft(board.White)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, c.TimeLeft(board.White), "time must not elapse while stopped")
}

func TestClockPunchFlipsSideAndAppliesIncrement(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute, Increment: 2 * time.Second})
	c.Start()
	assert.Equal(t, board.White, c.RunningFor())

	before := c.TimeLeft(board.Black)
	result := c.Punch(context.Background(), newBoard(t))
	assert.True(t, result.IsOngoing())
	assert.Equal(t, board.Black, c.RunningFor())
	assert.Greater(t, c.TimeLeft(board.Black), before)
}

func TestClockMovesToResetAddition(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute, MovesToReset: 1, Mode: clock.Addition})
	c.Start()
	assert.Equal(t, 1, c.MovesToReset(board.White))

	before := c.TimeLeft(board.White)
	c.Punch(context.Background(), newBoard(t))
	assert.Greater(t, c.TimeLeft(board.White), before, "reset counter firing must add the original allotment")
	assert.Equal(t, 1, c.MovesToReset(board.White), "counter reinstated after firing")
}

func TestClockMovesToResetSetToOriginal(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute, MovesToReset: 1, Mode: clock.SetToOriginal})
	c.Start()

	time.Sleep(5 * time.Millisecond)
	c.Punch(context.Background(), newBoard(t))
	assert.Equal(t, time.Minute, c.TimeLeft(board.White), "reset-to-original discards whatever remained")
}

func TestClockNoResetConfiguredReportsUnbounded(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute})
	assert.Equal(t, -1, c.MovesToReset(board.White))
}

func TestClockTimeForfeit(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Millisecond})
	c.Start()
	time.Sleep(5 * time.Millisecond)

	b := newBoard(t)
	result := c.Punch(context.Background(), b)
	assert.Equal(t, board.TimeForfeit, result.Kind)
	assert.Equal(t, board.Black, result.Winner)
	assert.False(t, c.IsRunning())
}

func TestClockTimeForfeitWithInsufficientMatingMaterial(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Millisecond})
	c.Start()
	time.Sleep(5 * time.Millisecond)

	b, err := board.FromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.NoError(t, err)

	result := c.Punch(context.Background(), &b)
	assert.Equal(t, board.TimeExpiredInsufficientMaterial, result.Kind)
	assert.True(t, result.IsDraw())
}

func TestClockSetTime(t *testing.T) {
	c := clock.New(clock.Config{Initial: time.Minute})
	c.SetTime(board.Black, 10*time.Second)
	assert.Equal(t, 10*time.Second, c.TimeLeft(board.Black))
}

func newBoard(t *testing.T) *board.Board {
	t.Helper()
	b := board.NewBoard()
	return &b
}
