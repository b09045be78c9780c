package execution

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantsmith/backtester/order"
)

func TestControllerFlags(t *testing.T) {
	t.Parallel()
	var c Controller
	assert.False(t, c.IsPaused(), "fresh controller should not be paused")
	assert.False(t, c.IsCancelled(), "fresh controller should not be cancelled")

	c.Pause()
	assert.True(t, c.IsPaused(), "pause should take effect")
	c.Resume()
	assert.False(t, c.IsPaused(), "resume should clear the pause")

	c.Cancel()
	assert.True(t, c.IsCancelled(), "cancel should take effect")
}

func TestSleepRespectsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled, "a dead context should end the sleep")

	assert.NoError(t, Sleep(context.Background(), 0), "a non-positive duration returns at once")
	assert.NoError(t, Sleep(context.Background(), time.Millisecond), "a short sleep should elapse")
}

func TestSleepUntilPast(t *testing.T) {
	t.Parallel()
	err := SleepUntil(context.Background(), time.Now().Add(-time.Hour))
	assert.NoError(t, err, "a scheduled time in the past returns at once")
}

func TestAwaitResume(t *testing.T) {
	t.Parallel()
	var c Controller
	require.NoError(t, AwaitResume(context.Background(), &c, time.Millisecond),
		"an unpaused controller returns at once")

	c.Pause()
	go func() {
		time.Sleep(5 * time.Millisecond)
		c.Resume()
	}()
	require.NoError(t, AwaitResume(context.Background(), &c, time.Millisecond),
		"resume should release the wait")

	c.Pause()
	c.Cancel()
	require.NoError(t, AwaitResume(context.Background(), &c, time.Millisecond),
		"cancellation releases a paused wait so the caller can wind down")
}

func TestQuoteSpreadBps(t *testing.T) {
	t.Parallel()
	q := Quote{
		Bid: decimal.NewFromFloat(99.95),
		Ask: decimal.NewFromFloat(100.05),
	}
	assert.InDelta(t, 10, q.SpreadBps(), 1e-9, "10 cents around 100 is 10 bps")

	assert.Zero(t, Quote{Ask: decimal.NewFromInt(100)}.SpreadBps(),
		"a one-sided book has no measurable spread")
	assert.Zero(t, Quote{}.SpreadBps(), "an empty quote has no measurable spread")
}

func TestProgressAccumulation(t *testing.T) {
	t.Parallel()
	o, err := order.New("AAPL", order.Buy, decimal.NewFromInt(1000))
	require.NoError(t, err, "New must not error")
	p := NewProgress(o)
	assert.True(t, p.Remaining().Equal(decimal.NewFromInt(1000)), "nothing filled yet")
	assert.Zero(t, p.FillRate(), "nothing filled yet")

	p.RecordFill(decimal.NewFromInt(100), decimal.NewFromInt(400))
	p.RecordFill(decimal.NewFromInt(110), decimal.NewFromInt(600))
	assert.True(t, p.Remaining().IsZero(), "fills should consume the parent order")
	assert.InDelta(t, 1, p.FillRate(), 1e-9, "fully filled")
	// 400@100 + 600@110 averages to 106
	assert.True(t, p.AvgFillPrice.Equal(decimal.NewFromInt(106)),
		"unexpected average fill price %v", p.AvgFillPrice)
}
