package pov

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantsmith/backtester/config"
	"github.com/quantsmith/backtester/exchange"
	"github.com/quantsmith/backtester/exchange/slippage"
	"github.com/quantsmith/backtester/execution"
	"github.com/quantsmith/backtester/order"
)

// steadyFeed reports the same quote every sample
type steadyFeed struct {
	quote execution.Quote
}

func (f *steadyFeed) Snapshot(_ string) (execution.Quote, error) {
	return f.quote, nil
}

func fastConfig() config.POVConfig {
	cfg := config.DefaultPOVConfig()
	cfg.SampleInterval = time.Millisecond
	cfg.MaxDuration = 250 * time.Millisecond
	return cfg
}

func zeroCostBroker(t *testing.T) *exchange.Broker {
	t.Helper()
	model, err := slippage.NewModel("fixed", decimal.Zero, decimal.Zero)
	require.NoError(t, err, "NewModel must not error")
	broker, err := exchange.NewBroker(decimal.Zero, model)
	require.NoError(t, err, "NewBroker must not error")
	return broker
}

func steadyMarket(price, volume int64) *steadyFeed {
	return &steadyFeed{quote: execution.Quote{
		Time:   time.Now(),
		Price:  decimal.NewFromInt(price),
		Volume: decimal.NewFromInt(volume),
	}}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()
	_, err := New(config.POVConfig{}, nil, nil, nil)
	assert.Error(t, err, "an empty config should be rejected")

	_, err = New(config.DefaultPOVConfig(), nil, nil, nil)
	assert.Error(t, err, "nil collaborators should be rejected")
}

func TestExecuteWorksOrderDown(t *testing.T) {
	t.Parallel()
	a, err := New(fastConfig(), zeroCostBroker(t), steadyMarket(100, 1000),
		rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(500))
	require.NoError(t, err, "New must not error")
	progress, err := a.Execute(context.Background(), parent)
	require.NoError(t, err, "Execute must not error")

	assert.True(t, progress.Filled.Equal(decimal.NewFromInt(500)),
		"ample steady volume should fill in full, got %v", progress.Filled)
	assert.False(t, progress.Filled.GreaterThan(progress.Total),
		"fills must never exceed the parent quantity")
	assert.True(t, progress.Benchmark.Equal(decimal.NewFromInt(100)),
		"single-price volume weighting is the price itself")
	assert.Zero(t, progress.SlippageBps, "filling at the benchmark costs nothing")

	// actual participation is defined as fills over cumulative volume
	expected, _ := progress.Filled.Div(progress.MarketVolume).Float64()
	assert.InDelta(t, expected, a.ActualParticipationRate(), 1e-9,
		"actual rate should reflect the fill and volume tallies")
}

func TestExecuteKeepsRateWithinBounds(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	a, err := New(cfg, zeroCostBroker(t), steadyMarket(100, 1000),
		rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(2000))
	require.NoError(t, err, "New must not error")
	_, err = a.Execute(context.Background(), parent)
	require.NoError(t, err, "Execute must not error")

	assert.GreaterOrEqual(t, a.CurrentParticipationRate(), cfg.MinRate,
		"the adaptive rate must respect the floor")
	assert.LessOrEqual(t, a.CurrentParticipationRate(), cfg.MaxRate,
		"the adaptive rate must respect the ceiling")
}

func TestExecuteBacksOffOnWideSpread(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.MaxDuration = 100 * time.Millisecond
	cfg.MinRate = 0.05
	// 200bps quoted spread, far beyond the default 20bps threshold
	feed := &steadyFeed{quote: execution.Quote{
		Time:   time.Now(),
		Price:  decimal.NewFromInt(100),
		Bid:    decimal.NewFromInt(99),
		Ask:    decimal.NewFromInt(101),
		Volume: decimal.NewFromInt(1000),
	}}
	a, err := New(cfg, zeroCostBroker(t), feed, rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(100000))
	require.NoError(t, err, "New must not error")
	progress, err := a.Execute(context.Background(), parent)
	require.NoError(t, err, "Execute must not error")

	assert.Equal(t, cfg.MinRate, a.CurrentParticipationRate(),
		"a persistently wide spread should pin the rate to the floor")
	assert.True(t, progress.Filled.LessThan(progress.Total),
		"backing off should leave the oversized order partially filled")
}

func TestExecuteMaxDurationPartialFill(t *testing.T) {
	t.Parallel()
	cfg := fastConfig()
	cfg.MaxDuration = 5 * time.Millisecond
	a, err := New(cfg, zeroCostBroker(t), steadyMarket(100, 100),
		rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(1000000))
	require.NoError(t, err, "New must not error")
	progress, err := a.Execute(context.Background(), parent)
	require.NoError(t, err, "running out of time is a normal outcome")

	assert.True(t, progress.Filled.LessThan(progress.Total),
		"the deadline should cut the order short")
	assert.False(t, progress.Cancelled, "a deadline is not a cancellation")
}

func TestExecuteSimulatesMissingVolume(t *testing.T) {
	t.Parallel()
	a, err := New(fastConfig(), zeroCostBroker(t), steadyMarket(100, 0),
		rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(200))
	require.NoError(t, err, "New must not error")
	progress, err := a.Execute(context.Background(), parent)
	require.NoError(t, err, "Execute must not error")

	assert.True(t, progress.Filled.IsPositive(),
		"simulated volume should keep the order moving")
	assert.True(t, progress.MarketVolume.IsPositive(),
		"simulated volume still counts towards the participation tally")
}

func TestExecuteCancelBeforeStart(t *testing.T) {
	t.Parallel()
	a, err := New(fastConfig(), zeroCostBroker(t), steadyMarket(100, 1000),
		rand.New(rand.NewSource(1)))
	require.NoError(t, err, "New must not error")
	a.Cancel()

	parent, err := order.New("AAPL", order.Buy, decimal.NewFromInt(500))
	require.NoError(t, err, "New must not error")
	progress, err := a.Execute(context.Background(), parent)
	require.NoError(t, err, "cancellation is a normal termination")
	assert.True(t, progress.Cancelled, "progress should flag the cancellation")
	assert.True(t, progress.Filled.IsZero(), "nothing should fill after a cancel")
}
