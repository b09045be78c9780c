package rsi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/strategies/base"
)

func panelFrom(t *testing.T, symbol string, closes []float64) *data.Panel {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := data.NewPanel()
	for i := range closes {
		require.NoError(t, p.Set(start.AddDate(0, 0, i), symbol, decimal.NewFromFloat(closes[i])),
			"Set must not error")
	}
	return p
}

func TestName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rsi", New().Name(), "unexpected name")
}

func TestSignalsValidation(t *testing.T) {
	t.Parallel()
	_, err := New().Signals(nil)
	assert.ErrorIs(t, err, base.ErrNoPriceData, "a nil panel should be rejected")
}

func TestSignalsOversoldEntry(t *testing.T) {
	t.Parallel()
	// a persistent decline pins the index at the bottom of its range
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	prices := panelFrom(t, "AAPL", closes)

	signals, err := New().Signals(prices)
	require.NoError(t, err, "Signals must not error")
	require.NotZero(t, signals.Len(), "signals expected after the warmup period")

	for _, date := range signals.Dates() {
		weight, ok := signals.Value(date, "AAPL")
		require.True(t, ok, "missing signal on %v", date)
		assert.True(t, weight.Equal(decimal.NewFromInt(1)),
			"an oversold single-symbol panel targets full weight, got %v on %v", weight, date)
	}
}

func TestSignalsOverboughtStaysFlat(t *testing.T) {
	t.Parallel()
	// a persistent rally never dips below the entry threshold
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	prices := panelFrom(t, "AAPL", closes)

	signals, err := New().Signals(prices)
	require.NoError(t, err, "Signals must not error")
	for _, date := range signals.Dates() {
		weight, ok := signals.Value(date, "AAPL")
		require.True(t, ok, "missing signal on %v", date)
		assert.True(t, weight.IsZero(),
			"with no oversold entry the target stays flat, got %v on %v", weight, date)
	}
}

func TestSignalsSkipsShortSeries(t *testing.T) {
	t.Parallel()
	prices := panelFrom(t, "AAPL", []float64{100, 101, 102})
	signals, err := New().Signals(prices)
	require.NoError(t, err, "Signals must not error")
	assert.Zero(t, signals.Len(), "a series shorter than the warmup emits nothing")
}
