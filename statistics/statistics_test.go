package statistics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantsmith/backtester/order"
)

func curveFrom(values ...float64) []EquityPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]EquityPoint, len(values))
	for i := range values {
		curve[i] = EquityPoint{
			Time:  start.AddDate(0, 0, i),
			Value: decimal.NewFromFloat(values[i]),
		}
	}
	return curve
}

func TestCalculateNoData(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0)
	_, err := a.Calculate(nil, nil, nil)
	assert.ErrorIs(t, err, errReceivedNoData, "empty curve should error")
}

func TestCalculateFlatCurve(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0)
	m, err := a.Calculate(curveFrom(100, 100, 100, 100), nil, nil)
	require.NoError(t, err, "Calculate must not error")
	assert.Zero(t, m.TotalReturn, "flat curve has no return")
	assert.Zero(t, m.MaxDrawdown, "flat curve has no drawdown")
	assert.Zero(t, m.SharpeRatio, "zero variance should zero the sharpe")
	assert.Zero(t, m.SortinoRatio, "no downside should zero the sortino")
}

func TestCalculateReturnsAndDrawdown(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0)
	m, err := a.Calculate(curveFrom(100, 110, 99, 104.5, 121), nil, nil)
	require.NoError(t, err, "Calculate must not error")
	assert.InDelta(t, 0.21, m.TotalReturn, 1e-10, "unexpected total return")
	assert.InDelta(t, -0.1, m.MaxDrawdown, 1e-10, "unexpected max drawdown")
	assert.Equal(t, 2, m.LongestDrawdownPeriods, "drawdown spanned two observations")
	assert.Positive(t, m.AnnualizedReturn, "unexpected annualized return sign")
	assert.Positive(t, m.CalmarRatio, "positive return over a drawdown should be positive")
}

func TestCalculateIsPure(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0.02)
	equity := curveFrom(100, 103, 99, 107, 111, 108, 115)
	benchmark := curveFrom(50, 51, 50, 52, 53, 52, 54)
	trades := []Trade{
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(10)},
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(-4)},
	}
	first, err := a.Calculate(equity, benchmark, trades)
	require.NoError(t, err, "Calculate must not error")
	second, err := a.Calculate(equity, benchmark, trades)
	require.NoError(t, err, "Calculate must not error")
	assert.Equal(t, first, second, "identical inputs must yield identical metrics")
}

func TestCalculateBenchmarkRegression(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0)
	equity := curveFrom(100, 102, 101, 105, 104, 108)

	// regressing a curve against itself is the degenerate ideal: beta 1,
	// perfect fit, no tracking error
	m, err := a.Calculate(equity, equity, nil)
	require.NoError(t, err, "Calculate must not error")
	assert.InDelta(t, 1, m.Beta, 1e-10, "self-regression should have beta 1")
	assert.InDelta(t, 1, m.RSquared, 1e-10, "self-regression should have r2 1")
	assert.InDelta(t, 0, m.Alpha, 1e-10, "self-regression should have no alpha")
	assert.Zero(t, m.TrackingError, "self-regression has no tracking error")
	assert.Zero(t, m.InformationRatio, "zero tracking error should zero the ratio")
}

func TestCalculateTradeStatistics(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(0)
	trades := []Trade{
		{Side: order.Buy, RealizedPnL: decimal.Zero},
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(10)},
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(6)},
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(-8)},
		{Side: order.Sell, RealizedPnL: decimal.NewFromInt(4)},
	}
	m, err := a.Calculate(curveFrom(100, 101, 102), nil, trades)
	require.NoError(t, err, "Calculate must not error")
	assert.Equal(t, 4, m.TotalTrades, "buys carry no realised outcome")
	assert.Equal(t, 3, m.WinningTrades, "unexpected winner count")
	assert.Equal(t, 1, m.LosingTrades, "unexpected loser count")
	assert.InDelta(t, 0.75, m.WinRate, 1e-10, "unexpected win rate")
	assert.InDelta(t, 2.5, m.ProfitFactor, 1e-10, "unexpected profit factor")
	assert.InDelta(t, 20.0/3, m.AverageWin, 1e-10, "unexpected average win")
	assert.InDelta(t, 8, m.AverageLoss, 1e-10, "unexpected average loss")
	assert.Equal(t, 2, m.LongestWinStreak, "unexpected win streak")
	assert.Equal(t, 1, m.LongestLossStreak, "unexpected loss streak")
}
