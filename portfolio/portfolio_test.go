package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(decimal.Zero)
	assert.ErrorIs(t, err, ErrInitialCapitalInvalid, "zero capital should error")

	p, err := New(decimal.NewFromInt(1000))
	require.NoError(t, err, "New must not error")
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(1000)), "unexpected starting cash")
	assert.True(t, p.TotalValue().Equal(decimal.NewFromInt(1000)), "unexpected starting value")
}

func TestAddPosition(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(10000))
	require.NoError(t, err, "New must not error")

	added := p.AddPosition("AAPL", decimal.NewFromInt(50), decimal.NewFromInt(100))
	assert.True(t, added.Equal(decimal.NewFromInt(50)), "full quantity should be affordable")
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(5000)), "cash should be reduced by the purchase")

	pos, err := p.Position("AAPL")
	require.NoError(t, err, "Position must not error")
	assert.True(t, pos.AverageCost.Equal(decimal.NewFromInt(100)), "unexpected average cost")

	// second buy at a higher price moves the weighted average
	added = p.AddPosition("AAPL", decimal.NewFromInt(25), decimal.NewFromInt(200))
	assert.True(t, added.Equal(decimal.NewFromInt(25)), "second buy should be affordable")
	pos, err = p.Position("AAPL")
	require.NoError(t, err, "Position must not error")
	expected := decimal.NewFromInt(50 * 100 + 25 * 200).Div(decimal.NewFromInt(75))
	assert.True(t, pos.AverageCost.Equal(expected), "unexpected weighted average cost %v", pos.AverageCost)
}

func TestAddPositionClipsToCash(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(1050))
	require.NoError(t, err, "New must not error")

	added := p.AddPosition("AAPL", decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.True(t, added.Equal(decimal.NewFromInt(10)), "quantity should clip to floor(cash/price), received %v", added)
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(50)), "unexpected residual cash %v", p.Cash())

	// nothing affordable at all is a silent no-op
	added = p.AddPosition("TSLA", decimal.NewFromInt(1), decimal.NewFromInt(100))
	assert.True(t, added.IsZero(), "unaffordable buy should add nothing")
	_, err = p.Position("TSLA")
	assert.ErrorIs(t, err, ErrNoHoldings, "no position should exist")
	assert.False(t, p.Cash().IsNegative(), "cash must never go negative")
}

func TestReducePosition(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(10000))
	require.NoError(t, err, "New must not error")
	p.AddPosition("AAPL", decimal.NewFromInt(50), decimal.NewFromInt(100))

	pnl := p.ReducePosition("AAPL", decimal.NewFromInt(20), decimal.NewFromInt(110))
	assert.True(t, pnl.Equal(decimal.NewFromInt(200)), "unexpected realised pnl %v", pnl)
	assert.True(t, p.Quantity("AAPL").Equal(decimal.NewFromInt(30)), "unexpected remaining quantity")

	// oversized sell clips to the holding rather than shorting
	pnl = p.ReducePosition("AAPL", decimal.NewFromInt(500), decimal.NewFromInt(90))
	assert.True(t, pnl.Equal(decimal.NewFromInt(-300)), "unexpected realised pnl on clipped sell %v", pnl)
	assert.True(t, p.Quantity("AAPL").IsZero(), "position should be flat")
	_, err = p.Position("AAPL")
	assert.ErrorIs(t, err, ErrNoHoldings, "flat position should be removed")

	pnl = p.ReducePosition("MSFT", decimal.NewFromInt(5), decimal.NewFromInt(10))
	assert.True(t, pnl.IsZero(), "selling an unheld symbol is a no-op")
}

func TestUpdateMarketValueCarriesForward(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(10000))
	require.NoError(t, err, "New must not error")
	p.AddPosition("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))

	p.UpdateMarketValue(map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(120)})
	pos, err := p.Position("AAPL")
	require.NoError(t, err, "Position must not error")
	assert.True(t, pos.MarketValue.Equal(decimal.NewFromInt(1200)), "unexpected market value")

	// a day with no price for the symbol keeps the stale valuation
	p.UpdateMarketValue(map[string]decimal.Decimal{"MSFT": decimal.NewFromInt(50)})
	pos, err = p.Position("AAPL")
	require.NoError(t, err, "Position must not error")
	assert.True(t, pos.MarketValue.Equal(decimal.NewFromInt(1200)), "stale value should carry forward")
}

func TestChargeFee(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(100))
	require.NoError(t, err, "New must not error")
	p.ChargeFee(decimal.NewFromInt(30))
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(70)), "unexpected cash after fee")
	p.ChargeFee(decimal.NewFromInt(1000))
	assert.True(t, p.Cash().IsZero(), "oversized fee should floor cash at zero")
}

func TestGetWeights(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(10000))
	require.NoError(t, err, "New must not error")
	p.AddPosition("AAPL", decimal.NewFromInt(25), decimal.NewFromInt(100))

	weights := p.GetWeights()
	require.Contains(t, weights, "AAPL", "held symbol should have a weight")
	assert.True(t, weights["AAPL"].Equal(decimal.NewFromFloat(0.25)), "unexpected weight %v", weights["AAPL"])
}

func TestLongOnlyInvariant(t *testing.T) {
	t.Parallel()
	p, err := New(decimal.NewFromInt(5000))
	require.NoError(t, err, "New must not error")

	// arbitrary interleaving of operations must never drive quantity or cash negative
	p.AddPosition("A", decimal.NewFromInt(30), decimal.NewFromInt(100))
	p.ReducePosition("A", decimal.NewFromInt(100), decimal.NewFromInt(50))
	p.AddPosition("A", decimal.NewFromInt(1000), decimal.NewFromInt(3))
	p.ReducePosition("A", decimal.NewFromInt(2000), decimal.NewFromInt(1))
	p.ChargeFee(decimal.NewFromInt(100000))

	assert.False(t, p.Cash().IsNegative(), "cash must never go negative")
	for _, pos := range p.Holdings() {
		assert.False(t, pos.Quantity.IsNegative(), "quantity must never go negative for %v", pos.Symbol)
	}
}
