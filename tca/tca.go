package tca

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
	gctmath "github.com/quantsmith/backtester/common/math"
	"github.com/quantsmith/backtester/execution"
	"github.com/quantsmith/backtester/fill"
	"github.com/quantsmith/backtester/log"
	"github.com/quantsmith/backtester/order"
)

// Analyze scores an order's fills against the supplied benchmarks.
// Missing benchmark members zero their metric rather than erroring; a
// multi-order TCA pass must not abort on one order with thin reference
// data
func Analyze(o *order.Order, fills []fill.Fill, b Benchmarks) (*Report, error) {
	if o == nil {
		return nil, common.ErrNilArguments
	}
	if len(fills) == 0 {
		return nil, ErrNoFills
	}
	r := &Report{
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   o.Quantity,
		Benchmarks: b,
		Fills:      append([]fill.Fill(nil), fills...),
	}

	var notional decimal.Decimal
	for i := range fills {
		r.FilledQty = r.FilledQty.Add(fills[i].Quantity)
		notional = notional.Add(fills[i].Price.Mul(fills[i].Quantity))
	}
	if r.FilledQty.GreaterThan(decimal.Zero) {
		r.AvgExecPrice = notional.Div(r.FilledQty)
	}
	if o.Quantity.GreaterThan(decimal.Zero) {
		r.FillRate, _ = r.FilledQty.Div(o.Quantity).Float64()
	}

	isBuy := o.Side.IsBuy()
	exec, _ := r.AvgExecPrice.Float64()
	arrival, _ := b.Arrival.Float64()
	vwap, _ := b.VWAP.Float64()
	twapPrice, _ := b.TWAP.Float64()
	finalPrice, _ := b.FinalPrice.Float64()

	r.SlippageVsArrivalBps = gctmath.SignAdjustedBasisPoints(isBuy, exec, arrival)
	r.SlippageVsVWAPBps = gctmath.SignAdjustedBasisPoints(isBuy, exec, vwap)
	r.SlippageVsTWAPBps = gctmath.SignAdjustedBasisPoints(isBuy, exec, twapPrice)

	// shortfall decomposition: impact is what execution cost beyond the
	// market's own volume-weighted price, timing is how the market moved
	// between decision and the execution window, spread is the half-touch
	// paid on crossing, opportunity is exposure left by unfilled quantity
	r.MarketImpactBps = r.SlippageVsVWAPBps
	r.TimingCostBps = gctmath.SignAdjustedBasisPoints(isBuy, twapPrice, arrival)
	r.SpreadCostBps = b.AvgSpreadBps / 2
	if r.FillRate < 1 && finalPrice > 0 {
		r.OpportunityCostBps = (1 - r.FillRate) *
			gctmath.SignAdjustedBasisPoints(isBuy, finalPrice, arrival)
	}

	r.Quality = RateQuality(r.SlippageVsArrivalBps)
	r.Recommendations = recommend(r)
	log.Debugf(log.TCA, "order %v rated %v, %.2f bps vs arrival", o.ID, r.Quality, r.SlippageVsArrivalBps)
	return r, nil
}

// RateQuality buckets arrival slippage into the discrete rating bands
func RateQuality(slippageVsArrivalBps float64) Quality {
	switch {
	case slippageVsArrivalBps < -5:
		return Excellent
	case slippageVsArrivalBps < 5:
		return Good
	case slippageVsArrivalBps < 15:
		return Fair
	case slippageVsArrivalBps < 30:
		return Poor
	default:
		return Bad
	}
}

// recommend keys short advisories off the dominant cost component
func recommend(r *Report) []string {
	if r.Quality == Excellent || r.Quality == Good {
		return nil
	}
	dominant := r.MarketImpactBps
	advice := "order consumed too much liquidity; lower the participation rate or extend the schedule"
	if r.TimingCostBps > dominant {
		dominant = r.TimingCostBps
		advice = "market drifted away during execution; shorten the execution window"
	}
	if r.SpreadCostBps > dominant {
		dominant = r.SpreadCostBps
		advice = "crossing wide spreads; favour more passive child orders"
	}
	if r.OpportunityCostBps > dominant {
		advice = "unfilled quantity left exposure; raise participation or extend the window"
	}
	return []string{advice}
}

// BenchmarksFromQuotes derives the reference prices from market
// observations covering the execution window: arrival from the first
// quote, VWAP weighted by observed volume, TWAP as the simple mean
func BenchmarksFromQuotes(quotes []execution.Quote) Benchmarks {
	var b Benchmarks
	if len(quotes) == 0 {
		return b
	}
	b.Arrival = quotes[0].Price
	b.FinalPrice = quotes[len(quotes)-1].Price

	prices := make([]float64, 0, len(quotes))
	spreads := make([]float64, 0, len(quotes))
	var volume, notional decimal.Decimal
	for i := range quotes {
		p, _ := quotes[i].Price.Float64()
		prices = append(prices, p)
		if s := quotes[i].SpreadBps(); s > 0 {
			spreads = append(spreads, s)
		}
		volume = volume.Add(quotes[i].Volume)
		notional = notional.Add(quotes[i].Price.Mul(quotes[i].Volume))
	}
	b.TWAP = decimal.NewFromFloat(gctmath.ArithmeticMean(prices))
	if volume.GreaterThan(decimal.Zero) {
		b.VWAP = notional.Div(volume)
	} else {
		// no volume data, the time-weighted mean is the best available
		b.VWAP = b.TWAP
	}
	b.AvgSpreadBps = gctmath.ArithmeticMean(spreads)
	return b
}

// Aggregate rolls many reports into volume-weighted and simple
// statistics over arrival slippage plus a quality histogram
func Aggregate(reports []*Report) (*AggregateStats, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	stats := &AggregateStats{
		QualityCounts: make(map[Quality]int),
	}
	slippages := make([]float64, 0, len(reports))
	var weighted float64
	for i := range reports {
		if reports[i] == nil {
			continue
		}
		stats.Count++
		stats.QualityCounts[reports[i].Quality]++
		stats.TotalVolume = stats.TotalVolume.Add(reports[i].FilledQty)
		filled, _ := reports[i].FilledQty.Float64()
		weighted += reports[i].SlippageVsArrivalBps * filled
		slippages = append(slippages, reports[i].SlippageVsArrivalBps)
	}
	if stats.Count == 0 {
		return nil, ErrNoReports
	}
	if totalVolume, _ := stats.TotalVolume.Float64(); totalVolume > 0 {
		stats.VolumeWeightedSlippageBps = weighted / totalVolume
	}
	stats.MeanSlippageBps = gctmath.ArithmeticMean(slippages)
	stats.StdDevSlippageBps = gctmath.SampleStandardDeviation(slippages)

	sort.Float64s(slippages)
	stats.MinSlippageBps = slippages[0]
	stats.MaxSlippageBps = slippages[len(slippages)-1]
	mid := len(slippages) / 2
	if len(slippages)%2 == 0 {
		stats.MedianSlippageBps = (slippages[mid-1] + slippages[mid]) / 2
	} else {
		stats.MedianSlippageBps = slippages[mid]
	}
	return stats, nil
}
