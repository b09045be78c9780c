package twap

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
	gctmath "github.com/quantsmith/backtester/common/math"
	"github.com/quantsmith/backtester/config"
	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/exchange"
	"github.com/quantsmith/backtester/execution"
	"github.com/quantsmith/backtester/log"
	"github.com/quantsmith/backtester/order"
)

// Algorithm splits a parent order into uniformly spaced child orders,
// randomising slice sizes and timings within configured bounds so the
// schedule is harder to detect. One Algorithm instance serves one
// parent order at a time
type Algorithm struct {
	cfg      config.TWAPConfig
	broker   *exchange.Broker
	feed     execution.Feed
	rng      *rand.Rand
	ctrl     execution.Controller
	progress *execution.Progress
	observed []float64
}

// New returns a TWAP pacer. The random source drives quantity and
// timing jitter; supplying a seeded source makes runs reproducible, nil
// falls back to a time-seeded source
func New(cfg config.TWAPConfig, broker *exchange.Broker, feed execution.Feed, rng *rand.Rand) (*Algorithm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if broker == nil || feed == nil {
		return nil, common.ErrNilArguments
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Algorithm{
		cfg:    cfg,
		broker: broker,
		feed:   feed,
		rng:    rng,
	}, nil
}

// Pause holds the schedule before the next slice
func (a *Algorithm) Pause() { a.ctrl.Pause() }

// Resume releases a pause
func (a *Algorithm) Resume() { a.ctrl.Resume() }

// Cancel stops the schedule at the next slice boundary
func (a *Algorithm) Cancel() { a.ctrl.Cancel() }

// Progress returns the running execution state
func (a *Algorithm) Progress() *execution.Progress { return a.progress }

// Execute paces the parent order across the configured duration. A
// failed or skipped slice never aborts the parent; partial completion
// is reported through the returned progress
func (a *Algorithm) Execute(ctx context.Context, parent *order.Order) (*execution.Progress, error) {
	if parent == nil {
		return nil, common.ErrNilArguments
	}
	a.progress = execution.NewProgress(parent)
	a.progress.StartedAt = time.Now()
	a.progress.Slices = a.buildSchedule(parent.Quantity, a.progress.StartedAt)
	interval := a.cfg.Duration / time.Duration(a.cfg.Slices)

	for i := range a.progress.Slices {
		if a.ctrl.IsCancelled() {
			a.progress.Cancelled = true
			log.Infof(log.Execution, "twap %v cancelled at slice %v/%v",
				parent.ID, i, len(a.progress.Slices))
			break
		}
		if err := execution.AwaitResume(ctx, &a.ctrl, interval/4); err != nil {
			a.progress.Cancelled = true
			return a.finish(), err
		}
		if err := execution.SleepUntil(ctx, a.progress.Slices[i].ScheduledAt); err != nil {
			a.progress.Cancelled = true
			return a.finish(), err
		}
		a.runSlice(&a.progress.Slices[i], parent)
	}
	return a.finish(), nil
}

// buildSchedule produces the slice plan. Each slice quantity is
// jittered then clamped so the running total never overshoots; the
// final slice absorbs all rounding residue so the targets sum exactly
// to the parent quantity
func (a *Algorithm) buildSchedule(total decimal.Decimal, start time.Time) []execution.Slice {
	n := a.cfg.Slices
	interval := a.cfg.Duration / time.Duration(n)
	base := total.Div(decimal.NewFromInt(int64(n)))

	slices := make([]execution.Slice, n)
	remaining := total
	for i := 0; i < n; i++ {
		quantity := remaining
		if i < n-1 {
			jitter := 1 + (a.rng.Float64()*2-1)*a.cfg.QuantityJitter
			quantity = base.Mul(decimal.NewFromFloat(jitter)).Floor()
			if quantity.GreaterThan(remaining) {
				quantity = remaining
			}
			if quantity.IsNegative() {
				quantity = decimal.Zero
			}
		}
		offset := time.Duration(float64(interval) * (a.rng.Float64()*2 - 1) * a.cfg.TimingJitter)
		slices[i] = execution.Slice{
			Index:       i,
			ScheduledAt: start.Add(time.Duration(i)*interval + offset),
			Quantity:    quantity,
			Status:      execution.SlicePending,
		}
		remaining = remaining.Sub(quantity)
	}
	return slices
}

func (a *Algorithm) runSlice(sl *execution.Slice, parent *order.Order) {
	if sl.Quantity.LessThanOrEqual(decimal.Zero) {
		sl.Status = execution.SliceSkipped
		return
	}
	quote, err := a.feed.Snapshot(parent.Symbol)
	if err != nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "twap %v slice %v: no market data: %v", parent.ID, sl.Index, err)
		return
	}
	price, _ := quote.Price.Float64()
	a.observed = append(a.observed, price)

	if a.volatilityExceeded() {
		sl.Status = execution.SliceSkipped
		log.Warnf(log.Execution, "twap %v slice %v skipped, short-window volatility above %.4f",
			parent.ID, sl.Index, a.cfg.VolatilityThreshold)
		return
	}

	child, err := order.New(parent.Symbol, parent.Side, sl.Quantity)
	if err != nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "twap %v slice %v: %v", parent.ID, sl.Index, err)
		return
	}
	sl.Status = execution.SliceSubmitted
	f, err := a.broker.ExecuteOrder(child, &data.Snapshot{
		Date:    quote.Time,
		Prices:  map[string]decimal.Decimal{parent.Symbol: quote.Price},
		Volumes: map[string]decimal.Decimal{parent.Symbol: quote.Volume},
	})
	if err != nil || f == nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "twap %v slice %v was not filled", parent.ID, sl.Index)
		return
	}
	sl.Status = execution.SliceFilled
	sl.FillPrice = f.Price
	a.progress.RecordFill(f.Price, f.Quantity)
	a.progress.MarketVolume = a.progress.MarketVolume.Add(quote.Volume)
}

// volatilityExceeded checks the sample deviation of returns over the
// trailing observation window against the protective threshold
func (a *Algorithm) volatilityExceeded() bool {
	if a.cfg.VolatilityThreshold <= 0 || len(a.observed) < 2 {
		return false
	}
	window := a.observed
	if a.cfg.VolatilityWindow > 0 && len(window) > a.cfg.VolatilityWindow {
		window = window[len(window)-a.cfg.VolatilityWindow:]
	}
	returns := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		if window[i-1] == 0 {
			continue
		}
		returns = append(returns, (window[i]-window[i-1])/window[i-1])
	}
	return gctmath.SampleStandardDeviation(returns) > a.cfg.VolatilityThreshold
}

// finish stamps completion and scores the run against the mean observed
// price, the benchmark a TWAP schedule is meant to track
func (a *Algorithm) finish() *execution.Progress {
	a.progress.CompletedAt = time.Now()
	if len(a.observed) > 0 {
		a.progress.Benchmark = decimal.NewFromFloat(gctmath.ArithmeticMean(a.observed))
	}
	if a.progress.Filled.GreaterThan(decimal.Zero) && !a.progress.Benchmark.IsZero() {
		avg, _ := a.progress.AvgFillPrice.Float64()
		benchmark, _ := a.progress.Benchmark.Float64()
		a.progress.SlippageBps = gctmath.SignAdjustedBasisPoints(a.progress.Side == order.Buy, avg, benchmark)
	}
	return a.progress
}
