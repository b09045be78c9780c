package pov

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

// rate adjustment multipliers applied per sample
const (
	spreadBackoff = 0.8
	lagCatchUp    = 1.2
)

// Algorithm paces a parent order as a fraction of observed market
// volume. The participation rate starts at the configured target and
// adapts each sample: backed off towards the minimum when the quoted
// spread widens, pushed towards the maximum when fills lag the
// volume-weighted schedule
type Algorithm struct {
	cfg      config.POVConfig
	broker   *exchange.Broker
	feed     execution.Feed
	rng      *rand.Rand
	ctrl     execution.Controller
	progress *execution.Progress

	currentRate    float64
	volumeNotional decimal.Decimal
}

// New returns a POV pacer. The random source only drives the simulated
// volume fallback used when the feed reports no volume; seed it for
// reproducible runs
func New(cfg config.POVConfig, broker *exchange.Broker, feed execution.Feed, rng *rand.Rand) (*Algorithm, error) {
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

// Pause holds submission before the next sample
func (a *Algorithm) Pause() { a.ctrl.Pause() }

// Resume releases a pause
func (a *Algorithm) Resume() { a.ctrl.Resume() }

// Cancel stops the run at the next sample boundary
func (a *Algorithm) Cancel() { a.ctrl.Cancel() }

// Progress returns the running execution state
func (a *Algorithm) Progress() *execution.Progress { return a.progress }

// CurrentParticipationRate returns the adaptive rate as of the last
// sample
func (a *Algorithm) CurrentParticipationRate() float64 { return a.currentRate }

// ActualParticipationRate returns filled quantity over cumulative
// observed market volume
func (a *Algorithm) ActualParticipationRate() float64 {
	if a.progress == nil || a.progress.MarketVolume.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	rate, _ := a.progress.Filled.Div(a.progress.MarketVolume).Float64()
	return rate
}

// Execute samples trailing volume at the configured interval and
// submits child orders until the order is worked down, the maximum
// duration elapses or the run is cancelled. Partial completion is a
// normal outcome, not an error
func (a *Algorithm) Execute(ctx context.Context, parent *order.Order) (*execution.Progress, error) {
	if parent == nil {
		return nil, common.ErrNilArguments
	}
	a.progress = execution.NewProgress(parent)
	a.progress.StartedAt = time.Now()
	a.currentRate = a.cfg.TargetRate
	deadline := a.progress.StartedAt.Add(a.cfg.MaxDuration)

	for index := 0; ; index++ {
		if a.progress.Remaining().LessThan(a.cfg.MinOrderQuantity) {
			break
		}
		if time.Now().After(deadline) {
			log.Infof(log.Execution, "pov %v reached max duration with %v remaining",
				parent.ID, a.progress.Remaining())
			break
		}
		if a.ctrl.IsCancelled() {
			a.progress.Cancelled = true
			log.Infof(log.Execution, "pov %v cancelled with %v remaining",
				parent.ID, a.progress.Remaining())
			break
		}
		if err := execution.AwaitResume(ctx, &a.ctrl, a.cfg.SampleInterval); err != nil {
			a.progress.Cancelled = true
			return a.finish(), err
		}
		if err := execution.Sleep(ctx, a.cfg.SampleInterval); err != nil {
			a.progress.Cancelled = true
			return a.finish(), err
		}
		a.runSample(index, parent)
	}
	return a.finish(), nil
}

func (a *Algorithm) runSample(index int, parent *order.Order) {
	sl := execution.Slice{
		Index:       index,
		ScheduledAt: time.Now(),
		Status:      execution.SlicePending,
	}
	defer func() { a.progress.Slices = append(a.progress.Slices, sl) }()

	quote, err := a.feed.Snapshot(parent.Symbol)
	if err != nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "pov %v sample %v: no market data: %v", parent.ID, index, err)
		return
	}
	volume := quote.Volume
	if volume.LessThanOrEqual(decimal.Zero) {
		volume = a.simulateVolume()
		log.Warnf(log.Execution, "pov %v sample %v: no volume data, simulating %v",
			parent.ID, index, volume)
	}
	a.adaptRate(quote, volume)

	quantity := volume.Mul(decimal.NewFromFloat(a.currentRate)).Floor()
	if quantity.LessThan(a.cfg.MinOrderQuantity) {
		quantity = a.cfg.MinOrderQuantity
	}
	if remaining := a.progress.Remaining(); quantity.GreaterThan(remaining) {
		quantity = remaining
	}
	sl.Quantity = quantity

	child, err := order.New(parent.Symbol, parent.Side, quantity)
	if err != nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "pov %v sample %v: %v", parent.ID, index, err)
		return
	}
	sl.Status = execution.SliceSubmitted
	f, err := a.broker.ExecuteOrder(child, &data.Snapshot{
		Date:    quote.Time,
		Prices:  map[string]decimal.Decimal{parent.Symbol: quote.Price},
		Volumes: map[string]decimal.Decimal{parent.Symbol: volume},
	})
	if err != nil || f == nil {
		sl.Status = execution.SliceFailed
		log.Warnf(log.Execution, "pov %v sample %v was not filled", parent.ID, index)
		a.recordVolume(quote, volume)
		return
	}
	sl.Status = execution.SliceFilled
	sl.FillPrice = f.Price
	a.progress.RecordFill(f.Price, f.Quantity)
	a.recordVolume(quote, volume)
}

// adaptRate applies the two control loops: thin-liquidity protection
// first, then schedule catch-up
func (a *Algorithm) adaptRate(quote execution.Quote, volume decimal.Decimal) {
	if spread := quote.SpreadBps(); a.cfg.SpreadThresholdBps > 0 && spread > a.cfg.SpreadThresholdBps {
		a.currentRate *= spreadBackoff
		if a.currentRate < a.cfg.MinRate {
			a.currentRate = a.cfg.MinRate
		}
		return
	}
	scheduled := a.progress.MarketVolume.Add(volume).
		Mul(decimal.NewFromFloat(a.cfg.TargetRate))
	if a.progress.Filled.LessThan(scheduled) {
		a.currentRate *= lagCatchUp
		if a.currentRate > a.cfg.MaxRate {
			a.currentRate = a.cfg.MaxRate
		}
		return
	}
	// on schedule, drift back towards the target
	a.currentRate += (a.cfg.TargetRate - a.currentRate) / 2
}

// simulateVolume fabricates a plausible interval volume when the feed
// has none, scaled off what has been observed so far or, before any
// observation, off the quantity still to be worked
func (a *Algorithm) simulateVolume() decimal.Decimal {
	base := a.progress.Remaining().Div(decimal.NewFromFloat(a.cfg.TargetRate))
	if len(a.progress.Slices) > 0 && a.progress.MarketVolume.GreaterThan(decimal.Zero) {
		base = a.progress.MarketVolume.Div(decimal.NewFromInt(int64(len(a.progress.Slices))))
	}
	factor := decimal.NewFromFloat(0.5 + a.rng.Float64())
	simulated := base.Mul(factor).Floor()
	if simulated.LessThan(a.cfg.MinOrderQuantity) {
		return a.cfg.MinOrderQuantity
	}
	return simulated
}

func (a *Algorithm) recordVolume(quote execution.Quote, volume decimal.Decimal) {
	a.progress.MarketVolume = a.progress.MarketVolume.Add(volume)
	a.volumeNotional = a.volumeNotional.Add(quote.Price.Mul(volume))
}

// finish stamps completion and scores the run against the
// volume-weighted observed price
func (a *Algorithm) finish() *execution.Progress {
	a.progress.CompletedAt = time.Now()
	if a.progress.MarketVolume.GreaterThan(decimal.Zero) {
		a.progress.Benchmark = a.volumeNotional.Div(a.progress.MarketVolume)
	}
	if a.progress.Filled.GreaterThan(decimal.Zero) && !a.progress.Benchmark.IsZero() {
		avg, _ := a.progress.AvgFillPrice.Float64()
		benchmark, _ := a.progress.Benchmark.Float64()
		a.progress.SlippageBps = gctmath.SignAdjustedBasisPoints(a.progress.Side == order.Buy, avg, benchmark)
	}
	return a.progress
}
