package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
	gctmath "github.com/quantsmith/backtester/common/math"
	"github.com/quantsmith/backtester/config"
	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/exchange"
	"github.com/quantsmith/backtester/exchange/slippage"
	"github.com/quantsmith/backtester/fill"
	"github.com/quantsmith/backtester/log"
	"github.com/quantsmith/backtester/order"
	"github.com/quantsmith/backtester/portfolio"
	"github.com/quantsmith/backtester/statistics"
)

// New wires a backtest from its configuration and in-memory panels. The
// volume panel may be nil when no volume-sensitive slippage model is in
// use; the signal panel holds target weights in [0, 1] per date and
// symbol, absence meaning no target
func New(cfg config.BacktestConfig, prices, volumes, signals *data.Panel) (*BackTest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prices == nil || signals == nil {
		return nil, common.ErrNilArguments
	}
	if err := data.ValidateAlignment(prices, signals); err != nil {
		return nil, err
	}
	model, err := slippage.NewModel(cfg.SlippageModel, cfg.SlippageRate, cfg.SlippageCoefficient)
	if err != nil {
		return nil, err
	}
	broker, err := exchange.NewBroker(cfg.CommissionRate, model)
	if err != nil {
		return nil, err
	}
	pf, err := portfolio.New(cfg.InitialCapital)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &BackTest{
		MetaData: RunMetaData{
			ID:         id,
			DateLoaded: time.Now(),
		},
		cfg:       cfg,
		prices:    prices,
		volumes:   volumes,
		signals:   signals,
		portfolio: pf,
		broker:    broker,
		analyzer:  statistics.NewAnalyzer(cfg.RiskFreeRate),
		result: &Result{
			Config:         cfg,
			Status:         Pending,
			MonthlyReturns: make(map[string]float64),
		},
	}, nil
}

// Run executes the day loop. Data-quality problems inside a day are
// logged and skipped; a structural failure flips the run to Failed,
// stamps the end time and returns the error rather than swallowing it
func (b *BackTest) Run() error {
	if b.result.Status != Pending {
		return fmt.Errorf("%w: status %v", errAlreadyRan, b.result.Status)
	}
	b.result.Status = Running
	b.MetaData.DateStarted = time.Now()
	log.Infof(log.BackTester, "run %v started", b.MetaData.ID)

	dates := b.prices.DatesBetween(b.cfg.StartDate, b.cfg.EndDate)
	if len(dates) == 0 {
		return b.fail(errNoTradingDays)
	}

	interval := b.cfg.RebalanceInterval()
	for i := range dates {
		if b.shutdown.Load() {
			b.result.Status = Cancelled
			b.MetaData.DateEnded = time.Now()
			log.Infof(log.BackTester, "run %v cancelled after %v days", b.MetaData.ID, i)
			return nil
		}
		snap, err := data.SnapshotAt(b.prices, b.volumes, dates[i])
		if err != nil {
			return b.fail(err)
		}
		b.portfolio.UpdateMarketValue(snap.Prices)

		if i%interval == 0 {
			if err = b.rebalance(snap); err != nil {
				return b.fail(err)
			}
		}

		b.result.EquityCurve = append(b.result.EquityCurve, statistics.EquityPoint{
			Time:  dates[i],
			Value: b.portfolio.TotalValue(),
		})
		b.result.WeightsHistory = append(b.result.WeightsHistory, WeightPoint{
			Time:    dates[i],
			Weights: b.portfolio.GetWeights(),
		})
	}

	b.result.Status = Completed
	b.MetaData.DateEnded = time.Now()
	b.summarise()
	log.Infof(log.BackTester, "run %v completed over %v days, final equity %v",
		b.MetaData.ID, len(dates), b.portfolio.TotalValue())
	return nil
}

func (b *BackTest) fail(err error) error {
	b.result.Status = Failed
	b.MetaData.DateEnded = time.Now()
	log.Errorf(log.BackTester, "run %v failed: %v", b.MetaData.ID, err)
	return err
}

// rebalance moves the portfolio towards the day's signal weights, then
// liquidates any holding the signals no longer mention
func (b *BackTest) rebalance(snap *data.Snapshot) error {
	targets := b.signals.Row(snap.Date)
	symbols := make([]string, 0, len(targets))
	for symbol := range targets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		weight := targets[symbol]
		if weight.IsNegative() {
			weight = decimal.Zero
		}
		if weight.GreaterThan(b.cfg.MaxPositionPct) {
			weight = b.cfg.MaxPositionPct
		}
		price, ok := snap.Prices[symbol]
		if !ok || price.LessThanOrEqual(decimal.Zero) {
			log.Warnf(log.BackTester, "no usable price for target %v on %v, holding position",
				symbol, snap.Date.Format("2006-01-02"))
			continue
		}
		targetShares := weight.Mul(b.portfolio.TotalValue()).Div(price).Floor()
		diff := targetShares.Sub(b.portfolio.Quantity(symbol))
		if diff.Abs().LessThan(decimal.NewFromInt(1)) {
			continue
		}
		side := order.Buy
		if diff.IsNegative() {
			side = order.Sell
		}
		if err := b.trade(symbol, side, diff.Abs(), snap); err != nil {
			return err
		}
	}

	// anything held but untargeted is fully liquidated
	for _, pos := range b.portfolio.Holdings() {
		if _, targeted := targets[pos.Symbol]; targeted {
			continue
		}
		if err := b.trade(pos.Symbol, order.Sell, pos.Quantity, snap); err != nil {
			return err
		}
	}
	return nil
}

func (b *BackTest) trade(symbol string, side order.Side, quantity decimal.Decimal, snap *data.Snapshot) error {
	o, err := order.New(symbol, side, quantity)
	if err != nil {
		return err
	}
	f, err := b.broker.ExecuteOrder(o, snap)
	if err != nil {
		return err
	}
	if f == nil {
		// skipped on bad data, warning already logged by the broker
		return nil
	}
	b.applyFill(f)
	return nil
}

// applyFill mutates the portfolio from a fill; the broker never touches
// the portfolio itself. A buy clipped for insufficient cash is recorded
// at the quantity actually taken, with commission scaled to match
func (b *BackTest) applyFill(f *fill.Fill) {
	var realised decimal.Decimal
	quantity := f.Quantity
	commission := f.Commission
	if f.Side == order.Buy {
		filled := b.portfolio.AddPosition(f.Symbol, f.Quantity, f.Price)
		if filled.IsZero() {
			return
		}
		if filled.LessThan(f.Quantity) {
			commission = commission.Mul(filled).Div(f.Quantity)
			quantity = filled
		}
	} else {
		realised = b.portfolio.ReducePosition(f.Symbol, f.Quantity, f.Price)
	}
	b.portfolio.ChargeFee(commission)
	b.result.Trades = append(b.result.Trades, statistics.Trade{
		Symbol:      f.Symbol,
		Side:        f.Side,
		Quantity:    quantity,
		Price:       f.Price,
		Commission:  commission,
		RealizedPnL: realised,
		Timestamp:   f.Timestamp,
	})
}

// summarise runs the analyzer over the finished equity curve and fills
// in the derived series
func (b *BackTest) summarise() {
	equity := b.result.EquityCurve
	if len(equity) == 0 {
		return
	}
	benchmark := b.benchmarkCurve()
	metrics, err := b.analyzer.Calculate(equity, benchmark, b.result.Trades)
	if err != nil {
		log.Errorf(log.BackTester, "run %v could not calculate metrics: %v", b.MetaData.ID, err)
		return
	}
	b.result.Metrics = metrics

	values := make([]float64, len(equity))
	for i := range equity {
		values[i], _ = equity[i].Value.Float64()
	}
	b.result.DrawdownSeries = gctmath.DrawdownSeries(values)
	b.result.MonthlyReturns = monthlyReturns(equity)
}

func (b *BackTest) benchmarkCurve() []statistics.EquityPoint {
	if b.cfg.Benchmark == "" {
		return nil
	}
	var curve []statistics.EquityPoint
	for i := range b.result.EquityCurve {
		price, ok := b.prices.Value(b.result.EquityCurve[i].Time, b.cfg.Benchmark)
		if !ok {
			continue
		}
		curve = append(curve, statistics.EquityPoint{
			Time:  b.result.EquityCurve[i].Time,
			Value: price,
		})
	}
	return curve
}

// monthlyReturns buckets the equity curve by calendar month and reports
// each month's close-to-close movement
func monthlyReturns(equity []statistics.EquityPoint) map[string]float64 {
	out := make(map[string]float64)
	if len(equity) == 0 {
		return out
	}
	monthEnd := make(map[string]float64)
	var months []string
	for i := range equity {
		key := equity[i].Time.Format("2006-01")
		if _, seen := monthEnd[key]; !seen {
			months = append(months, key)
		}
		monthEnd[key], _ = equity[i].Value.Float64()
	}
	prev, _ := equity[0].Value.Float64()
	for _, key := range months {
		if prev != 0 {
			out[key] = (monthEnd[key] - prev) / prev
		}
		prev = monthEnd[key]
	}
	return out
}
