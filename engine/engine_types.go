package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/config"
	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/exchange"
	"github.com/quantsmith/backtester/portfolio"
	"github.com/quantsmith/backtester/statistics"
)

// Status is the lifecycle state of a run
type Status string

// Run lifecycle states. Pending moves to Running, which terminates in
// exactly one of Completed, Failed or Cancelled
const (
	Pending   Status = "pending"
	Running   Status = "running"
	Completed Status = "completed"
	Failed    Status = "failed"
	Cancelled Status = "cancelled"
)

var (
	errAlreadyRan    = errors.New("backtest has already run")
	errNoTradingDays = errors.New("no trading days within configured range")
)

// RunMetaData tracks the identity and timing of a run
type RunMetaData struct {
	ID          uuid.UUID
	DateLoaded  time.Time
	DateStarted time.Time
	DateEnded   time.Time
}

// WeightPoint is one observation of the portfolio's allocation
type WeightPoint struct {
	Time    time.Time
	Weights map[string]decimal.Decimal
}

// Result collects everything a run produces. It is created empty per
// run and mutated only by its owning BackTest
type Result struct {
	Config         config.BacktestConfig
	Status         Status
	EquityCurve    []statistics.EquityPoint
	WeightsHistory []WeightPoint
	DrawdownSeries []float64
	MonthlyReturns map[string]float64
	Trades         []statistics.Trade
	Metrics        *statistics.Metrics
}

// BackTest steps a portfolio through historical data, turning signal
// weights into orders. One BackTest owns its portfolio and broker
// outright and must not be shared across goroutines; Cancel is the only
// method safe to call concurrently with Run
type BackTest struct {
	MetaData RunMetaData

	cfg       config.BacktestConfig
	prices    *data.Panel
	volumes   *data.Panel
	signals   *data.Panel
	portfolio *portfolio.Portfolio
	broker    *exchange.Broker
	analyzer  *statistics.Analyzer

	result   *Result
	shutdown atomic.Bool
}

// Result returns the run's result object. Before Run completes it holds
// whatever history has accumulated so far
func (b *BackTest) Result() *Result {
	return b.result
}

// Status returns the run's current lifecycle state
func (b *BackTest) Status() Status {
	return b.result.Status
}

// Portfolio exposes the run's portfolio, primarily for inspection in
// tests and reports
func (b *BackTest) Portfolio() *portfolio.Portfolio {
	return b.portfolio
}

// Broker exposes the run's broker and its fill ledger
func (b *BackTest) Broker() *exchange.Broker {
	return b.broker
}

// Cancel requests a cooperative stop. The flag is polled at day
// boundaries, so cancellation takes effect within one simulated day
func (b *BackTest) Cancel() {
	b.shutdown.Store(true)
}
