package statistics

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/order"
)

var (
	// errReceivedNoData is returned when there is no equity to analyse
	errReceivedNoData = errors.New("received no data")
)

// EquityPoint is one observation of portfolio (or benchmark) value
type EquityPoint struct {
	Time  time.Time
	Value decimal.Decimal
}

// Trade is a completed transaction with its realised outcome. Realised
// profit and loss is only meaningful on position-reducing trades
type Trade struct {
	Symbol      string
	Side        order.Side
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Commission  decimal.Decimal
	RealizedPnL decimal.Decimal
	Timestamp   time.Time
}

// Metrics is the full risk and return report for an equity curve.
// Degenerate inputs zero the affected metric rather than erroring
type Metrics struct {
	StartDate time.Time `json:"start-date"`
	EndDate   time.Time `json:"end-date"`
	Periods   int       `json:"periods"`

	TotalReturn          float64 `json:"total-return"`
	AnnualizedReturn     float64 `json:"annualized-return"`
	AnnualizedVolatility float64 `json:"annualized-volatility"`

	MaxDrawdown             float64 `json:"max-drawdown"`
	AverageDrawdown         float64 `json:"average-drawdown"`
	LongestDrawdownPeriods  int     `json:"longest-drawdown-periods"`

	SharpeRatio  float64 `json:"sharpe-ratio"`
	SortinoRatio float64 `json:"sortino-ratio"`
	CalmarRatio  float64 `json:"calmar-ratio"`

	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	RSquared         float64 `json:"r-squared"`
	TrackingError    float64 `json:"tracking-error"`
	InformationRatio float64 `json:"information-ratio"`

	TotalTrades       int     `json:"total-trades"`
	WinningTrades     int     `json:"winning-trades"`
	LosingTrades      int     `json:"losing-trades"`
	WinRate           float64 `json:"win-rate"`
	ProfitFactor      float64 `json:"profit-factor"`
	AverageWin        float64 `json:"average-win"`
	AverageLoss       float64 `json:"average-loss"`
	LongestWinStreak  int     `json:"longest-win-streak"`
	LongestLossStreak int     `json:"longest-loss-streak"`
}

// Analyzer computes metrics from equity curves. It keeps no state
// between calls; Calculate on identical inputs yields identical results
type Analyzer struct {
	// RiskFreeRate is the annual risk-free rate used by the ratio
	// calculations, expressed as a fraction
	RiskFreeRate float64
}

// NewAnalyzer returns an analyzer using the given annual risk-free rate
func NewAnalyzer(riskFreeRate float64) *Analyzer {
	return &Analyzer{RiskFreeRate: riskFreeRate}
}
