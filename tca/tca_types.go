package tca

import (
	"errors"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/fill"
	"github.com/quantsmith/backtester/order"
)

// Quality is the discrete execution rating derived from slippage
// against the arrival price
type Quality string

// Quality bands in basis points vs arrival: excellent < -5,
// good [-5, 5), fair [5, 15), poor [15, 30), bad >= 30
const (
	Excellent Quality = "excellent"
	Good      Quality = "good"
	Fair      Quality = "fair"
	Poor      Quality = "poor"
	Bad       Quality = "bad"
)

var (
	// ErrNoFills is returned when an order has nothing to analyse
	ErrNoFills = errors.New("no fills to analyse")
	// ErrNoReports is returned when aggregating an empty report set
	ErrNoReports = errors.New("no reports to aggregate")
)

// Benchmarks are the reference prices an execution is scored against.
// Zero-valued members mean the data was unavailable; the corresponding
// metric is zeroed rather than failing the analysis
type Benchmarks struct {
	Arrival      decimal.Decimal
	VWAP         decimal.Decimal
	TWAP         decimal.Decimal
	FinalPrice   decimal.Decimal
	AvgSpreadBps float64
}

// Report scores one order's execution. Created once per analysed order
// and immutable thereafter
type Report struct {
	OrderID      uuid.UUID
	Symbol       string
	Side         order.Side
	Quantity     decimal.Decimal
	FilledQty    decimal.Decimal
	AvgExecPrice decimal.Decimal
	Benchmarks   Benchmarks

	SlippageVsArrivalBps float64
	SlippageVsVWAPBps    float64
	SlippageVsTWAPBps    float64

	// implementation shortfall decomposition
	MarketImpactBps    float64
	TimingCostBps      float64
	SpreadCostBps      float64
	OpportunityCostBps float64

	FillRate        float64
	Fills           []fill.Fill
	Quality         Quality
	Recommendations []string
}

// AggregateStats rolls many reports into portfolio-level execution
// statistics
type AggregateStats struct {
	Count                     int
	TotalVolume               decimal.Decimal
	VolumeWeightedSlippageBps float64
	MeanSlippageBps           float64
	MedianSlippageBps         float64
	StdDevSlippageBps         float64
	MinSlippageBps            float64
	MaxSlippageBps            float64
	QualityCounts             map[Quality]int
}
