package execution

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/order"
)

// SliceStatus is the lifecycle state of one child-order slice
type SliceStatus string

// Slice lifecycle states. A skipped slice is a protective pause, not a
// failure; the parent order proceeds to the next slice either way
const (
	SlicePending   SliceStatus = "pending"
	SliceSubmitted SliceStatus = "submitted"
	SliceFilled    SliceStatus = "filled"
	SliceSkipped   SliceStatus = "skipped"
	SliceFailed    SliceStatus = "failed"
)

var (
	// ErrNoQuote is returned by feeds with nothing to report for a symbol
	ErrNoQuote = errors.New("no quote available")

	errParentOrderNil = errors.New("parent order is nil")
)

// Quote is one observation of the market used to pace child orders.
// Volume is the traded volume observed over the trailing sampling
// window; Bid and Ask are zero when quote data is unavailable
type Quote struct {
	Time   time.Time
	Price  decimal.Decimal
	Bid    decimal.Decimal
	Ask    decimal.Decimal
	Volume decimal.Decimal
}

// SpreadBps returns the quoted spread in basis points of the mid price,
// zero when either side of the book is missing
func (q Quote) SpreadBps() float64 {
	if q.Bid.LessThanOrEqual(decimal.Zero) || q.Ask.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	mid := q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2))
	if mid.IsZero() {
		return 0
	}
	bps, _ := q.Ask.Sub(q.Bid).Div(mid).Mul(decimal.NewFromInt(10000)).Float64()
	return bps
}

// Feed supplies market observations to a pacing algorithm. In a
// backtest this is driven from panels; live it would wrap a ticker
// stream
type Feed interface {
	Snapshot(symbol string) (Quote, error)
}

// Slice is one child order in a pacing schedule
type Slice struct {
	Index       int
	ScheduledAt time.Time
	Quantity    decimal.Decimal
	Status      SliceStatus
	FillPrice   decimal.Decimal
}

// Progress tracks a parent order through its schedule. It is mutated
// incrementally by the owning algorithm and is terminal once remaining
// quantity falls below the minimum slice size or the run is cancelled
type Progress struct {
	OrderID      uuid.UUID
	Symbol       string
	Side         order.Side
	Total        decimal.Decimal
	Filled       decimal.Decimal
	AvgFillPrice decimal.Decimal
	MarketVolume decimal.Decimal
	Benchmark    decimal.Decimal
	SlippageBps  float64
	Slices       []Slice
	StartedAt    time.Time
	CompletedAt  time.Time
	Cancelled    bool

	notional decimal.Decimal
}

// NewProgress initialises tracking for a parent order
func NewProgress(o *order.Order) *Progress {
	return &Progress{
		OrderID: o.ID,
		Symbol:  o.Symbol,
		Side:    o.Side,
		Total:   o.Quantity,
	}
}

// Remaining returns the unfilled quantity of the parent order
func (p *Progress) Remaining() decimal.Decimal {
	return p.Total.Sub(p.Filled)
}

// FillRate returns the filled fraction of the parent order
func (p *Progress) FillRate() float64 {
	if p.Total.IsZero() {
		return 0
	}
	rate, _ := p.Filled.Div(p.Total).Float64()
	return rate
}

// RecordFill accumulates a child fill into the running average price
func (p *Progress) RecordFill(price, quantity decimal.Decimal) {
	p.Filled = p.Filled.Add(quantity)
	p.notional = p.notional.Add(price.Mul(quantity))
	if !p.Filled.IsZero() {
		p.AvgFillPrice = p.notional.Div(p.Filled)
	}
}
