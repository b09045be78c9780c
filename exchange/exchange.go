package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/exchange/slippage"
	"github.com/quantsmith/backtester/fill"
	"github.com/quantsmith/backtester/log"
	"github.com/quantsmith/backtester/order"
)

// fill prices are clamped to within this fraction of the reference price
var maxPriceDeviation = decimal.NewFromFloat(0.1)

var errCommissionRateNegative = errors.New("commission rate cannot be negative")

// Broker simulates order execution against a market snapshot. It holds
// no portfolio state; fills are returned to the caller to apply. The
// only state it keeps is an append-only ledger of produced fills, which
// is safe for a single owning run but requires external synchronisation
// if ever shared
type Broker struct {
	commissionRate decimal.Decimal
	slippage       slippage.Model
	ledger         []fill.Fill
}

// NewBroker returns a broker charging the given commission rate per
// executed notional, estimating slippage with the supplied model
func NewBroker(commissionRate decimal.Decimal, model slippage.Model) (*Broker, error) {
	if commissionRate.IsNegative() {
		return nil, errCommissionRateNegative
	}
	if model == nil {
		return nil, common.ErrNilArguments
	}
	return &Broker{
		commissionRate: commissionRate,
		slippage:       model,
	}, nil
}

// CommissionRate returns the configured commission rate
func (b *Broker) CommissionRate() decimal.Decimal {
	return b.commissionRate
}

// ExecuteOrder fills an order against the snapshot's price, applying
// slippage against the trader and deducting commission. A missing or
// non-positive price is a data-quality problem, not an error: no fill is
// produced, a warning is logged and the simulation continues
func (b *Broker) ExecuteOrder(o *order.Order, snap *data.Snapshot) (*fill.Fill, error) {
	if o == nil || snap == nil {
		return nil, common.ErrNilArguments
	}
	refPrice, ok := snap.Prices[o.Symbol]
	if !ok || refPrice.LessThanOrEqual(decimal.Zero) {
		log.Warnf(log.ExchangeSys, "no usable price for %v on %v, order %v skipped",
			o.Symbol, snap.Date.Format("2006-01-02"), o.ID)
		return nil, nil
	}
	volume := snap.Volumes[o.Symbol]
	perShare := b.slippage.Cost(refPrice, o.Quantity, volume)

	var fillPrice decimal.Decimal
	if o.Side.IsBuy() {
		fillPrice = refPrice.Add(perShare)
	} else {
		fillPrice = refPrice.Sub(perShare)
	}
	fillPrice = clampToReference(fillPrice, refPrice)

	f := fill.Fill{
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Price:      fillPrice,
		Quantity:   o.Quantity,
		Commission: fillPrice.Mul(o.Quantity).Mul(b.commissionRate),
		Slippage:   perShare,
		Timestamp:  fillTime(o, snap),
	}
	b.ledger = append(b.ledger, f)
	return &f, nil
}

// Ledger returns a copy of every fill the broker has produced
func (b *Broker) Ledger() []fill.Fill {
	out := make([]fill.Fill, len(b.ledger))
	copy(out, b.ledger)
	return out
}

// Reset clears the fill ledger
func (b *Broker) Reset() {
	b.ledger = nil
}

func clampToReference(price, reference decimal.Decimal) decimal.Decimal {
	deviation := reference.Mul(maxPriceDeviation)
	if upper := reference.Add(deviation); price.GreaterThan(upper) {
		return upper
	}
	if lower := reference.Sub(deviation); price.LessThan(lower) {
		return lower
	}
	return price
}

func fillTime(o *order.Order, snap *data.Snapshot) time.Time {
	if !snap.Date.IsZero() {
		return snap.Date
	}
	return o.CreatedAt
}
