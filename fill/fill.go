package fill

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/order"
)

// Fill records the execution of an order, or part of one, against a
// market snapshot
type Fill struct {
	OrderID    uuid.UUID
	Symbol     string
	Side       order.Side
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Commission decimal.Decimal
	Slippage   decimal.Decimal // per-share cost paid against the trader
	Timestamp  time.Time
}

// TotalCost returns the full cash outlay of the fill including commission
func (f *Fill) TotalCost() decimal.Decimal {
	return f.Price.Mul(f.Quantity).Add(f.Commission)
}

// NetProceeds returns the cash received for a sell after commission
func (f *Fill) NetProceeds() decimal.Decimal {
	return f.Price.Mul(f.Quantity).Sub(f.Commission)
}
