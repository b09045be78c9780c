package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order
type Side string

// Type is the execution style of an order
type Type string

// Order sides and types
const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Market Type = "MARKET"
	Limit  Type = "LIMIT"
	Stop   Type = "STOP"
)

var (
	// ErrSideInvalid is returned when an order side is not buy or sell
	ErrSideInvalid = errors.New("order side invalid")
	// ErrTypeInvalid is returned when an order type is unrecognised
	ErrTypeInvalid = errors.New("order type invalid")

	errSymbolEmpty         = errors.New("order symbol empty")
	errQuantityInvalid     = errors.New("order quantity must be positive")
	errLimitPriceRequired  = errors.New("limit order requires a positive limit price")
	errStopPriceRequired   = errors.New("stop order requires a positive stop price")
	errIDGenerationFailure = errors.New("could not generate order id")
)

// Order is a parent trading instruction, immutable once constructed and
// consumed at most once by the broker
type Order struct {
	ID         uuid.UUID
	Symbol     string
	Side       Side
	Type       Type
	Quantity   decimal.Decimal
	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal
	CreatedAt  time.Time
}

// New returns a validated market order
func New(symbol string, side Side, quantity decimal.Decimal) (*Order, error) {
	return NewWithType(symbol, side, Market, quantity, decimal.Zero, decimal.Zero)
}

// NewWithType returns a validated order of the requested type. Limit and
// stop orders require their respective trigger prices
func NewWithType(symbol string, side Side, orderType Type, quantity, limitPrice, stopPrice decimal.Decimal) (*Order, error) {
	if symbol == "" {
		return nil, errSymbolEmpty
	}
	if side != Buy && side != Sell {
		return nil, fmt.Errorf("%w %q", ErrSideInvalid, side)
	}
	switch orderType {
	case Market:
	case Limit:
		if limitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, errLimitPriceRequired
		}
	case Stop:
		if stopPrice.LessThanOrEqual(decimal.Zero) {
			return nil, errStopPriceRequired
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrTypeInvalid, orderType)
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w, received %v", errQuantityInvalid, quantity)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errIDGenerationFailure, err)
	}
	return &Order{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Type:       orderType,
		Quantity:   quantity,
		LimitPrice: limitPrice,
		StopPrice:  stopPrice,
		CreatedAt:  time.Now(),
	}, nil
}

// IsBuy returns whether the side adds to a position
func (s Side) IsBuy() bool {
	return s == Buy
}

// IsSell returns whether the side reduces a position
func (s Side) IsSell() bool {
	return s == Sell
}
