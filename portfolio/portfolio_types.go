package portfolio

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInitialCapitalInvalid is returned when a portfolio is created
	// without positive starting cash
	ErrInitialCapitalInvalid = errors.New("initial capital must be positive")
	// ErrNoHoldings is returned when a symbol lookup finds no position
	ErrNoHoldings = errors.New("no holdings for symbol")
)

// Position tracks a single long holding. Quantity never goes negative;
// AverageCost is a running buy-weighted average; MarketValue carries the
// last known valuation forward across missing price days
type Position struct {
	Symbol      string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	MarketValue decimal.Decimal
}

// Portfolio holds cash and long positions for exactly one backtest run.
// It is mutated only through its methods and is not safe for concurrent
// use; a run owns its portfolio outright
type Portfolio struct {
	cash      decimal.Decimal
	positions map[string]*Position
}
