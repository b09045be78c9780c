// Package base provides common functionality for the bundled
// signal-generating strategies
package base

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/data"
)

// ErrNoPriceData is returned when a strategy receives an empty panel
var ErrNoPriceData = errors.New("no price data for signal generation")

// Strategy carries shared strategy behaviour
type Strategy struct{}

// ValidatePanel ensures a usable price panel was supplied
func (s *Strategy) ValidatePanel(prices *data.Panel) error {
	if prices == nil || prices.Len() == 0 {
		return ErrNoPriceData
	}
	return nil
}

// EqualWeight splits full allocation evenly across the tradable symbols
func (s *Strategy) EqualWeight(symbols int) decimal.Decimal {
	if symbols <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(symbols)))
}
