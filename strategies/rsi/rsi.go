package rsi

import (
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/strategies/base"
)

const (
	// Name is the strategy name
	Name        = "rsi"
	description = `Allocates to a symbol while its relative strength index signals an oversold market and exits once it signals overbought`
)

// Strategy buys weakness and sells strength off the RSI thresholds
type Strategy struct {
	base.Strategy
	Period int
	Low    float64
	High   float64
}

// New returns the strategy with its conventional 14/30/70 settings
func New() *Strategy {
	return &Strategy{
		Period: 14,
		Low:    30,
		High:   70,
	}
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// Signals emits an equal-weight target while a symbol's RSI is at or
// below the low threshold, holds it until the high threshold is
// breached and stays flat otherwise. Dates inside the warmup period
// carry no signal
func (s *Strategy) Signals(prices *data.Panel) (*data.Panel, error) {
	if err := s.ValidatePanel(prices); err != nil {
		return nil, err
	}
	symbols := prices.Symbols()
	weight := s.EqualWeight(len(symbols))
	signals := data.NewPanel()

	for _, symbol := range symbols {
		dates, series := prices.Series(symbol)
		if len(series) <= s.Period {
			continue
		}
		closes := make([]float64, len(series))
		for i := range series {
			closes[i], _ = series[i].Float64()
		}
		values := indicators.RSI(closes, s.Period)

		holding := false
		for i := s.Period; i < len(dates); i++ {
			switch {
			case values[i] <= s.Low:
				holding = true
			case values[i] >= s.High:
				holding = false
			}
			target := decimal.Zero
			if holding {
				target = weight
			}
			if err := signals.Set(dates[i], symbol, target); err != nil {
				return nil, err
			}
		}
	}
	return signals, nil
}
