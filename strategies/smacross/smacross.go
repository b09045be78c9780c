package smacross

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/strategies/base"
)

const (
	// Name is the strategy name
	Name        = "smacross"
	description = `Holds a symbol while its fast simple moving average sits above the slow one, a plain trend-following filter`
)

var errPeriodsInverted = errors.New("fast period must be shorter than slow period")

// Strategy is a fast/slow moving average crossover filter
type Strategy struct {
	base.Strategy
	FastPeriod int
	SlowPeriod int
}

// New returns the strategy with 10/50 day averages
func New() *Strategy {
	return &Strategy{
		FastPeriod: 10,
		SlowPeriod: 50,
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

// Signals emits an equal-weight target for every date where the fast
// average exceeds the slow one, zero otherwise
func (s *Strategy) Signals(prices *data.Panel) (*data.Panel, error) {
	if err := s.ValidatePanel(prices); err != nil {
		return nil, err
	}
	if s.FastPeriod >= s.SlowPeriod {
		return nil, errPeriodsInverted
	}
	symbols := prices.Symbols()
	weight := s.EqualWeight(len(symbols))
	signals := data.NewPanel()

	for _, symbol := range symbols {
		dates, series := prices.Series(symbol)
		if len(series) <= s.SlowPeriod {
			continue
		}
		closes := make([]float64, len(series))
		for i := range series {
			closes[i], _ = series[i].Float64()
		}
		fast := indicators.MA(closes, s.FastPeriod, indicators.Sma)
		slow := indicators.MA(closes, s.SlowPeriod, indicators.Sma)

		for i := s.SlowPeriod; i < len(dates); i++ {
			target := decimal.Zero
			if fast[i] > slow[i] {
				target = weight
			}
			if err := signals.Set(dates[i], symbol, target); err != nil {
				return nil, err
			}
		}
	}
	return signals, nil
}
