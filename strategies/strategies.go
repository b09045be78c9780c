package strategies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/strategies/rsi"
	"github.com/quantsmith/backtester/strategies/smacross"
)

// ErrStrategyNotFound is returned for an unknown strategy name
var ErrStrategyNotFound = errors.New("strategy not found")

// Handler turns a historical price panel into a target-weight signal
// panel of the same shape, the input the backtest engine consumes
type Handler interface {
	Name() string
	Description() string
	Signals(prices *data.Panel) (*data.Panel, error)
}

// GetStrategies returns an instance of every bundled strategy
func GetStrategies() []Handler {
	return []Handler{
		rsi.New(),
		smacross.New(),
	}
}

// LoadStrategyByName returns the bundled strategy matching the name
func LoadStrategyByName(name string) (Handler, error) {
	for _, s := range GetStrategies() {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrStrategyNotFound, name)
}
