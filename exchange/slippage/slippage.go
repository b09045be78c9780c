package slippage

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Model names accepted by NewModel
const (
	FixedModel       = "fixed"
	VolumeBasedModel = "volume"
	SquareRootModel  = "sqrt"
)

// ErrUnknownModel is returned when a model name is unrecognised
var ErrUnknownModel = errors.New("unknown slippage model")

// Model estimates the per-share cost paid against the trader when an
// order of a given size executes against a day's traded volume
type Model interface {
	Cost(price, quantity, volume decimal.Decimal) decimal.Decimal
	Name() string
}

// Fixed charges a flat fraction of price regardless of order size
type Fixed struct {
	Rate decimal.Decimal
}

// Cost returns price * rate
func (f Fixed) Cost(price, _, _ decimal.Decimal) decimal.Decimal {
	return price.Mul(f.Rate)
}

// Name returns the model identifier
func (f Fixed) Name() string { return FixedModel }

// VolumeBased scales a base rate linearly with the order's share of the
// day's volume
type VolumeBased struct {
	BaseRate          decimal.Decimal
	ImpactCoefficient decimal.Decimal
}

// Cost returns price * baseRate * (1 + participation * impactCoefficient)
func (v VolumeBased) Cost(price, quantity, volume decimal.Decimal) decimal.Decimal {
	participation := participationRate(quantity, volume)
	multiplier := decimal.NewFromInt(1).Add(participation.Mul(v.ImpactCoefficient))
	return price.Mul(v.BaseRate).Mul(multiplier)
}

// Name returns the model identifier
func (v VolumeBased) Name() string { return VolumeBasedModel }

// SquareRoot follows the square-root market impact law, scaling a
// volatility term with the square root of participation
type SquareRoot struct {
	BaseRate   decimal.Decimal
	Volatility decimal.Decimal
}

// Cost returns price * (baseRate + sqrt(participation) * volatility)
func (s SquareRoot) Cost(price, quantity, volume decimal.Decimal) decimal.Decimal {
	participation, _ := participationRate(quantity, volume).Float64()
	impact := decimal.NewFromFloat(math.Sqrt(participation)).Mul(s.Volatility)
	return price.Mul(s.BaseRate.Add(impact))
}

// Name returns the model identifier
func (s SquareRoot) Name() string { return SquareRootModel }

// NewModel builds a slippage model from its configured name. The
// coefficient parameter is the impact coefficient for the volume model
// and the volatility term for the square root model
func NewModel(name string, rate, coefficient decimal.Decimal) (Model, error) {
	switch name {
	case FixedModel, "":
		return Fixed{Rate: rate}, nil
	case VolumeBasedModel:
		return VolumeBased{BaseRate: rate, ImpactCoefficient: coefficient}, nil
	case SquareRootModel:
		return SquareRoot{BaseRate: rate, Volatility: coefficient}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
}

// participationRate returns quantity/volume, zero when no volume data is
// available so models degrade to their base rate
func participationRate(quantity, volume decimal.Decimal) decimal.Decimal {
	if volume.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return quantity.Div(volume)
}
