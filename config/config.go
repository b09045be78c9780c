package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBacktestConfig returns a runnable configuration with cost-free
// execution and daily rebalancing, the usual starting point for tests
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		InitialCapital:     decimal.NewFromInt(100000),
		SlippageModel:      "fixed",
		MaxPositionPct:     decimal.NewFromInt(1),
		MaxLeverage:        decimal.NewFromInt(1),
		RebalanceFrequency: RebalanceDaily,
	}
}

// Validate checks a backtest configuration once at construction
func (c *BacktestConfig) Validate() error {
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.StartDate.After(c.EndDate) {
		return errStartAfterEnd
	}
	if c.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return errInitialCapitalInvalid
	}
	if c.CommissionRate.IsNegative() {
		return errCommissionRateNegative
	}
	if c.SlippageRate.IsNegative() {
		return errSlippageRateNegative
	}
	if c.MaxPositionPct.LessThanOrEqual(decimal.Zero) || c.MaxPositionPct.GreaterThan(decimal.NewFromInt(1)) {
		return errMaxPositionPctInvalid
	}
	if c.MaxLeverage.LessThan(decimal.NewFromInt(1)) {
		return errMaxLeverageInvalid
	}
	switch c.RebalanceFrequency {
	case RebalanceDaily, RebalanceWeekly, RebalanceMonthly:
	default:
		return fmt.Errorf("%w %q", ErrInvalidRebalanceFrequency, c.RebalanceFrequency)
	}
	return nil
}

// RebalanceInterval returns the day-index spacing for the configured
// frequency: daily every step, weekly every 5, monthly every 21
func (c *BacktestConfig) RebalanceInterval() int {
	switch c.RebalanceFrequency {
	case RebalanceWeekly:
		return 5
	case RebalanceMonthly:
		return 21
	default:
		return 1
	}
}

// DefaultTWAPConfig splits an order into ten slices over an hour with the
// conventional disguise jitter
func DefaultTWAPConfig() TWAPConfig {
	return TWAPConfig{
		Duration:         time.Hour,
		Slices:           10,
		QuantityJitter:   0.2,
		TimingJitter:     0.1,
		VolatilityWindow: 10,
	}
}

// Validate checks a TWAP configuration
func (c *TWAPConfig) Validate() error {
	if c.Duration <= 0 {
		return errDurationInvalid
	}
	if c.Slices <= 0 {
		return errSliceCountInvalid
	}
	if c.QuantityJitter < 0 || c.QuantityJitter >= 1 ||
		c.TimingJitter < 0 || c.TimingJitter >= 1 {
		return errJitterInvalid
	}
	return nil
}

// DefaultPOVConfig targets ten percent of traded volume sampled every
// thirty seconds for up to four hours
func DefaultPOVConfig() POVConfig {
	return POVConfig{
		TargetRate:         0.1,
		MinRate:            0.02,
		MaxRate:            0.25,
		SampleInterval:     30 * time.Second,
		MaxDuration:        4 * time.Hour,
		MinOrderQuantity:   decimal.NewFromInt(1),
		SpreadThresholdBps: 20,
	}
}

// Validate checks a POV configuration
func (c *POVConfig) Validate() error {
	if c.MinRate <= 0 || c.MinRate > c.TargetRate || c.TargetRate > c.MaxRate || c.MaxRate > 1 {
		return errParticipationInvalid
	}
	if c.SampleInterval <= 0 {
		return errSampleIntervalInvalid
	}
	if c.MaxDuration <= 0 {
		return errDurationInvalid
	}
	if c.MinOrderQuantity.LessThanOrEqual(decimal.Zero) {
		return errMinOrderQtyInvalid
	}
	return nil
}

// ReadBacktestConfigFromFile loads and validates a JSON backtest config
func ReadBacktestConfigFromFile(path string) (*BacktestConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %w", path, err)
	}
	cfg := DefaultBacktestConfig()
	if err = json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
