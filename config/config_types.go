package config

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Rebalance frequencies accepted by BacktestConfig
const (
	RebalanceDaily   = "daily"
	RebalanceWeekly  = "weekly"
	RebalanceMonthly = "monthly"
)

var (
	// ErrInvalidRebalanceFrequency is returned for an unknown frequency
	ErrInvalidRebalanceFrequency = errors.New("invalid rebalance frequency")

	errStartAfterEnd          = errors.New("start date after end date")
	errInitialCapitalInvalid  = errors.New("initial capital must be positive")
	errCommissionRateNegative = errors.New("commission rate cannot be negative")
	errSlippageRateNegative   = errors.New("slippage rate cannot be negative")
	errMaxPositionPctInvalid  = errors.New("max position percent must be within (0, 1]")
	errMaxLeverageInvalid     = errors.New("max leverage must be at least 1")
	errDurationInvalid        = errors.New("duration must be positive")
	errSliceCountInvalid      = errors.New("slice count must be positive")
	errJitterInvalid          = errors.New("jitter fraction must be within [0, 1)")
	errParticipationInvalid   = errors.New("participation rates require 0 < min <= target <= max <= 1")
	errSampleIntervalInvalid  = errors.New("sample interval must be positive")
	errMinOrderQtyInvalid     = errors.New("minimum order quantity must be positive")
)

// BacktestConfig is the immutable description of a single run
type BacktestConfig struct {
	StartDate           time.Time       `json:"start-date"`
	EndDate             time.Time       `json:"end-date"`
	InitialCapital      decimal.Decimal `json:"initial-capital"`
	CommissionRate      decimal.Decimal `json:"commission-rate"`
	SlippageModel       string          `json:"slippage-model"`
	SlippageRate        decimal.Decimal `json:"slippage-rate"`
	SlippageCoefficient decimal.Decimal `json:"slippage-coefficient"`
	MaxPositionPct      decimal.Decimal `json:"max-position-percent"`
	MaxLeverage         decimal.Decimal `json:"max-leverage"`
	RebalanceFrequency  string          `json:"rebalance-frequency"`
	Benchmark           string          `json:"benchmark"`
	RiskFreeRate        float64         `json:"risk-free-rate"`
}

// TWAPConfig paces a parent order across uniform time slices
type TWAPConfig struct {
	Duration            time.Duration `json:"duration"`
	Slices              int           `json:"slices"`
	QuantityJitter      float64       `json:"quantity-jitter"`
	TimingJitter        float64       `json:"timing-jitter"`
	VolatilityThreshold float64       `json:"volatility-threshold"`
	VolatilityWindow    int           `json:"volatility-window"`
}

// POVConfig paces a parent order as a percentage of traded volume
type POVConfig struct {
	TargetRate         float64         `json:"target-rate"`
	MinRate            float64         `json:"min-rate"`
	MaxRate            float64         `json:"max-rate"`
	SampleInterval     time.Duration   `json:"sample-interval"`
	MaxDuration        time.Duration   `json:"max-duration"`
	MinOrderQuantity   decimal.Decimal `json:"min-order-quantity"`
	SpreadThresholdBps float64         `json:"spread-threshold-bps"`
}
