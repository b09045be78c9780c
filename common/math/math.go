package math

import (
	"math"
)

// TradingDaysPerYear is the annualisation base for daily equity series
const TradingDaysPerYear = 252

// ArithmeticMean is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for x := range values {
		sum += values[x]
	}
	return sum / float64(len(values))
}

// FinancialGeometricMean is a modified geometric average to assess
// the negative returns of investments. It adds +1 to each value, so a
// -10% movement becomes 0.9 and remains usable in the product
func FinancialGeometricMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	product := 1.0
	for i := range values {
		if values[i] <= -1 {
			// cannot lose more than 100%, figures are incorrect
			return 0
		}
		product *= 1 + values[i]
	}
	return math.Pow(product, 1/float64(len(values))) - 1
}

// PopulationStandardDeviation calculates standard deviation using
// population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticMean(values)
	diffs := make([]float64, len(values))
	for x := range values {
		diffs[x] = math.Pow(values[x]-avg, 2)
	}
	return math.Sqrt(ArithmeticMean(diffs))
}

// SampleStandardDeviation measures the dispersion of a dataset relative
// to its mean, using the n-1 sample correction
func SampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := ArithmeticMean(values)
	var combined float64
	for i := range values {
		combined += math.Pow(values[i]-mean, 2)
	}
	return math.Sqrt(combined / (float64(len(values)) - 1))
}

// DownsideDeviation measures dispersion of only the values falling below
// the minimum acceptable return, the denominator counts all observations
func DownsideDeviation(values []float64, minimumAcceptable float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var negativeSquared float64
	for x := range values {
		if values[x]-minimumAcceptable < 0 {
			negativeSquared += math.Pow(values[x]-minimumAcceptable, 2)
		}
	}
	return math.Sqrt(negativeSquared / float64(len(values)))
}

// CompoundAnnualGrowthRate calculates CAGR as a fraction.
// Using days, intervals per year would be 252 and number of intervals
// would be the number of trading days elapsed
func CompoundAnnualGrowthRate(openValue, closeValue, intervalsPerYear, numberOfIntervals float64) float64 {
	if openValue <= 0 || closeValue <= 0 || numberOfIntervals == 0 {
		return 0
	}
	return math.Pow(closeValue/openValue, intervalsPerYear/numberOfIntervals) - 1
}

// SharpeRatio returns the per-period sharpe ratio of the return series
// compared to the per-period risk-free rate
func SharpeRatio(returnsPerPeriod []float64, riskFreeRatePerPeriod float64) float64 {
	if len(returnsPerPeriod) <= 1 {
		return 0
	}
	excess := make([]float64, len(returnsPerPeriod))
	for i := range returnsPerPeriod {
		excess[i] = returnsPerPeriod[i] - riskFreeRatePerPeriod
	}
	stdDev := SampleStandardDeviation(excess)
	if stdDev == 0 {
		return 0
	}
	return ArithmeticMean(excess) / stdDev
}

// SortinoRatio returns the per-period sortino ratio of the return series,
// penalising only downside deviation from the risk-free rate
func SortinoRatio(returnsPerPeriod []float64, riskFreeRatePerPeriod float64) float64 {
	downside := DownsideDeviation(returnsPerPeriod, riskFreeRatePerPeriod)
	if downside == 0 {
		return 0
	}
	return (ArithmeticMean(returnsPerPeriod) - riskFreeRatePerPeriod) / downside
}

// CalmarRatio is a function of the annualised rate of return versus its
// maximum drawdown. The higher the ratio, the better the performance on a
// risk-adjusted basis during the given time frame
func CalmarRatio(annualisedReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualisedReturn / math.Abs(maxDrawdown)
}

// InformationRatio measures portfolio returns beyond the returns of a
// benchmark compared to the volatility of those excess returns
func InformationRatio(returns, benchmarkReturns []float64) float64 {
	if len(returns) == 0 || len(returns) != len(benchmarkReturns) {
		return 0
	}
	diffs := make([]float64, len(returns))
	for i := range returns {
		diffs[i] = returns[i] - benchmarkReturns[i]
	}
	trackingError := SampleStandardDeviation(diffs)
	if trackingError == 0 {
		return 0
	}
	return ArithmeticMean(diffs) / trackingError
}

// DrawdownSeries converts an equity series into the fractional decline
// from its running peak, zero at each new high
func DrawdownSeries(values []float64) []float64 {
	drawdowns := make([]float64, len(values))
	var peak float64
	for i := range values {
		if values[i] > peak {
			peak = values[i]
		}
		if peak > 0 {
			drawdowns[i] = (values[i] - peak) / peak
		}
	}
	return drawdowns
}

// MaxDrawdown returns the deepest peak-to-trough decline of the equity
// series as a negative fraction
func MaxDrawdown(values []float64) float64 {
	var maxDrawdown float64
	dds := DrawdownSeries(values)
	for i := range dds {
		if dds[i] < maxDrawdown {
			maxDrawdown = dds[i]
		}
	}
	return maxDrawdown
}

// SignAdjustedBasisPoints expresses execution price versus a benchmark
// in basis points, positive meaning cost against the trader for either
// side: paying up on a buy or selling down on a sell
func SignAdjustedBasisPoints(isBuy bool, execPrice, benchmark float64) float64 {
	if benchmark == 0 {
		return 0
	}
	bps := (execPrice - benchmark) / benchmark * 10000
	if !isBuy {
		bps = -bps
	}
	return bps
}

// LinearRegression performs an ordinary least squares fit of y on x and
// returns the slope, intercept and coefficient of determination. Zero
// variance in x yields zeroed results rather than an error
func LinearRegression(x, y []float64) (slope, intercept, r2 float64) {
	if len(x) <= 1 || len(x) != len(y) {
		return 0, 0, 0
	}
	meanX := ArithmeticMean(x)
	meanY := ArithmeticMean(y)
	var covXY, varX, varY float64
	for i := range x {
		covXY += (x[i] - meanX) * (y[i] - meanY)
		varX += math.Pow(x[i]-meanX, 2)
		varY += math.Pow(y[i]-meanY, 2)
	}
	if varX == 0 {
		return 0, 0, 0
	}
	slope = covXY / varX
	intercept = meanY - slope*meanX
	if varY == 0 {
		return slope, intercept, 0
	}
	r2 = (covXY * covXY) / (varX * varY)
	return slope, intercept, r2
}
