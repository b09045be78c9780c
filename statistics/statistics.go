package statistics

import (
	"math"

	gctmath "github.com/quantsmith/backtester/common/math"
)

// Calculate produces the full metrics report for an equity curve. The
// benchmark and trades arguments are optional; their metric groups are
// zeroed when absent. Inputs are never mutated
func (a *Analyzer) Calculate(equity, benchmark []EquityPoint, trades []Trade) (*Metrics, error) {
	if len(equity) == 0 {
		return nil, errReceivedNoData
	}
	m := &Metrics{
		StartDate: equity[0].Time,
		EndDate:   equity[len(equity)-1].Time,
		Periods:   len(equity),
	}

	values := toFloats(equity)
	returns := periodicReturns(values)
	riskFreePerPeriod := a.RiskFreeRate / gctmath.TradingDaysPerYear

	first, last := values[0], values[len(values)-1]
	if first > 0 {
		m.TotalReturn = (last - first) / first
	}
	m.AnnualizedReturn = gctmath.CompoundAnnualGrowthRate(
		first, last, gctmath.TradingDaysPerYear, float64(len(returns)))
	m.AnnualizedVolatility = gctmath.SampleStandardDeviation(returns) *
		math.Sqrt(gctmath.TradingDaysPerYear)

	a.calculateDrawdowns(m, values)

	m.SharpeRatio = gctmath.SharpeRatio(returns, riskFreePerPeriod) *
		math.Sqrt(gctmath.TradingDaysPerYear)
	m.SortinoRatio = gctmath.SortinoRatio(returns, riskFreePerPeriod) *
		math.Sqrt(gctmath.TradingDaysPerYear)
	m.CalmarRatio = gctmath.CalmarRatio(m.AnnualizedReturn, m.MaxDrawdown)

	if len(benchmark) > 0 {
		a.calculateBenchmarkRelative(m, returns, periodicReturns(toFloats(benchmark)), riskFreePerPeriod)
	}
	if len(trades) > 0 {
		calculateTradeStatistics(m, trades)
	}
	return m, nil
}

func (a *Analyzer) calculateDrawdowns(m *Metrics, values []float64) {
	drawdowns := gctmath.DrawdownSeries(values)
	var inDrawdown []float64
	var longest, current int
	for i := range drawdowns {
		if drawdowns[i] < 0 {
			inDrawdown = append(inDrawdown, drawdowns[i])
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
		if drawdowns[i] < m.MaxDrawdown {
			m.MaxDrawdown = drawdowns[i]
		}
	}
	m.AverageDrawdown = gctmath.ArithmeticMean(inDrawdown)
	m.LongestDrawdownPeriods = longest
}

// calculateBenchmarkRelative regresses excess portfolio returns on
// excess benchmark returns over their overlapping window
func (a *Analyzer) calculateBenchmarkRelative(m *Metrics, returns, benchmarkReturns []float64, riskFreePerPeriod float64) {
	n := len(returns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n <= 1 {
		return
	}
	excessPortfolio := make([]float64, n)
	excessBenchmark := make([]float64, n)
	diffs := make([]float64, n)
	for i := 0; i < n; i++ {
		excessPortfolio[i] = returns[i] - riskFreePerPeriod
		excessBenchmark[i] = benchmarkReturns[i] - riskFreePerPeriod
		diffs[i] = returns[i] - benchmarkReturns[i]
	}
	beta, intercept, r2 := gctmath.LinearRegression(excessBenchmark, excessPortfolio)
	m.Beta = beta
	m.Alpha = intercept * gctmath.TradingDaysPerYear
	m.RSquared = r2
	m.TrackingError = gctmath.SampleStandardDeviation(diffs) *
		math.Sqrt(gctmath.TradingDaysPerYear)
	if m.TrackingError != 0 {
		m.InformationRatio = gctmath.ArithmeticMean(diffs) *
			gctmath.TradingDaysPerYear / m.TrackingError
	}
}

// calculateTradeStatistics summarises realised outcomes over the trades
// that reduced positions, the only ones carrying realised profit or loss
func calculateTradeStatistics(m *Metrics, trades []Trade) {
	var grossProfit, grossLoss float64
	var winStreak, lossStreak int
	for i := range trades {
		if !trades[i].Side.IsSell() {
			continue
		}
		m.TotalTrades++
		pnl, _ := trades[i].RealizedPnL.Float64()
		switch {
		case pnl > 0:
			m.WinningTrades++
			grossProfit += pnl
			winStreak++
			lossStreak = 0
		case pnl < 0:
			m.LosingTrades++
			grossLoss += -pnl
			lossStreak++
			winStreak = 0
		default:
			winStreak = 0
			lossStreak = 0
		}
		if winStreak > m.LongestWinStreak {
			m.LongestWinStreak = winStreak
		}
		if lossStreak > m.LongestLossStreak {
			m.LongestLossStreak = lossStreak
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossProfit / grossLoss
	}
	if m.WinningTrades > 0 {
		m.AverageWin = grossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = grossLoss / float64(m.LosingTrades)
	}
}

func toFloats(points []EquityPoint) []float64 {
	out := make([]float64, len(points))
	for i := range points {
		out[i], _ = points[i].Value.Float64()
	}
	return out
}

func periodicReturns(values []float64) []float64 {
	if len(values) <= 1 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}
