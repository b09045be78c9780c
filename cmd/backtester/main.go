package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/quantsmith/backtester/common"
	"github.com/quantsmith/backtester/config"
	"github.com/quantsmith/backtester/data"
	"github.com/quantsmith/backtester/engine"
	"github.com/quantsmith/backtester/log"
	"github.com/quantsmith/backtester/strategies"
)

func main() {
	app := &cli.App{
		Name:  "backtester",
		Usage: "run an equity strategy backtest over historical csv panels",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to a json backtest configuration",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "prices",
				Aliases:  []string{"p"},
				Usage:    "path to a wide-format close price csv (date column then one column per symbol)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "volumes",
				Usage: "optional path to a volume csv of the same shape",
			},
			&cli.StringFlag{
				Name:  "signals",
				Usage: "path to a target-weight signal csv, mutually exclusive with --strategy",
			},
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "bundled strategy to generate signals from the price panel (rsi, smacross)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: runBacktest,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBacktest(c *cli.Context) error {
	if c.Bool("verbose") {
		log.BackTester.SetLevels(log.Levels{Info: true, Debug: true, Warn: true, Error: true})
	}
	cfg, err := config.ReadBacktestConfigFromFile(c.String("config"))
	if err != nil {
		return err
	}
	prices, err := data.ReadPanelFromCSV(c.String("prices"))
	if err != nil {
		return err
	}
	var volumes *data.Panel
	if path := c.String("volumes"); path != "" {
		if volumes, err = data.ReadPanelFromCSV(path); err != nil {
			return err
		}
	}
	signals, err := loadSignals(c, prices)
	if err != nil {
		return err
	}

	bt, err := engine.New(*cfg, prices, volumes, signals)
	if err != nil {
		return err
	}
	if err = bt.Run(); err != nil {
		return err
	}
	printResults(bt.Result())
	return nil
}

func loadSignals(c *cli.Context, prices *data.Panel) (*data.Panel, error) {
	signalPath := c.String("signals")
	strategyName := c.String("strategy")
	switch {
	case signalPath != "" && strategyName != "":
		return nil, cli.Exit("--signals and --strategy are mutually exclusive", 1)
	case signalPath != "":
		return data.ReadPanelFromCSV(signalPath)
	case strategyName != "":
		strategy, err := strategies.LoadStrategyByName(strategyName)
		if err != nil {
			return nil, err
		}
		return strategy.Signals(prices)
	}
	return nil, cli.Exit("either --signals or --strategy is required", 1)
}

// label pads report row names so the value columns line up
func label(name string) string {
	return common.FitStringToLimit(name, " ", 19, false)
}

func printResults(result *engine.Result) {
	fmt.Printf("status: %v\n", result.Status)
	if len(result.EquityCurve) == 0 {
		return
	}
	final := result.EquityCurve[len(result.EquityCurve)-1]
	fmt.Printf("final equity: %v (%v)\n", final.Value.StringFixed(2), final.Time.Format("2006-01-02"))
	fmt.Printf("trades executed: %v\n", len(result.Trades))

	m := result.Metrics
	if m == nil {
		return
	}
	fmt.Printf("\nperformance %v -> %v (%v trading days)\n",
		m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"), m.Periods)
	fmt.Printf("  %s %8.2f%%\n", label("total return"), m.TotalReturn*100)
	fmt.Printf("  %s %8.2f%%\n", label("annualized return"), m.AnnualizedReturn*100)
	fmt.Printf("  %s %8.2f%%\n", label("annualized vol"), m.AnnualizedVolatility*100)
	fmt.Printf("  %s %8.2f%%\n", label("max drawdown"), m.MaxDrawdown*100)
	fmt.Printf("  %s %8.2f\n", label("sharpe ratio"), m.SharpeRatio)
	fmt.Printf("  %s %8.2f\n", label("sortino ratio"), m.SortinoRatio)
	fmt.Printf("  %s %8.2f\n", label("calmar ratio"), m.CalmarRatio)
	if m.Beta != 0 || m.RSquared != 0 {
		fmt.Printf("  %s %8.2f\n", label("beta"), m.Beta)
		fmt.Printf("  %s %8.2f%%\n", label("alpha"), m.Alpha*100)
		fmt.Printf("  %s %8.2f\n", label("r-squared"), m.RSquared)
		fmt.Printf("  %s %8.2f\n", label("information ratio"), m.InformationRatio)
	}
	if m.TotalTrades > 0 {
		fmt.Printf("  %s %8.2f%% over %v closed trades\n", label("win rate"), m.WinRate*100, m.TotalTrades)
		fmt.Printf("  %s %8.2f\n", label("profit factor"), m.ProfitFactor)
	}

	if len(result.MonthlyReturns) > 0 {
		months := make([]string, 0, len(result.MonthlyReturns))
		for month := range result.MonthlyReturns {
			months = append(months, month)
		}
		sort.Strings(months)
		fmt.Println("\nmonthly returns")
		for _, month := range months {
			fmt.Printf("  %v %8.2f%%\n", month, result.MonthlyReturns[month]*100)
		}
	}
}
