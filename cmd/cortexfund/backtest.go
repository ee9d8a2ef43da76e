package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dyike/cortexfund/internal/backtest"
	"github.com/dyike/cortexfund/internal/cli"
	"github.com/dyike/cortexfund/pkg/utils"
)

// newBacktestCmd drives internal/backtest.Backtester and prints the
// teacher-style summary block (adapting DisplayCompleteReport's bordered
// report to portfolio/metrics fields).
func newBacktestCmd(actx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the analyst DAG day-by-day over a historical date range",
		Long: `backtest drives the same analyst DAG once per business day across
[start-date, end-date], applying the portfolio manager's decisions to a
long/short, margin-aware ledger and reporting Sharpe, Sortino, and maximum
drawdown once at least four trading days have completed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickersCSV, _ := cmd.Flags().GetString("tickers")
			agentsCSV, _ := cmd.Flags().GetString("agents")
			startDate, _ := cmd.Flags().GetString("start-date")
			endDate, _ := cmd.Flags().GetString("end-date")
			modelName, _ := cmd.Flags().GetString("model-name")
			modelProvider, _ := cmd.Flags().GetString("model-provider")
			initialCash, _ := cmd.Flags().GetString("initial-cash")
			marginReq, _ := cmd.Flags().GetString("margin-requirement")
			daily, _ := cmd.Flags().GetBool("daily")

			tickers := parseTickers(tickersCSV)
			if len(tickers) == 0 {
				return fmt.Errorf("--tickers is required")
			}
			if startDate == "" || endDate == "" {
				return fmt.Errorf("--start-date and --end-date are required")
			}
			if _, err := time.Parse("2006-01-02", startDate); err != nil {
				return fmt.Errorf("invalid --start-date: %w", err)
			}
			if _, err := time.Parse("2006-01-02", endDate); err != nil {
				return fmt.Errorf("invalid --end-date: %w", err)
			}

			appEngine := actx.runtime.Engine()
			if modelName == "" {
				modelName = appEngine.Config.DefaultModelName
			}
			if modelProvider == "" {
				modelProvider = appEngine.Config.DefaultModelProvider
			}
			cash, err := decimal.NewFromString(initialCash)
			if err != nil {
				return fmt.Errorf("invalid --initial-cash: %w", err)
			}
			margin, err := decimal.NewFromString(marginReq)
			if err != nil {
				return fmt.Errorf("invalid --margin-requirement: %w", err)
			}

			engine := buildDAGEngine(appEngine, strings.Split(agentsCSV, ","))

			bt := &backtest.Backtester{
				Engine:            engine,
				Provider:          appEngine.Provider,
				Tickers:           tickers,
				StartDate:         startDate,
				EndDate:           endDate,
				InitialCash:       cash,
				MarginRequirement: margin,
				ModelName:         modelName,
				ModelProvider:     modelProvider,
			}

			cli.DisplayInfo(fmt.Sprintf("backtesting %s from %s to %s", tickersCSV, startDate, endDate))

			result, runErr := bt.Run(cmd.Context())
			if runErr != nil {
				cli.DisplayError(runErr)
			}
			if result == nil {
				return runErr
			}
			if daily {
				cli.DisplayDailyTable(result)
			}
			cli.DisplayBacktestSummary(result)

			if reportName, _ := cmd.Flags().GetString("report"); reportName != "" {
				report := backtestReportMarkdown(tickersCSV, startDate, endDate, modelName, modelProvider, result)
				if err := utils.WriteMarkdown(appEngine.Config.ResultsDir, reportName, report); err != nil {
					cli.DisplayError(fmt.Errorf("write report: %w", err))
				}
			}
			return runErr
		},
	}

	cmd.Flags().String("tickers", "", "Comma-separated list of ticker symbols (required)")
	cmd.Flags().String("agents", defaultAgentsCSV, "Comma-separated analyst registry keys to run")
	cmd.Flags().String("start-date", "", "Backtest start date (YYYY-MM-DD, required)")
	cmd.Flags().String("end-date", "", "Backtest end date (YYYY-MM-DD, required)")
	cmd.Flags().String("model-name", "", "LLM model name (default from config)")
	cmd.Flags().String("model-provider", "", "LLM model provider: deepseek|openai (default from config)")
	cmd.Flags().String("initial-cash", "100000", "Starting cash")
	cmd.Flags().String("margin-requirement", "0", "Margin requirement fraction for short positions, e.g. 0.5")
	cmd.Flags().Bool("daily", false, "Print the full day-by-day performance table")
	cmd.Flags().String("report", "", "Also write a markdown summary report to <results-dir>/<name>")
	_ = cmd.MarkFlagRequired("tickers")
	_ = cmd.MarkFlagRequired("start-date")
	_ = cmd.MarkFlagRequired("end-date")

	return cmd
}

// backtestReportMarkdown renders the same numbers DisplayBacktestSummary
// prints to stdout as a standalone markdown document for --report.
func backtestReportMarkdown(tickersCSV, startDate, endDate, modelName, modelProvider string, result *backtest.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Backtest report: %s\n\n", tickersCSV)
	fmt.Fprintf(&b, "- Period: %s to %s\n", startDate, endDate)
	fmt.Fprintf(&b, "- Model: %s (%s)\n", modelName, modelProvider)
	fmt.Fprintf(&b, "- Trading days: %d\n\n", len(result.Series))

	if len(result.Series) > 0 {
		last := result.Series[len(result.Series)-1]
		fmt.Fprintf(&b, "## Final position\n\n")
		fmt.Fprintf(&b, "- Net liquidation value: %s\n", last.NLV.StringFixed(2))
		fmt.Fprintf(&b, "- Long exposure: %s\n", last.LongExposure.StringFixed(2))
		fmt.Fprintf(&b, "- Short exposure: %s\n", last.ShortExposure.StringFixed(2))
		fmt.Fprintf(&b, "- Ending cash: %s\n\n", result.Portfolio.Cash.StringFixed(2))
	}

	fmt.Fprintf(&b, "## Risk metrics\n\n")
	m := result.Metrics
	if m.SharpeRatio == nil {
		fmt.Fprintf(&b, "Not enough trading days to compute Sharpe/Sortino/max drawdown.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- Sharpe ratio: %.4f\n", *m.SharpeRatio)
	fmt.Fprintf(&b, "- Sortino ratio: %.4f\n", *m.SortinoRatio)
	fmt.Fprintf(&b, "- Max drawdown: %.2f%%\n", *m.MaxDrawdownPct)
	return b.String()
}
