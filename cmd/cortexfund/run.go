package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dyike/cortexfund/internal/cli"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/streaming"
	"github.com/dyike/cortexfund/pkg/app"
)

// newRunCmd mirrors the teacher's newAnalyzeCmd (internal/cli/commands.go):
// a flag-driven single-shot command against shared config, except
// cortexfund's analysis is multi-ticker and multi-agent rather than one
// symbol through a fixed agent pipeline, so progress streams live instead
// of a single pass/fail result. --interactive reuses the teacher's own
// survey-driven prompts (internal/cli/prompts.go) for tickers/analysts
// instead of requiring both flags up front.
func newRunCmd(actx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one streaming analysis over a set of tickers",
		Long: `run drives the analyst DAG once for the given tickers: every selected
analyst runs concurrently, a risk manager computes position limits, and a
portfolio manager emits one trade decision per ticker. Progress and the
final decisions stream to stdout as they complete.

With --interactive and no --tickers/--agents, the ticker set and analyst
team are collected via interactive prompts instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tickersCSV, _ := cmd.Flags().GetString("tickers")
			agentsCSV, _ := cmd.Flags().GetString("agents")
			startDate, _ := cmd.Flags().GetString("start-date")
			endDate, _ := cmd.Flags().GetString("end-date")
			modelName, _ := cmd.Flags().GetString("model-name")
			modelProvider, _ := cmd.Flags().GetString("model-provider")
			initialCash, _ := cmd.Flags().GetString("initial-cash")
			marginReq, _ := cmd.Flags().GetString("margin-requirement")
			verbose, _ := cmd.Flags().GetBool("verbose")
			interactive, _ := cmd.Flags().GetBool("interactive")

			appEngine := actx.runtime.Engine()

			var tickers []models.Ticker
			switch {
			case tickersCSV != "":
				tickers = parseTickers(tickersCSV)
			case interactive:
				var err error
				tickers, err = cli.PromptForTickers()
				if err != nil {
					return fmt.Errorf("ticker prompt: %w", err)
				}
			default:
				return fmt.Errorf("--tickers is required (or pass --interactive)")
			}
			if len(tickers) == 0 {
				return fmt.Errorf("--tickers is required")
			}

			if !cmd.Flags().Changed("agents") && interactive {
				keys, err := cli.PromptForAnalysts(analystOptions(appEngine))
				if err != nil {
					return fmt.Errorf("analyst prompt: %w", err)
				}
				agentsCSV = strings.Join(keys, ",")
			}

			if endDate == "" {
				endDate = time.Now().Format("2006-01-02")
			}
			if startDate == "" {
				end, err := time.Parse("2006-01-02", endDate)
				if err != nil {
					return fmt.Errorf("invalid --end-date: %w", err)
				}
				startDate = end.AddDate(0, 0, -30).Format("2006-01-02")
			}

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

			portfolio := models.NewPortfolio(cash, margin, tickers)
			state := models.NewRunState(tickers, portfolio, startDate, endDate, modelName, modelProvider)

			cli.DisplayStartBanner(tickerStrings(tickers))

			runner := streaming.New(engine)
			for evt := range runner.Stream(cmd.Context(), state) {
				if !verbose && evt.Type == streaming.EventProgressUpdate {
					continue
				}
				cli.DisplayEvent(evt)
			}
			return nil
		},
	}

	cmd.Flags().String("tickers", "", "Comma-separated list of ticker symbols (required unless --interactive)")
	cmd.Flags().String("agents", defaultAgentsCSV, "Comma-separated analyst registry keys to run")
	cmd.Flags().String("start-date", "", "Lookback window start (YYYY-MM-DD, default 30 days before end-date)")
	cmd.Flags().String("end-date", "", "Analysis date (YYYY-MM-DD, default today)")
	cmd.Flags().String("model-name", "", "LLM model name (default from config)")
	cmd.Flags().String("model-provider", "", "LLM model provider: deepseek|openai (default from config)")
	cmd.Flags().String("initial-cash", "100000", "Starting cash")
	cmd.Flags().String("margin-requirement", "0", "Margin requirement fraction for short positions, e.g. 0.5")
	cmd.Flags().Bool("verbose", false, "Print per-agent progress events, not just start/complete")
	cmd.Flags().Bool("interactive", false, "Prompt for tickers/analysts when the corresponding flag is omitted")

	return cmd
}

// analystOptions lists every registered analyst as a cli.AnalystOption, in
// registry order, for the --interactive analyst-selection prompt.
func analystOptions(appEngine *app.Engine) []cli.AnalystOption {
	keys := appEngine.Analysts.Keys()
	options := make([]cli.AnalystOption, 0, len(keys))
	for _, key := range keys {
		if entry, ok := appEngine.Analysts.Lookup(key); ok {
			options = append(options, cli.AnalystOption{Key: entry.Key, DisplayName: entry.DisplayName})
		}
	}
	return options
}

func parseTickers(csv string) []models.Ticker {
	var out []models.Ticker
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, models.Ticker(strings.ToUpper(s)))
		}
	}
	return out
}

func tickerStrings(tickers []models.Ticker) []string {
	out := make([]string, len(tickers))
	for i, t := range tickers {
		out[i] = string(t)
	}
	return out
}
