package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/dag"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

const (
	dateLayout   = "2006-01-02"
	lookbackDays = 30
)

// Backtester drives internal/dag.Engine once per business day across a date
// range, applying its decisions to an owned long/short portfolio ledger
// (spec §4.9), grounded on
// original_source/src/backtester.py's Backtester.run_backtest.
type Backtester struct {
	Engine            *dag.Engine
	Provider          registry.DataProvider
	Tickers           []models.Ticker
	StartDate         string
	EndDate           string
	InitialCash       decimal.Decimal
	MarginRequirement decimal.Decimal
	ModelName         string
	ModelProvider     string
}

// DailyPerformance is one business day's post-trade snapshot.
type DailyPerformance struct {
	Date           time.Time
	NLV            decimal.Decimal
	LongExposure   decimal.Decimal
	ShortExposure  decimal.Decimal
	GrossExposure  decimal.Decimal
	NetExposure    decimal.Decimal
	LongShortRatio float64 // +Inf when short exposure is ~0
}

// PerformanceMetrics are the rolling risk/return statistics updated once at
// least four daily data points are available (spec §4.9 step 6). Nil until
// then.
type PerformanceMetrics struct {
	SharpeRatio     *float64
	SortinoRatio    *float64
	MaxDrawdownPct  *float64
	MaxDrawdownDate *time.Time
}

// Result is the full output of one backtest run.
type Result struct {
	Portfolio *models.Portfolio
	Series    []DailyPerformance
	Metrics   PerformanceMetrics
}

// Run replays the configured date range one business day at a time: for each
// day, it fetches the latest close between the previous calendar day and the
// current day (both inclusive) for every ticker in scope, invokes the
// DAG with a 30-day lookback window and the current portfolio snapshot,
// executes the returned per-ticker decisions, and records NLV/exposure.
// Days missing price data for any ticker are skipped entirely (spec §4.9
// step 1). A day on which the DAG itself fails (not an individual analyst —
// that degrades to a neutral signal inside the engine) aborts the backtest,
// returning whatever series was accumulated so far alongside the error.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	start, err := time.Parse(dateLayout, b.StartDate)
	if err != nil {
		return nil, fmt.Errorf("backtest: invalid start date: %w", err)
	}
	end, err := time.Parse(dateLayout, b.EndDate)
	if err != nil {
		return nil, fmt.Errorf("backtest: invalid end date: %w", err)
	}

	portfolio := models.NewPortfolio(b.InitialCash, b.MarginRequirement, b.Tickers)
	result := &Result{Portfolio: portfolio}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		currentDateStr := d.Format(dateLayout)
		lookbackStart := d.AddDate(0, 0, -lookbackDays).Format(dateLayout)
		previousDateStr := d.AddDate(0, 0, -1).Format(dateLayout)

		universe := universeTickers(b.Tickers, portfolio)
		prices, ok := b.fetchClosePrices(ctx, universe, previousDateStr, currentDateStr)
		if !ok {
			continue
		}

		state := models.NewRunState(b.Tickers, portfolio, lookbackStart, currentDateStr, b.ModelName, b.ModelProvider)
		dagResult, err := b.Engine.Run(ctx, state)
		if err != nil {
			return result, fmt.Errorf("backtest: day %s: %w", currentDateStr, err)
		}

		for _, ticker := range b.Tickers {
			decision, ok := dagResult.Decisions[ticker]
			if !ok {
				decision = models.PortfolioDecision{Action: models.ActionHold}
			}
			price, ok := prices[ticker]
			if !ok {
				continue
			}
			ExecuteTrade(portfolio, ticker, decision.Action, decision.Quantity, price)
		}

		day := dailySnapshot(d, portfolio, prices)
		result.Series = append(result.Series, day)

		if len(result.Series) >= 4 {
			result.Metrics = computeMetrics(result.Series)
		}
	}

	return result, nil
}

func dailySnapshot(d time.Time, portfolio *models.Portfolio, prices map[models.Ticker]decimal.Decimal) DailyPerformance {
	nlv := portfolio.NetLiquidationValue(prices)
	exposure := portfolio.Exposure(prices)

	ratio := math.Inf(1)
	if exposure.Short.GreaterThan(decimal.NewFromFloat(1e-9)) {
		ratio = exposure.Long.Div(exposure.Short).InexactFloat64()
	}

	return DailyPerformance{
		Date:           d,
		NLV:            nlv,
		LongExposure:   exposure.Long,
		ShortExposure:  exposure.Short,
		GrossExposure:  exposure.Gross,
		NetExposure:    exposure.Net,
		LongShortRatio: ratio,
	}
}

// fetchClosePrices resolves the latest close for every ticker in universe
// within [start, end]; ok is false if any ticker has no data, in which case
// the caller skips the whole day (spec §4.9 step 1).
func (b *Backtester) fetchClosePrices(ctx context.Context, universe []models.Ticker, start, end string) (map[models.Ticker]decimal.Decimal, bool) {
	prices := make(map[models.Ticker]decimal.Decimal, len(universe))
	for _, ticker := range universe {
		series, err := b.Provider.GetPrices(ctx, ticker, start, end)
		if err != nil || len(series) == 0 {
			return nil, false
		}
		prices[ticker] = series[len(series)-1].Close
	}
	return prices, true
}

// universeTickers is requested tickers plus any ticker already held, deduped
// and order-preserving, mirroring the risk manager's identical union (spec
// §4.9 step 1: "every ticker and every ticker currently held").
func universeTickers(tickers []models.Ticker, portfolio *models.Portfolio) []models.Ticker {
	seen := make(map[models.Ticker]bool, len(tickers))
	out := make([]models.Ticker, 0, len(tickers))
	for _, t := range tickers {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for t, pos := range portfolio.Positions {
		if seen[t] {
			continue
		}
		if pos.LongShares > 0 || pos.ShortShares > 0 {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
