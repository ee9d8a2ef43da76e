package analysts

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

// Fundamentals scores profitability, growth, financial health, and price
// ratios off the latest FinancialMetrics row per ticker, grounded on
// original_source/src/agents/fundamentals.py's four-factor threshold scoring.
func Fundamentals(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
	signals := make(models.AnalystSignals)

	for _, ticker := range in.Data.Tickers {
		in.Progress.UpdateStatus(consts.AnalystFundamentals, ticker, "Fetching financial metrics", "")

		metrics, err := in.Provider.GetFinancialMetrics(ctx, ticker, in.Data.EndDate, "ttm", 10)
		if err != nil || len(metrics) == 0 {
			signals.Set(consts.AnalystFundamentals, ticker, models.NeutralDefault("no financial metrics available"))
			in.Progress.UpdateStatus(consts.AnalystFundamentals, ticker, "Failed: no financial metrics found", "")
			continue
		}
		m := metrics[0]

		in.Progress.UpdateStatus(consts.AnalystFundamentals, ticker, "Analyzing fundamentals", "")

		factors := []models.SignalDirection{
			scoreAboveAll(f(m.ReturnOnEquity), 0.15, f(m.NetMargin), 0.20, f(m.OperatingMargin), 0.15),
			scoreAboveAll(f(m.RevenueGrowth), 0.10, f(m.EarningsGrowth), 0.10, f(m.BookValueGrowth), 0.10),
			scoreHealth(m),
			scoreValuationRatios(m),
		}

		overall, confidence := majority(factors)
		sig := models.AnalystSignal{Signal: overall, Confidence: confidence, Reasoning: "profitability, growth, financial health, and valuation ratios scored against fixed thresholds"}
		signals.Set(consts.AnalystFundamentals, ticker, sig)
		in.Progress.UpdateStatus(consts.AnalystFundamentals, ticker, "Done", string(overall))
	}

	return models.StateDelta{NodeID: consts.AnalystFundamentals, AnalystSignals: signals}, nil
}

// f reads a decimal.Decimal field as a plain float64; these are ratio
// thresholds for a heuristic score, not ledger money, so decimal precision
// isn't load-bearing here.
func f(d decimal.Decimal) float64 { return d.InexactFloat64() }

func scoreAboveAll(a, aT, b, bT, c, cT float64) models.SignalDirection {
	score := 0
	if a > aT {
		score++
	}
	if b > bT {
		score++
	}
	if c > cT {
		score++
	}
	if score >= 2 {
		return models.Bullish
	}
	if score == 0 {
		return models.Bearish
	}
	return models.Neutral
}

func scoreHealth(m models.FinancialMetrics) models.SignalDirection {
	score := 0
	if f(m.CurrentRatio) > 1.5 {
		score++
	}
	if de := f(m.DebtToEquity); de > 0 && de < 0.5 {
		score++
	}
	if f(m.FreeCashFlowPerShare) > f(m.EarningsPerShare)*0.8 {
		score++
	}
	if score >= 2 {
		return models.Bullish
	}
	if score == 0 {
		return models.Bearish
	}
	return models.Neutral
}

// scoreValuationRatios inverts the usual "above threshold" polarity: cheap
// multiples are bullish, expensive ones bearish.
func scoreValuationRatios(m models.FinancialMetrics) models.SignalDirection {
	score := 0
	if f(m.PriceToEarningsRatio) > 25 {
		score++
	}
	if f(m.PriceToBookRatio) > 3 {
		score++
	}
	if f(m.PriceToSalesRatio) > 5 {
		score++
	}
	if score >= 2 {
		return models.Bearish
	}
	if score == 0 {
		return models.Bullish
	}
	return models.Neutral
}
