package analysts

import (
	"context"
	"fmt"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

// Sentiment reads recent insider trades and calls negative transaction
// share counts bearish, non-negative ones (zero included) bullish, grounded on
// original_source/src/agents/sentiment.py.
func Sentiment(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
	signals := make(models.AnalystSignals)

	for _, ticker := range in.Data.Tickers {
		in.Progress.UpdateStatus(consts.AnalystSentiment, ticker, "Fetching insider trades", "")

		trades, err := in.Provider.GetInsiderTrades(ctx, ticker, in.Data.EndDate, "", 5)
		if err != nil || len(trades) == 0 {
			signals.Set(consts.AnalystSentiment, ticker, models.NeutralDefault("no insider trades available"))
			in.Progress.UpdateStatus(consts.AnalystSentiment, ticker, "Failed: no insider trades found", "")
			continue
		}

		var bullish, bearish int
		for _, t := range trades {
			if t.TransactionShares.IsNegative() {
				bearish++
			} else {
				bullish++
			}
		}

		overall := models.Neutral
		switch {
		case bullish > bearish:
			overall = models.Bullish
		case bearish > bullish:
			overall = models.Bearish
		}
		total := bullish + bearish
		confidence := 0.0
		if total > 0 {
			max := bullish
			if bearish > max {
				max = bearish
			}
			confidence = float64(max) / float64(total) * 100
		}

		signals.Set(consts.AnalystSentiment, ticker, models.AnalystSignal{
			Signal:     overall,
			Confidence: confidence,
			Reasoning:  fmt.Sprintf("bullish insider signals: %d, bearish insider signals: %d", bullish, bearish),
		})
		in.Progress.UpdateStatus(consts.AnalystSentiment, ticker, "Done", string(overall))
	}

	return models.StateDelta{NodeID: consts.AnalystSentiment, AnalystSignals: signals}, nil
}
