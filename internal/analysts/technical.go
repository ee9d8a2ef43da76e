package analysts

import (
	"context"
	"fmt"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

// Technical computes a simple close-to-close momentum score over the
// fetched price window, a single-factor simplification of
// original_source/src/agents/technicals.py's multi-factor momentum strategy
// (price momentum weighted across 1m/3m/6m lookbacks plus a volume
// confirmation filter).
func Technical(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
	signals := make(models.AnalystSignals)

	for _, ticker := range in.Data.Tickers {
		in.Progress.UpdateStatus(consts.AnalystTechnical, ticker, "Fetching price history", "")

		prices, err := in.Provider.GetPrices(ctx, ticker, in.Data.StartDate, in.Data.EndDate)
		if err != nil || len(prices) < 2 {
			signals.Set(consts.AnalystTechnical, ticker, models.NeutralDefault("insufficient price history"))
			in.Progress.UpdateStatus(consts.AnalystTechnical, ticker, "Failed: insufficient price history", "")
			continue
		}

		in.Progress.UpdateStatus(consts.AnalystTechnical, ticker, "Calculating momentum", "")

		first := prices[0].Close
		last := prices[len(prices)-1].Close
		if first.IsZero() {
			signals.Set(consts.AnalystTechnical, ticker, models.NeutralDefault("zero starting price"))
			continue
		}
		momentum := last.Sub(first).Div(first).InexactFloat64()

		overall := models.Neutral
		confidence := 0.0
		switch {
		case momentum > 0.05:
			overall = models.Bullish
			confidence = min(momentum*5, 1.0) * 100
		case momentum < -0.05:
			overall = models.Bearish
			confidence = min(-momentum*5, 1.0) * 100
		}

		signals.Set(consts.AnalystTechnical, ticker, models.AnalystSignal{
			Signal:     overall,
			Confidence: confidence,
			Reasoning:  fmt.Sprintf("period close-to-close return %.2f%%", momentum*100),
		})
		in.Progress.UpdateStatus(consts.AnalystTechnical, ticker, "Done", string(overall))
	}

	return models.StateDelta{NodeID: consts.AnalystTechnical, AnalystSignals: signals}, nil
}
