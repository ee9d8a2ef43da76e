package dag

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/internal/registry"
)

// positionLimit is the fixed fraction of net liquidation value a single
// ticker may use, grounded on original_source/src/agents/risk_manager.py's
// "position_limit = total_portfolio_value * 0.20".
const positionLimit = 0.20

// RiskManager computes a remaining position limit per ticker off current
// market prices and the portfolio's net liquidation value, the fixed risk
// node between the analyst fan-in barrier and the portfolio manager.
func RiskManager(provider registry.DataProvider, bus *progress.Bus) RiskManagerFunc {
	return func(ctx context.Context, data models.RunData, meta models.RunMetadata) (models.StateDelta, RiskLimits, error) {
		prices := make(map[models.Ticker]decimal.Decimal)
		universe := universeTickers(data)

		for _, ticker := range universe {
			progressAdapter{bus: bus}.UpdateStatus(consts.NodeRiskManagement, ticker, "Fetching price data", "")
			series, err := provider.GetPrices(ctx, ticker, data.StartDate, data.EndDate)
			if err != nil || len(series) == 0 {
				progressAdapter{bus: bus}.UpdateStatus(consts.NodeRiskManagement, ticker, "Warning: no price data found", "")
				continue
			}
			prices[ticker] = series[len(series)-1].Close
		}

		nlv := decimal.Zero
		if data.Portfolio != nil {
			nlv = data.Portfolio.NetLiquidationValue(prices)
		}

		signals := make(models.AnalystSignals)
		limits := make(RiskLimits, len(data.Tickers))
		for _, ticker := range data.Tickers {
			progressAdapter{bus: bus}.UpdateStatus(consts.NodeRiskManagement, ticker, "Calculating position limits", "")

			price, ok := prices[ticker]
			if !ok {
				signals.Set(consts.NodeRiskManagement, ticker, models.AnalystSignal{
					Signal:    models.Neutral,
					Reasoning: "missing price data for risk calculation",
				})
				limits[ticker] = decimal.Zero
				continue
			}

			var currentExposure decimal.Decimal
			if data.Portfolio != nil {
				pos := data.Portfolio.Position(ticker)
				longValue := decimal.NewFromInt(pos.LongShares).Mul(price)
				shortValue := decimal.NewFromInt(pos.ShortShares).Mul(price)
				currentExposure = longValue.Sub(shortValue).Abs()
			}

			limit := nlv.Mul(decimal.NewFromFloat(positionLimit))
			remaining := limit.Sub(currentExposure)
			cash := decimal.Zero
			if data.Portfolio != nil {
				cash = data.Portfolio.Cash
			}
			if remaining.GreaterThan(cash) {
				remaining = cash
			}

			limits[ticker] = remaining
			signals.Set(consts.NodeRiskManagement, ticker, models.AnalystSignal{
				Signal:     models.Neutral,
				Confidence: 0,
				Reasoning:  remaining.StringFixed(2) + " remaining position limit at " + price.StringFixed(2),
			})
			progressAdapter{bus: bus}.UpdateStatus(consts.NodeRiskManagement, ticker, "Done", "")
		}

		return models.StateDelta{NodeID: consts.NodeRiskManagement, AnalystSignals: signals}, limits, nil
	}
}

// universeTickers is the run's tickers plus any ticker already held in the
// portfolio, mirroring the reference risk manager's
// "set(tickers) | set(portfolio.positions.keys())".
func universeTickers(data models.RunData) []models.Ticker {
	seen := make(map[models.Ticker]bool)
	var out []models.Ticker
	for _, t := range data.Tickers {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if data.Portfolio != nil {
		for t := range data.Portfolio.Positions {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
