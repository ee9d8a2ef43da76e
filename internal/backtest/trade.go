// Package backtest implements the Backtester (C9): a day-by-day replay of
// the analyst DAG against a long/short, margin-aware portfolio ledger.
package backtest

import (
	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/models"
)

// ExecuteTrade applies one decision to portfolio at current market price,
// grounded line-for-line on original_source/src/backtester.py's
// Backtester.execute_trade. Quantity is floored to a non-negative integer
// before any check (spec §4.9 "Integer-shares rule"); the portfolio is
// mutated in place and the actually-executed quantity is returned (which
// may be less than requested when cash or margin is insufficient).
func ExecuteTrade(p *models.Portfolio, ticker models.Ticker, action models.TradeAction, quantity int64, price decimal.Decimal) int64 {
	if quantity <= 0 {
		return 0
	}
	pos := p.Position(ticker)

	switch action {
	case models.ActionBuy:
		return executeBuy(p, pos, quantity, price)
	case models.ActionSell:
		return executeSell(p, pos, ticker, quantity, price, p.Gains(ticker))
	case models.ActionShort:
		return executeShort(p, pos, quantity, price)
	case models.ActionCover:
		return executeCover(p, pos, ticker, quantity, price, p.Gains(ticker))
	default:
		// hold, or any unrecognized action: no-op.
		return 0
	}
}

func executeBuy(p *models.Portfolio, pos *models.Position, quantity int64, price decimal.Decimal) int64 {
	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.LessThanOrEqual(p.Cash) {
		applyLongCostBasis(pos, quantity, cost)
		pos.LongShares += quantity
		p.Cash = p.Cash.Sub(cost)
		return quantity
	}

	maxQuantity := p.Cash.Div(price).IntPart()
	if maxQuantity <= 0 {
		return 0
	}
	maxCost := price.Mul(decimal.NewFromInt(maxQuantity))
	applyLongCostBasis(pos, maxQuantity, maxCost)
	pos.LongShares += maxQuantity
	p.Cash = p.Cash.Sub(maxCost)
	return maxQuantity
}

// applyLongCostBasis folds newShares at totalNewCost into the
// weighted-average long cost basis.
func applyLongCostBasis(pos *models.Position, newShares int64, totalNewCost decimal.Decimal) {
	oldShares := pos.LongShares
	totalShares := oldShares + newShares
	if totalShares <= 0 {
		return
	}
	totalOldCost := pos.LongCostBasis.Mul(decimal.NewFromInt(oldShares))
	pos.LongCostBasis = totalOldCost.Add(totalNewCost).Div(decimal.NewFromInt(totalShares))
}

func executeSell(p *models.Portfolio, pos *models.Position, ticker models.Ticker, quantity int64, price decimal.Decimal, gains *models.RealizedGains) int64 {
	if quantity > pos.LongShares {
		quantity = pos.LongShares
	}
	if quantity <= 0 {
		return 0
	}

	avgCost := pos.LongCostBasis
	realized := price.Sub(avgCost).Mul(decimal.NewFromInt(quantity))
	gains.Long = gains.Long.Add(realized)

	pos.LongShares -= quantity
	p.Cash = p.Cash.Add(price.Mul(decimal.NewFromInt(quantity)))

	if pos.LongShares == 0 {
		pos.LongCostBasis = decimal.Zero
	}
	return quantity
}

func executeShort(p *models.Portfolio, pos *models.Position, quantity int64, price decimal.Decimal) int64 {
	proceeds := price.Mul(decimal.NewFromInt(quantity))
	marginRequired := proceeds.Mul(p.MarginRequirement)

	if marginRequired.LessThanOrEqual(p.Cash) {
		applyShortCostBasis(pos, quantity, proceeds)
		pos.ShortShares += quantity
		pos.ShortMarginUsed = pos.ShortMarginUsed.Add(marginRequired)
		p.MarginUsed = p.MarginUsed.Add(marginRequired)
		p.Cash = p.Cash.Add(proceeds).Sub(marginRequired)
		return quantity
	}

	if p.MarginRequirement.IsZero() {
		return 0
	}
	maxQuantity := p.Cash.Div(price.Mul(p.MarginRequirement)).IntPart()
	if maxQuantity <= 0 {
		return 0
	}
	maxProceeds := price.Mul(decimal.NewFromInt(maxQuantity))
	maxMarginRequired := maxProceeds.Mul(p.MarginRequirement)

	applyShortCostBasis(pos, maxQuantity, maxProceeds)
	pos.ShortShares += maxQuantity
	pos.ShortMarginUsed = pos.ShortMarginUsed.Add(maxMarginRequired)
	p.MarginUsed = p.MarginUsed.Add(maxMarginRequired)
	p.Cash = p.Cash.Add(maxProceeds).Sub(maxMarginRequired)
	return maxQuantity
}

// applyShortCostBasis folds newShares sold short at totalNewProceeds into
// the weighted-average short cost basis.
func applyShortCostBasis(pos *models.Position, newShares int64, totalNewProceeds decimal.Decimal) {
	oldShares := pos.ShortShares
	totalShares := oldShares + newShares
	if totalShares <= 0 {
		return
	}
	totalOldCost := pos.ShortCostBasis.Mul(decimal.NewFromInt(oldShares))
	pos.ShortCostBasis = totalOldCost.Add(totalNewProceeds).Div(decimal.NewFromInt(totalShares))
}

func executeCover(p *models.Portfolio, pos *models.Position, ticker models.Ticker, quantity int64, price decimal.Decimal, gains *models.RealizedGains) int64 {
	if quantity > pos.ShortShares {
		quantity = pos.ShortShares
	}
	if quantity <= 0 {
		return 0
	}

	coverCost := price.Mul(decimal.NewFromInt(quantity))
	avgShortPrice := pos.ShortCostBasis
	realized := avgShortPrice.Sub(price).Mul(decimal.NewFromInt(quantity))

	portion := decimal.NewFromInt(1)
	if pos.ShortShares > 0 {
		portion = decimal.NewFromInt(quantity).Div(decimal.NewFromInt(pos.ShortShares))
	}
	marginToRelease := portion.Mul(pos.ShortMarginUsed)

	pos.ShortShares -= quantity
	pos.ShortMarginUsed = pos.ShortMarginUsed.Sub(marginToRelease)
	p.MarginUsed = p.MarginUsed.Sub(marginToRelease)

	p.Cash = p.Cash.Add(marginToRelease).Sub(coverCost)
	gains.Short = gains.Short.Add(realized)

	if pos.ShortShares == 0 {
		pos.ShortCostBasis = decimal.Zero
		pos.ShortMarginUsed = decimal.Zero
	}
	return quantity
}
