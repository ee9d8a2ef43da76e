package models

import "github.com/shopspring/decimal"

// Position is one ticker's long/short holding within a Portfolio.
type Position struct {
	LongShares      int64           `json:"long_shares"`
	ShortShares     int64           `json:"short_shares"`
	LongCostBasis   decimal.Decimal `json:"long_cost_basis"`
	ShortCostBasis  decimal.Decimal `json:"short_cost_basis"`
	ShortMarginUsed decimal.Decimal `json:"short_margin_used"`
}

// RealizedGains tracks realized long/short P&L for one ticker.
type RealizedGains struct {
	Long  decimal.Decimal `json:"long"`
	Short decimal.Decimal `json:"short"`
}

// Portfolio is the mutable ledger driven by the backtester's execute-trade
// operation. Cash may go negative only through margin borrowed against short
// positions.
type Portfolio struct {
	Cash              decimal.Decimal            `json:"cash"`
	MarginRequirement decimal.Decimal            `json:"margin_requirement"`
	MarginUsed        decimal.Decimal            `json:"margin_used"`
	Positions         map[Ticker]*Position       `json:"positions"`
	RealizedGains     map[Ticker]*RealizedGains  `json:"realized_gains"`
}

// NewPortfolio builds an empty portfolio seeded with the given starting cash
// and margin requirement, with a position/realized-gains entry for every
// ticker so callers never need a nil-map check.
func NewPortfolio(initialCash decimal.Decimal, marginRequirement decimal.Decimal, tickers []Ticker) *Portfolio {
	p := &Portfolio{
		Cash:              initialCash,
		MarginRequirement: marginRequirement,
		MarginUsed:        decimal.Zero,
		Positions:         make(map[Ticker]*Position, len(tickers)),
		RealizedGains:     make(map[Ticker]*RealizedGains, len(tickers)),
	}
	for _, t := range tickers {
		p.Positions[t] = &Position{
			LongCostBasis:   decimal.Zero,
			ShortCostBasis:  decimal.Zero,
			ShortMarginUsed: decimal.Zero,
		}
		p.RealizedGains[t] = &RealizedGains{Long: decimal.Zero, Short: decimal.Zero}
	}
	return p
}

// Position returns the position for t, creating a zero-value one on first
// access so callers never need to special-case new tickers.
func (p *Portfolio) Position(t Ticker) *Position {
	if pos, ok := p.Positions[t]; ok {
		return pos
	}
	pos := &Position{LongCostBasis: decimal.Zero, ShortCostBasis: decimal.Zero, ShortMarginUsed: decimal.Zero}
	p.Positions[t] = pos
	return pos
}

// Gains returns the realized-gains entry for t, creating a zero one on first
// access.
func (p *Portfolio) Gains(t Ticker) *RealizedGains {
	if g, ok := p.RealizedGains[t]; ok {
		return g
	}
	g := &RealizedGains{Long: decimal.Zero, Short: decimal.Zero}
	p.RealizedGains[t] = g
	return g
}

// NetLiquidationValue is the authoritative portfolio value: cash plus long
// market value minus short market value, evaluated at the given close prices.
// Exposure ratios are always derived from this and the current positions,
// never cached (DESIGN.md Open Question 3).
func (p *Portfolio) NetLiquidationValue(prices map[Ticker]decimal.Decimal) decimal.Decimal {
	nlv := p.Cash
	for t, pos := range p.Positions {
		price, ok := prices[t]
		if !ok {
			continue
		}
		longValue := price.Mul(decimal.NewFromInt(pos.LongShares))
		shortValue := price.Mul(decimal.NewFromInt(pos.ShortShares))
		nlv = nlv.Add(longValue).Sub(shortValue)
	}
	return nlv
}

// Exposure reports gross/net/long/short dollar exposure derived purely from
// current positions and supplied prices.
type Exposure struct {
	Long  decimal.Decimal
	Short decimal.Decimal
	Gross decimal.Decimal
	Net   decimal.Decimal
}

func (p *Portfolio) Exposure(prices map[Ticker]decimal.Decimal) Exposure {
	var long, short decimal.Decimal
	for t, pos := range p.Positions {
		price, ok := prices[t]
		if !ok {
			continue
		}
		long = long.Add(price.Mul(decimal.NewFromInt(pos.LongShares)))
		short = short.Add(price.Mul(decimal.NewFromInt(pos.ShortShares)))
	}
	return Exposure{
		Long:  long,
		Short: short,
		Gross: long.Add(short),
		Net:   long.Sub(short),
	}
}
