package models

// PortfolioDecision is the portfolio manager's per-ticker trade instruction,
// carried from the original Python `PortfolioManagerOutput`/`PortfolioDecision`
// pair (original_source/src/agents/portfolio_manager.py) into a single flat
// Go struct since Go has no analogous nested-output wrapper idiom here.
type PortfolioDecision struct {
	Action     TradeAction `json:"action"`
	Quantity   int64       `json:"quantity"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// RunDecisions is the portfolio manager's output for one run: one decision
// per ticker.
type RunDecisions map[Ticker]PortfolioDecision
