// Package models holds the data types shared across the analyst DAG,
// the streaming runner, the repository, and the backtester.
package models

// Ticker is an opaque equity symbol. Equality is Go's native case-sensitive
// string comparison.
type Ticker string

// SignalDirection is an analyst's directional call.
type SignalDirection string

const (
	Bullish SignalDirection = "bullish"
	Bearish SignalDirection = "bearish"
	Neutral SignalDirection = "neutral"
)

// TradeAction is the portfolio manager's per-ticker instruction.
type TradeAction string

const (
	ActionBuy   TradeAction = "buy"
	ActionSell  TradeAction = "sell"
	ActionHold  TradeAction = "hold"
	ActionShort TradeAction = "short"
	ActionCover TradeAction = "cover"
)
