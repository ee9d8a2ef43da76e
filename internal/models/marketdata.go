package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is one OHLCV bar for a ticker.
type Price struct {
	Ticker    Ticker          `json:"ticker"`
	Time      time.Time       `json:"time"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// FinancialMetrics is one reporting-period snapshot of derived ratios.
type FinancialMetrics struct {
	Ticker                 Ticker          `json:"ticker"`
	ReportPeriod           string          `json:"report_period"`
	Period                 string          `json:"period"` // "annual" | "quarterly" | "ttm"
	Currency               string          `json:"currency"`
	MarketCap              decimal.Decimal `json:"market_cap"`
	PriceToEarningsRatio   decimal.Decimal `json:"price_to_earnings_ratio"`
	PriceToBookRatio       decimal.Decimal `json:"price_to_book_ratio"`
	PriceToSalesRatio      decimal.Decimal `json:"price_to_sales_ratio"`
	ReturnOnEquity         decimal.Decimal `json:"return_on_equity"`
	DebtToEquity           decimal.Decimal `json:"debt_to_equity"`
	OperatingMargin        decimal.Decimal `json:"operating_margin"`
	NetMargin              decimal.Decimal `json:"net_margin"`
	CurrentRatio           decimal.Decimal `json:"current_ratio"`
	FreeCashFlowPerShare   decimal.Decimal `json:"free_cash_flow_per_share"`
	EarningsPerShare       decimal.Decimal `json:"earnings_per_share"`
	RevenueGrowth          decimal.Decimal `json:"revenue_growth"`
	EarningsGrowth         decimal.Decimal `json:"earnings_growth"`
	BookValueGrowth        decimal.Decimal `json:"book_value_growth"`
}

// LineItem is a single requested financial-statement field for a period.
type LineItem struct {
	Ticker       Ticker                     `json:"ticker"`
	ReportPeriod string                     `json:"report_period"`
	Period       string                     `json:"period"`
	Currency     string                     `json:"currency"`
	Values       map[string]decimal.Decimal `json:"values"`
}

// InsiderTrade is a single reported insider transaction.
type InsiderTrade struct {
	Ticker           Ticker          `json:"ticker"`
	InsiderName      string          `json:"insider_name"`
	Title            string          `json:"title"`
	TransactionDate  time.Time       `json:"transaction_date"`
	TransactionShares decimal.Decimal `json:"transaction_shares"`
	TransactionPrice decimal.Decimal `json:"transaction_price"`
	SharesOwnedAfter decimal.Decimal `json:"shares_owned_after"`
	FilingDate       time.Time       `json:"filing_date"`
}

// CompanyNews is a single news item about a ticker.
type CompanyNews struct {
	Ticker      Ticker    `json:"ticker"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date"`
	Sentiment   string    `json:"sentiment,omitempty"`
}
