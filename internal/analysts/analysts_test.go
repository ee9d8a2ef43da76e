package analysts

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

type fakeProvider struct {
	metrics []models.FinancialMetrics
	prices  []models.Price
	trades  []models.InsiderTrade
}

func (f *fakeProvider) GetPrices(ctx context.Context, t models.Ticker, start, end string) ([]models.Price, error) {
	return f.prices, nil
}
func (f *fakeProvider) GetFinancialMetrics(ctx context.Context, t models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	return f.metrics, nil
}
func (f *fakeProvider) SearchLineItems(ctx context.Context, t models.Ticker, items []string, endDate, period string, limit int) ([]models.LineItem, error) {
	return nil, nil
}
func (f *fakeProvider) GetInsiderTrades(ctx context.Context, t models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	return f.trades, nil
}
func (f *fakeProvider) GetCompanyNews(ctx context.Context, t models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	return nil, nil
}
func (f *fakeProvider) GetMarketCap(ctx context.Context, t models.Ticker, endDate string) (*string, error) {
	return nil, nil
}

type fakeProgress struct{ events []string }

func (p *fakeProgress) UpdateStatus(agentKey string, ticker models.Ticker, status, analysis string) {
	p.events = append(p.events, status)
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestFundamentalsBullishOnStrongMetrics(t *testing.T) {
	provider := &fakeProvider{metrics: []models.FinancialMetrics{{
		ReturnOnEquity:       dec(0.20),
		NetMargin:            dec(0.25),
		OperatingMargin:      dec(0.20),
		RevenueGrowth:        dec(0.15),
		EarningsGrowth:       dec(0.15),
		BookValueGrowth:      dec(0.15),
		CurrentRatio:         dec(2.0),
		DebtToEquity:         dec(0.2),
		FreeCashFlowPerShare: dec(5.0),
		EarningsPerShare:     dec(4.0),
		PriceToEarningsRatio: dec(10),
		PriceToBookRatio:     dec(1.5),
		PriceToSalesRatio:    dec(2),
	}}}
	prog := &fakeProgress{}
	in := registry.AnalystInput{
		AgentKey: "fundamentals_analyst",
		Data:     models.RunData{Tickers: []models.Ticker{"AAPL"}, EndDate: "2024-01-01"},
		Provider: provider,
		Progress: prog,
	}

	delta, err := Fundamentals(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := delta.AnalystSignals["fundamentals_analyst"]["AAPL"]
	if sig.Signal != models.Bullish {
		t.Fatalf("expected bullish, got %s", sig.Signal)
	}
}

func TestFundamentalsNeutralDefaultOnMissingMetrics(t *testing.T) {
	provider := &fakeProvider{}
	prog := &fakeProgress{}
	in := registry.AnalystInput{
		Data:     models.RunData{Tickers: []models.Ticker{"AAPL"}},
		Provider: provider,
		Progress: prog,
	}

	delta, err := Fundamentals(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := delta.AnalystSignals["fundamentals_analyst"]["AAPL"]
	if sig.Signal != models.Neutral || sig.Confidence != 0 {
		t.Fatalf("expected neutral default, got %+v", sig)
	}
}

func TestSentimentCountsInsiderDirection(t *testing.T) {
	provider := &fakeProvider{trades: []models.InsiderTrade{
		{TransactionShares: dec(100)},
		{TransactionShares: dec(50)},
		{TransactionShares: dec(-10)},
	}}
	in := registry.AnalystInput{
		Data:     models.RunData{Tickers: []models.Ticker{"MSFT"}},
		Provider: provider,
		Progress: &fakeProgress{},
	}

	delta, err := Sentiment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := delta.AnalystSignals["sentiment_analyst"]["MSFT"]
	if sig.Signal != models.Bullish {
		t.Fatalf("expected bullish (2 bullish vs 1 bearish), got %s", sig.Signal)
	}
}

func TestTechnicalMomentumDirection(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{prices: []models.Price{
		{Time: base, Close: dec(100)},
		{Time: base.AddDate(0, 0, 30), Close: dec(120)},
	}}
	in := registry.AnalystInput{
		Data:     models.RunData{Tickers: []models.Ticker{"NVDA"}, StartDate: "2024-01-01", EndDate: "2024-01-31"},
		Provider: provider,
		Progress: &fakeProgress{},
	}

	delta, err := Technical(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := delta.AnalystSignals["technical_analyst"]["NVDA"]
	if sig.Signal != models.Bullish {
		t.Fatalf("expected bullish momentum, got %s", sig.Signal)
	}
}

type fakeLLM struct {
	response []byte
	err      error
}

func (f *fakeLLM) CallJSON(ctx context.Context, prompt, agentKey, modelName, modelProvider string, maxRetries int, defaultJSON []byte) ([]byte, error) {
	if f.err != nil {
		return defaultJSON, nil
	}
	return f.response, nil
}

func TestWarrenBuffettUsesLLMVerdict(t *testing.T) {
	provider := &fakeProvider{metrics: []models.FinancialMetrics{{ReturnOnEquity: dec(0.2)}}}
	llm := &fakeLLM{response: []byte(`{"signal":"bullish","confidence":85,"reasoning":"wonderful moat"}`)}
	in := registry.AnalystInput{
		Data:     models.RunData{Tickers: []models.Ticker{"KO"}, EndDate: "2024-01-01"},
		Metadata: models.RunMetadata{ModelName: "deepseek-chat", ModelProvider: "deepseek", AgentModels: map[string]string{}},
		Provider: provider,
		LLM:      llm,
		Progress: &fakeProgress{},
	}

	delta, err := WarrenBuffett(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := delta.AnalystSignals["warren_buffett"]["KO"]
	if sig.Signal != models.Bullish || sig.Confidence != 85 {
		t.Fatalf("unexpected signal: %+v", sig)
	}
}
