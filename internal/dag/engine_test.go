package dag

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/internal/registry"
)

func testAnalyst(key string, signal models.SignalDirection) registry.Entry {
	return registry.Entry{
		Key:   key,
		Order: 1,
		Fn: func(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
			signals := make(models.AnalystSignals)
			for _, t := range in.Data.Tickers {
				signals.Set(key, t, models.AnalystSignal{Signal: signal, Confidence: 80})
			}
			return models.StateDelta{AnalystSignals: signals}, nil
		},
	}
}

func panicAnalyst(key string) registry.Entry {
	return registry.Entry{
		Key:   key,
		Order: 2,
		Fn: func(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
			panic("boom")
		},
	}
}

type noopProvider struct{}

func (noopProvider) GetPrices(ctx context.Context, t models.Ticker, start, end string) ([]models.Price, error) {
	return []models.Price{{Close: decimal.NewFromInt(100)}}, nil
}
func (noopProvider) GetFinancialMetrics(ctx context.Context, t models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	return nil, nil
}
func (noopProvider) SearchLineItems(ctx context.Context, t models.Ticker, items []string, endDate, period string, limit int) ([]models.LineItem, error) {
	return nil, nil
}
func (noopProvider) GetInsiderTrades(ctx context.Context, t models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	return nil, nil
}
func (noopProvider) GetCompanyNews(ctx context.Context, t models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	return nil, nil
}
func (noopProvider) GetMarketCap(ctx context.Context, t models.Ticker, endDate string) (*string, error) {
	return nil, nil
}

type noopLLM struct{}

func (noopLLM) CallJSON(ctx context.Context, prompt, agentKey, modelName, modelProvider string, maxRetries int, defaultJSON []byte) ([]byte, error) {
	return defaultJSON, nil
}

func TestEngineRunFanOutAndBarrier(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(100000), decimal.Zero, []models.Ticker{"AAPL"})
	state := models.NewRunState([]models.Ticker{"AAPL"}, portfolio, "2024-01-01", "2024-03-01", "test-model", "fake")

	engine := &Engine{
		Analysts: []registry.Entry{
			testAnalyst("technical_analyst", models.Bullish),
			testAnalyst("fundamentals_analyst", models.Bearish),
		},
		LLM:       noopLLM{},
		Provider:  noopProvider{},
		Bus:       progress.New(),
		RiskMgr:   RiskManager(noopProvider{}, progress.New()),
		Portfolio: PortfolioManager(noopLLM{}, progress.New()),
	}

	result, err := engine.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := result.Decisions["AAPL"]; !ok {
		t.Fatalf("expected a decision for AAPL, got %+v", result.Decisions)
	}

	signals := state.Data.AnalystSignals
	for _, key := range []string{"technical_analyst", "fundamentals_analyst", "risk_management_agent"} {
		if _, ok := signals[key]; !ok {
			t.Fatalf("expected analyst_signals to contain %q, got keys %v", key, signalKeys(signals))
		}
	}
}

func TestEngineRecoversPanickingAnalyst(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(100000), decimal.Zero, []models.Ticker{"MSFT"})
	state := models.NewRunState([]models.Ticker{"MSFT"}, portfolio, "2024-01-01", "2024-03-01", "test-model", "fake")

	engine := &Engine{
		Analysts:  []registry.Entry{panicAnalyst("flaky_analyst")},
		LLM:       noopLLM{},
		Provider:  noopProvider{},
		Bus:       progress.New(),
		RiskMgr:   RiskManager(noopProvider{}, progress.New()),
		Portfolio: PortfolioManager(noopLLM{}, progress.New()),
	}

	result, err := engine.Run(context.Background(), state)
	if err != nil {
		t.Fatalf("a panicking analyst must not fail the run: %v", err)
	}
	sig := result.State.Data.AnalystSignals["flaky_analyst"]["MSFT"]
	if sig.Signal != models.Neutral {
		t.Fatalf("expected neutral default after panic, got %+v", sig)
	}
}

func signalKeys(s models.AnalystSignals) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
