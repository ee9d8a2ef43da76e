package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/dag"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/internal/registry"
)

func testAnalyst(key string, signal models.SignalDirection) registry.Entry {
	return registry.Entry{
		Key:   key,
		Order: 1,
		Fn: func(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
			in.Progress.UpdateStatus(key, in.Data.Tickers[0], "analyzing", "")
			signals := make(models.AnalystSignals)
			for _, t := range in.Data.Tickers {
				signals.Set(key, t, models.AnalystSignal{Signal: signal, Confidence: 70})
			}
			return models.StateDelta{AnalystSignals: signals}, nil
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

func newTestEngine() *dag.Engine {
	bus := progress.New()
	return &dag.Engine{
		Analysts:  []registry.Entry{testAnalyst("technical_analyst", models.Bullish)},
		LLM:       noopLLM{},
		Provider:  noopProvider{},
		Bus:       bus,
		RiskMgr:   dag.RiskManager(noopProvider{}, bus),
		Portfolio: dag.PortfolioManager(noopLLM{}, bus),
	}
}

func collect(t *testing.T, ch <-chan Event, timeout time.Duration) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(timeout)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, evt)
		case <-deadline:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestStreamStartsThenCompletesWithDecisions(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(100000), decimal.Zero, []models.Ticker{"AAPL"})
	state := models.NewRunState([]models.Ticker{"AAPL"}, portfolio, "2024-01-01", "2024-03-01", "test-model", "fake")

	runner := New(newTestEngine())
	events := collect(t, runner.Stream(context.Background(), state), 2*time.Second)

	if len(events) < 2 {
		t.Fatalf("expected at least start+complete, got %d events: %+v", len(events), events)
	}
	if events[0].Type != EventStart {
		t.Fatalf("expected first event to be start, got %v", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventComplete {
		t.Fatalf("expected last event to be complete, got %v: %+v", last.Type, last)
	}
	if _, ok := last.Data.Decisions["AAPL"]; !ok {
		t.Fatalf("expected a decision for AAPL, got %+v", last.Data.Decisions)
	}
	for _, key := range []string{"technical_analyst", "risk_management_agent"} {
		if _, ok := last.Data.AnalystSignals[key]; !ok {
			t.Fatalf("expected analyst_signals to contain %q", key)
		}
	}
}

func TestStreamCancellationEmitsNoTerminalEvent(t *testing.T) {
	portfolio := models.NewPortfolio(decimal.NewFromInt(100000), decimal.Zero, []models.Ticker{"AAPL"})
	state := models.NewRunState([]models.Ticker{"AAPL"}, portfolio, "2024-01-01", "2024-03-01", "test-model", "fake")

	ctx, cancel := context.WithCancel(context.Background())
	runner := New(newTestEngine())
	ch := runner.Stream(ctx, state)

	first := <-ch
	if first.Type != EventStart {
		t.Fatalf("expected start event, got %v", first.Type)
	}
	cancel()

	for evt := range ch {
		if evt.Type == EventComplete || evt.Type == EventError {
			t.Fatalf("expected no terminal event after cancellation, got %v", evt.Type)
		}
	}
}
