package dataprovider

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/internal/models"
)

type fakeProvider struct {
	priceCalls int
	prices     []models.Price
}

func (f *fakeProvider) GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error) {
	f.priceCalls++
	return f.prices, nil
}
func (f *fakeProvider) GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error) {
	return nil, nil
}
func (f *fakeProvider) SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	return nil, nil
}
func (f *fakeProvider) GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error) {
	return nil, nil
}
func (f *fakeProvider) GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error) {
	return nil, nil
}
func (f *fakeProvider) GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error) {
	return nil, nil
}

func mkPrice(date string) models.Price {
	t, _ := time.Parse("2006-01-02", date)
	return models.Price{Time: t, Close: decimal.NewFromInt(100)}
}

func TestCachedProviderFetchesOnceForCoveredRange(t *testing.T) {
	fake := &fakeProvider{prices: []models.Price{mkPrice("2024-01-01"), mkPrice("2024-01-02"), mkPrice("2024-01-03")}}
	cp := NewCachedProvider(fake)

	if _, err := cp.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-03"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := cp.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-02"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if fake.priceCalls != 1 {
		t.Fatalf("expected 1 upstream call for a subsumed range, got %d", fake.priceCalls)
	}
}

func TestCachedProviderRefetchesForUncoveredRange(t *testing.T) {
	fake := &fakeProvider{prices: []models.Price{mkPrice("2024-01-01")}}
	cp := NewCachedProvider(fake)

	if _, err := cp.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-01"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	fake.prices = append(fake.prices, mkPrice("2024-02-01"))
	if _, err := cp.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-02-01"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if fake.priceCalls != 2 {
		t.Fatalf("expected a second upstream call for the wider range, got %d", fake.priceCalls)
	}
}

func TestCachedProviderIsolatedPerTicker(t *testing.T) {
	fake := &fakeProvider{prices: []models.Price{mkPrice("2024-01-01")}}
	cp := NewCachedProvider(fake)

	if _, err := cp.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-01"); err != nil {
		t.Fatalf("AAPL call: %v", err)
	}
	if _, err := cp.GetPrices(context.Background(), "MSFT", "2024-01-01", "2024-01-01"); err != nil {
		t.Fatalf("MSFT call: %v", err)
	}

	if fake.priceCalls != 2 {
		t.Fatalf("expected separate cache entries per ticker, got %d calls", fake.priceCalls)
	}
}
