package dataprovider

import (
	"context"
	"testing"

	"github.com/dyike/cortexfund/internal/models"
)

func TestCompositeProviderFallsBackToBackupPrices(t *testing.T) {
	primary := &fakeProvider{} // returns no prices
	backup := &fakeProvider{prices: []models.Price{mkPrice("2024-01-02")}}

	c := NewCompositeProvider(primary, backup, nil)
	prices, err := c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("expected fallback to supply 1 price, got %d", len(prices))
	}
	if primary.priceCalls != 1 {
		t.Fatalf("expected primary to be tried once, got %d calls", primary.priceCalls)
	}
}

func TestCompositeProviderPrefersPrimaryPrices(t *testing.T) {
	primary := &fakeProvider{prices: []models.Price{mkPrice("2024-01-02"), mkPrice("2024-01-03")}}
	backup := &fakeProvider{prices: []models.Price{mkPrice("2024-01-02")}}

	c := NewCompositeProvider(primary, backup, nil)
	prices, err := c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected primary's 2 prices, got %d", len(prices))
	}
}

func TestCompositeProviderNilPrimaryUsesBackupOnly(t *testing.T) {
	backup := &fakeProvider{prices: []models.Price{mkPrice("2024-01-02")}}
	c := NewCompositeProvider(nil, backup, nil)

	prices, err := c.GetPrices(context.Background(), "AAPL", "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("expected 1 price from backup, got %d", len(prices))
	}

	metrics, err := c.GetFinancialMetrics(context.Background(), "AAPL", "2024-01-31", "annual", 4)
	if err != nil || metrics != nil {
		t.Fatalf("expected nil metrics with no primary, got %v, %v", metrics, err)
	}
}
