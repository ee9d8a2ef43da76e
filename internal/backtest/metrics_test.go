package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func series(values ...float64) []DailyPerformance {
	out := make([]DailyPerformance, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		out[i] = DailyPerformance{Date: base.AddDate(0, 0, i), NLV: decimal.NewFromFloat(v)}
	}
	return out
}

func TestComputeMetricsNeedsAtLeastTwoReturns(t *testing.T) {
	m := computeMetrics(series(100000))
	if m.SharpeRatio != nil {
		t.Fatalf("expected nil metrics with fewer than 2 returns, got %v", m)
	}
}

func TestComputeMetricsFlatSeriesZeroSharpe(t *testing.T) {
	m := computeMetrics(series(100000, 100000, 100000, 100000))
	if m.SharpeRatio == nil || *m.SharpeRatio != 0 {
		t.Fatalf("flat series should have zero sharpe (zero stdev), got %v", m.SharpeRatio)
	}
}

func TestComputeMetricsPositiveTrendHasPositiveSortino(t *testing.T) {
	m := computeMetrics(series(100000, 101000, 102000, 103000))
	if m.SortinoRatio == nil {
		t.Fatal("expected non-nil sortino")
	}
	if !math.IsInf(*m.SortinoRatio, 1) {
		t.Fatalf("a monotonically increasing series has no downside returns, expected +Inf sortino, got %v", *m.SortinoRatio)
	}
}

func TestMaxDrawdownReportsTroughDate(t *testing.T) {
	s := series(100000, 110000, 90000, 95000)
	dd, date := maxDrawdown(s, valuesOf(s))
	if dd >= 0 {
		t.Fatalf("expected negative drawdown, got %v", dd)
	}
	if date == nil || !date.Equal(s[2].Date) {
		t.Fatalf("expected trough at index 2, got %v", date)
	}
}

func valuesOf(s []DailyPerformance) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.NLV.InexactFloat64()
	}
	return out
}
