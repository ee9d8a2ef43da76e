package backtest

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// dailyRiskFreeRate and tradingDaysPerYear are fixed by spec §4.9's Sharpe
// and Sortino formulas, grounded on
// original_source/src/backtester.py's _update_performance_metrics.
const (
	dailyRiskFreeRate  = 0.0434 / 252
	tradingDaysPerYear = 252
)

// computeMetrics recomputes Sharpe, Sortino, and max-drawdown from the full
// NLV series using gonum/stat for the mean/stdev building blocks (the same
// library the rest of this corpus's strategy packages use for return
// statistics).
func computeMetrics(series []DailyPerformance) PerformanceMetrics {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.NLV.InexactFloat64()
	}

	returns := dailyReturns(values)
	if len(returns) < 2 {
		return PerformanceMetrics{}
	}

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRiskFreeRate
	}

	mean := stat.Mean(excess, nil)
	std := stat.StdDev(excess, nil)

	sharpe := 0.0
	if std > 1e-12 {
		sharpe = math.Sqrt(tradingDaysPerYear) * (mean / std)
	}

	sortino := sortinoRatio(mean, excess)
	maxDD, maxDDDate := maxDrawdown(series, values)

	return PerformanceMetrics{
		SharpeRatio:     &sharpe,
		SortinoRatio:    &sortino,
		MaxDrawdownPct:  &maxDD,
		MaxDrawdownDate: maxDDDate,
	}
}

func sortinoRatio(mean float64, excess []float64) float64 {
	var negative []float64
	for _, r := range excess {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) == 0 {
		if mean > 0 {
			return math.Inf(1)
		}
		return 0
	}
	downsideStd := stat.StdDev(negative, nil)
	if downsideStd <= 1e-12 {
		if mean > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * (mean / downsideStd)
}

func dailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, (values[i]-values[i-1])/values[i-1])
	}
	return out
}

// maxDrawdown is min((value - running_max) / running_max) reported as a
// percentage, with the date of the trough (spec §4.9).
func maxDrawdown(series []DailyPerformance, values []float64) (float64, *time.Time) {
	if len(values) == 0 {
		return 0, nil
	}
	runningMax := values[0]
	minDrawdown := 0.0
	var troughDate *time.Time

	for i, v := range values {
		if v > runningMax {
			runningMax = v
		}
		if runningMax == 0 {
			continue
		}
		dd := (v - runningMax) / runningMax
		if dd < minDrawdown {
			minDrawdown = dd
			d := series[i].Date
			troughDate = &d
		}
	}
	return minDrawdown * 100, troughDate
}
