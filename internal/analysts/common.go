// Package analysts holds illustrative analyst bodies matching
// internal/registry.AnalystFunc. Real investing heuristics are out of this
// project's scope; these exist to exercise the DAG engine, the data
// provider, and the LLM gateway end to end with behavior grounded on the
// upstream reference implementation's own agents.
package analysts

import (
	"github.com/dyike/cortexfund/internal/models"
)

// majority turns a slate of per-factor signals into one overall signal and a
// confidence percentage, grounded on the reference fundamentals/sentiment
// agents' identical bullish/bearish counting + "max(b,s)/total" confidence.
func majority(signals []models.SignalDirection) (models.SignalDirection, float64) {
	var bullish, bearish int
	for _, s := range signals {
		switch s {
		case models.Bullish:
			bullish++
		case models.Bearish:
			bearish++
		}
	}
	total := len(signals)
	if total == 0 {
		return models.Neutral, 0
	}

	overall := models.Neutral
	switch {
	case bullish > bearish:
		overall = models.Bullish
	case bearish > bullish:
		overall = models.Bearish
	}

	max := bullish
	if bearish > max {
		max = bearish
	}
	confidence := float64(max) / float64(total) * 100
	return overall, confidence
}
