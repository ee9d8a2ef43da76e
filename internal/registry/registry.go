// Package registry is the closed mapping from analyst key to analyst
// function (Design Notes §9: "dynamic dispatch over analyst set" modeled as
// registry: key → {display_name, analyst_fn}; selection is requested ∩
// registry.keys()).
package registry

import (
	"context"

	"github.com/dyike/cortexfund/internal/models"
)

// DataProvider is the subset of internal/dataprovider.Provider an analyst
// body needs. Defined here (not imported) so registry has no dependency on
// the dataprovider package's HTTP/cache internals — any Provider
// implementation satisfies this structurally.
type DataProvider interface {
	GetPrices(ctx context.Context, ticker models.Ticker, start, end string) ([]models.Price, error)
	GetFinancialMetrics(ctx context.Context, ticker models.Ticker, endDate, period string, limit int) ([]models.FinancialMetrics, error)
	SearchLineItems(ctx context.Context, ticker models.Ticker, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error)
	GetInsiderTrades(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.InsiderTrade, error)
	GetCompanyNews(ctx context.Context, ticker models.Ticker, endDate, startDate string, limit int) ([]models.CompanyNews, error)
	GetMarketCap(ctx context.Context, ticker models.Ticker, endDate string) (*string, error)
}

// LLMCaller is the subset of internal/llmgateway.Gateway an analyst body
// needs, kept schema-agnostic via a JSON-bytes contract so registry doesn't
// need the gateway's generic type parameters.
type LLMCaller interface {
	CallJSON(ctx context.Context, prompt, agentKey, modelName, modelProvider string, maxRetries int, defaultJSON []byte) ([]byte, error)
}

// ProgressReporter is the subset of internal/progress.Bus an analyst uses to
// report its own status.
type ProgressReporter interface {
	UpdateStatus(agentKey string, ticker models.Ticker, status, analysis string)
}

// AnalystInput is everything a pure analyst function receives: the current
// state snapshot plus its external collaborators (spec §1: LLM and data
// provider are interfaces only, consumed not owned by the analyst body).
type AnalystInput struct {
	AgentKey string
	Data     models.RunData
	Metadata models.RunMetadata
	LLM      LLMCaller
	Provider DataProvider
	Progress ProgressReporter
}

// AnalystFunc is a pure function: (shared_data, agent_config) → signal,
// returning a StateDelta so the engine can merge it per the shared-state
// merge rule.
type AnalystFunc func(ctx context.Context, in AnalystInput) (models.StateDelta, error)

// Entry is one registered analyst.
type Entry struct {
	Key         string
	DisplayName string
	Order       int
	Fn          AnalystFunc
}

// Registry is the closed set of known analyst keys.
type Registry struct {
	entries map[string]Entry
}

// New builds a Registry from entries.
func New(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Key] = e
	}
	return r
}

// Lookup returns the entry for key and whether it exists.
func (r *Registry) Lookup(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Intersect filters requested against the registry, silently dropping
// unknown keys (spec §4.4: "unknown keys are silently dropped"), and returns
// the surviving entries ordered by their registered Order.
func (r *Registry) Intersect(requested []string) []Entry {
	seen := make(map[string]bool, len(requested))
	out := make([]Entry, 0, len(requested))
	for _, key := range requested {
		if seen[key] {
			continue
		}
		seen[key] = true
		if e, ok := r.entries[key]; ok {
			out = append(out, e)
		}
	}
	sortByOrder(out)
	return out
}

func sortByOrder(entries []Entry) {
	for i := 1; i < len(entries); i++ {
		j := i
		for j > 0 && entries[j-1].Order > entries[j].Order {
			entries[j-1], entries[j] = entries[j], entries[j-1]
			j--
		}
	}
}

// Keys returns every registered key, in Order.
func (r *Registry) Keys() []string {
	all := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	sortByOrder(all)
	keys := make([]string, len(all))
	for i, e := range all {
		keys[i] = e.Key
	}
	return keys
}
