// Package app rebuilds cortexfund's long-lived collaborators whenever the
// on-disk configuration changes, adapted from the teacher's pkg/app (which
// backs a cgo bridge for a desktop host; this module has no such bridge, so
// Engine here holds cortexfund's own market-data/model/analyst wiring
// instead of a generic, empty placeholder).
package app

import (
	"sync/atomic"
	"time"

	"github.com/dyike/cortexfund/config"
	"github.com/dyike/cortexfund/internal/analysts"
	"github.com/dyike/cortexfund/internal/dataprovider"
	"github.com/dyike/cortexfund/internal/llmgateway"
	"github.com/dyike/cortexfund/internal/registry"
)

// Engine is the snapshot of every config-derived collaborator cortexfund's
// commands need: the cached, multi-source market-data provider, the LLM
// model registry, and the closed analyst registry. A fresh dag.Engine is
// still built per run/backtest invocation (it also needs a per-run
// progress.Bus and analyst selection), but these three are expensive or
// stateful enough to build once per config generation and reuse.
type Engine struct {
	Config   config.Config
	Provider *dataprovider.CachedProvider
	Models   *llmgateway.Registry
	Analysts *registry.Registry
	BuiltAt  time.Time
	Version  uint64
}

var engineSeq atomic.Uint64

// BuildEngine assembles one Engine from cfg: the generic HTTP upstream
// (when configured) backed by Yahoo for prices and the scraper for news,
// wrapped in the per-ticker cache (spec §4.2); the deepseek/openai model
// registry; and the full four-analyst registry this tree implements.
func BuildEngine(cfg config.Config) (*Engine, error) {
	var primary dataprovider.Provider
	if cfg.DataProviderBaseURL != "" {
		primary = dataprovider.NewHTTPProvider(cfg.DataProviderBaseURL, cfg.DataProviderAPIKey)
	}
	composite := dataprovider.NewCompositeProvider(primary, dataprovider.NewYahooProvider(), dataprovider.NewNewsScraperProvider())

	return &Engine{
		Config:   cfg,
		Provider: dataprovider.NewCachedProvider(composite),
		Models:   llmgateway.NewRegistry(cfg.DeepSeekAPIKey, cfg.OpenAIAPIKey, ""),
		Analysts: analysts.Registered(),
		BuiltAt:  time.Now(),
		Version:  engineSeq.Add(1),
	}, nil
}
