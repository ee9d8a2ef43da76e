// Package dag hand-rolls the analyst fan-out / risk-portfolio fan-in
// pipeline (C4) over internal/models.RunState (C5). The teacher's own eino
// graph wiring (internal/graph/builder.go) never exercises a
// multi-predecessor edge — AddEdge(analyst, riskManager) for N analysts is
// commented out everywhere in the corpus — so the barrier here is built with
// stdlib sync instead of compose.Graph, while eino's model.ChatModel still
// does every actual model call through internal/llmgateway.
package dag

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/internal/registry"
)

// RiskLimits is the risk manager's remaining-position-limit-per-ticker
// output, carried to the portfolio manager as typed numbers rather than
// parsed back out of the AnalystSignal.Reasoning string that also records
// it for the run transcript — Go's stricter typing makes the out-of-band
// channel preferable to the reference implementation's loosely-typed dict
// reads (original_source/src/agents/portfolio_manager.py reads
// analyst_signals["risk_management_agent"][ticker]["max_position_size"]
// directly out of the same untyped state dict the signal was written to).
type RiskLimits map[models.Ticker]decimal.Decimal

// RiskManagerFunc produces the run's risk-adjusted position limits once
// every analyst signal is in. PortfolioManagerFunc turns those limits plus
// the signal set into per-ticker trade decisions.
type RiskManagerFunc func(ctx context.Context, data models.RunData, meta models.RunMetadata) (models.StateDelta, RiskLimits, error)
type PortfolioManagerFunc func(ctx context.Context, data models.RunData, meta models.RunMetadata, limits RiskLimits) (models.RunDecisions, models.StateDelta, error)

// Engine runs one hedge-fund DAG: N analysts in parallel, a risk manager
// barrier, then a sequential portfolio manager.
type Engine struct {
	Analysts  []registry.Entry
	LLM       registry.LLMCaller
	Provider  registry.DataProvider
	Bus       *progress.Bus
	RiskMgr   RiskManagerFunc
	Portfolio PortfolioManagerFunc
}

// ErrEngineFailure is returned only for catastrophic, non-recoverable
// failures (e.g. the risk manager itself erroring); individual analyst
// failures never reach this — they degrade to a neutral default signal
// instead, per spec §4.4.
type ErrEngineFailure struct {
	Stage string
	Err   error
}

func (e *ErrEngineFailure) Error() string {
	return fmt.Sprintf("dag: %s stage failed: %v", e.Stage, e.Err)
}

func (e *ErrEngineFailure) Unwrap() error { return e.Err }

// Result is everything the streaming runner needs once a run completes.
type Result struct {
	Decisions models.RunDecisions
	State     *models.RunState
}

// Run fans out the selected analysts concurrently, merges their signals
// into state through the single mutator goroutine (the caller's own
// goroutine, synchronized by a WaitGroup barrier), then runs the risk
// manager and portfolio manager sequentially.
func (e *Engine) Run(ctx context.Context, state *models.RunState) (Result, error) {
	deltas := make(chan models.StateDelta, len(e.Analysts))
	var wg sync.WaitGroup

	data, meta := state.Snapshot()

	for _, entry := range e.Analysts {
		wg.Add(1)
		go func(entry registry.Entry) {
			defer wg.Done()
			deltas <- e.runAnalyst(ctx, entry, data, meta)
		}(entry)
	}

	go func() {
		wg.Wait()
		close(deltas)
	}()

	// state is mutated only here, in the goroutine draining deltas — the
	// single-mutator discipline Design Notes §9 requires.
	for delta := range deltas {
		state.Apply(delta)
	}

	select {
	case <-ctx.Done():
		return Result{}, &ErrEngineFailure{Stage: "analysts", Err: ctx.Err()}
	default:
	}

	riskData, riskMeta := state.Snapshot()
	riskDelta, limits, err := e.RiskMgr(ctx, riskData, riskMeta)
	if err != nil {
		return Result{}, &ErrEngineFailure{Stage: consts.NodeRiskManagement, Err: err}
	}
	riskDelta.NodeID = consts.NodeRiskManagement
	state.Apply(riskDelta)

	pmData, pmMeta := state.Snapshot()
	decisions, pmDelta, err := e.Portfolio(ctx, pmData, pmMeta, limits)
	if err != nil {
		return Result{}, &ErrEngineFailure{Stage: consts.NodePortfolioManager, Err: err}
	}
	pmDelta.NodeID = consts.NodePortfolioManager
	state.Apply(pmDelta)

	return Result{Decisions: decisions, State: state}, nil
}

// runAnalyst invokes one analyst entry, recovering from a panic and
// converting both panics and returned errors into an "Error: ..." progress
// event, a neutral-default signal for every ticker in scope and a message
// noting the failure, rather than failing the run (spec §4.4).
func (e *Engine) runAnalyst(ctx context.Context, entry registry.Entry, data models.RunData, meta models.RunMetadata) (delta models.StateDelta) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("panic: %v", r)
			progressAdapter{bus: e.Bus}.UpdateStatus(entry.Key, "", "Error: "+reason, "")
			delta = neutralDeltaForPanic(entry.Key, data.Tickers, reason)
		}
	}()

	in := registry.AnalystInput{
		AgentKey: entry.Key,
		Data:     data,
		Metadata: meta,
		LLM:      e.LLM,
		Provider: e.Provider,
		Progress: progressAdapter{bus: e.Bus},
	}

	out, err := entry.Fn(ctx, in)
	if err != nil {
		progressAdapter{bus: e.Bus}.UpdateStatus(entry.Key, "", "Error: "+err.Error(), "")
		return neutralDeltaForPanic(entry.Key, data.Tickers, err.Error())
	}
	if out.NodeID == "" {
		out.NodeID = entry.Key
	}
	return out
}

func neutralDeltaForPanic(agentKey string, tickers []models.Ticker, reason string) models.StateDelta {
	signals := make(models.AnalystSignals)
	for _, t := range tickers {
		signals.Set(agentKey, t, models.NeutralDefault(reason))
	}
	return models.StateDelta{
		NodeID:         agentKey,
		Messages:       []*schema.Message{schema.AssistantMessage(fmt.Sprintf("%s failed: %s", agentKey, reason), nil)},
		AnalystSignals: signals,
	}
}

// progressAdapter bridges progress.Bus's (agentKey, ticker string, ...)
// signature to registry.ProgressReporter's Ticker-typed ticker parameter.
type progressAdapter struct {
	bus *progress.Bus
}

func (p progressAdapter) UpdateStatus(agentKey string, ticker models.Ticker, status, analysis string) {
	if p.bus == nil {
		return
	}
	p.bus.UpdateStatus(agentKey, ticker, status, analysis)
}
