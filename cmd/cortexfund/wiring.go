package main

import (
	"strings"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/dag"
	"github.com/dyike/cortexfund/internal/llmgateway"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/pkg/app"
)

// defaultAgentsCSV is the registry key set run when --agents is left at its
// flag default: every analyst this tree actually implements.
var defaultAgentsCSV = strings.Join([]string{
	consts.AnalystTechnical,
	consts.AnalystFundamentals,
	consts.AnalystSentiment,
	consts.AnalystWarrenBuffett,
}, ",")

// gatewayProgress adapts *progress.Bus to llmgateway.ProgressReporter's
// string-ticker signature; the gateway has no ticker in scope at call time,
// so it always reports against the empty ticker.
type gatewayProgress struct{ bus *progress.Bus }

func (g gatewayProgress) UpdateStatus(agentKey, ticker, status, analysis string) {
	g.bus.UpdateStatus(agentKey, models.Ticker(ticker), status, analysis)
}

// buildDAGEngine assembles one dag.Engine for a single run/backtest
// invocation out of appEngine's config-derived collaborators (provider,
// model registry, analyst registry), which come from the live app.Runtime
// snapshot rather than being rebuilt here.
func buildDAGEngine(appEngine *app.Engine, selectedAgents []string) *dag.Engine {
	bus := progress.New()
	gw := llmgateway.New(appEngine.Models, gatewayProgress{bus: bus})

	selected := appEngine.Analysts.Intersect(selectedAgents)

	return &dag.Engine{
		Analysts:  selected,
		LLM:       gw,
		Provider:  appEngine.Provider,
		Bus:       bus,
		RiskMgr:   dag.RiskManager(appEngine.Provider, bus),
		Portfolio: dag.PortfolioManager(gw, bus),
	}
}
