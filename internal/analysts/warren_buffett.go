package analysts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/registry"
)

// warrenBuffettSignal mirrors original_source/src/agents/warren_buffett.py's
// WarrenBuffettSignal pydantic model: the LLM's structured reply shape.
type warrenBuffettSignal struct {
	Signal     models.SignalDirection `json:"signal"`
	Confidence float64                `json:"confidence"`
	Reasoning  string                 `json:"reasoning"`
}

const warrenBuffettSystemPrompt = `You are Warren Buffett. Evaluate the business through circle of competence, durable moat, honest and able management, financial strength, and a margin of safety against intrinsic value. Favor simple, understandable businesses over complex ones. Respond with your verdict as a fenced ` + "```json" + ` block matching {"signal": "bullish"|"bearish"|"neutral", "confidence": 0-100, "reasoning": "..."}.`

// WarrenBuffett gathers financial metrics for each ticker and asks the
// configured model to render a verdict in Buffett's voice, grounded on
// original_source/src/agents/warren_buffett.py's generate_buffett_output.
func WarrenBuffett(ctx context.Context, in registry.AnalystInput) (models.StateDelta, error) {
	signals := make(models.AnalystSignals)

	for _, ticker := range in.Data.Tickers {
		in.Progress.UpdateStatus(consts.AnalystWarrenBuffett, ticker, "Fetching financial metrics", "")

		metrics, err := in.Provider.GetFinancialMetrics(ctx, ticker, in.Data.EndDate, "ttm", 10)
		if err != nil {
			signals.Set(consts.AnalystWarrenBuffett, ticker, models.NeutralDefault("data provider error"))
			continue
		}

		analysisJSON, _ := json.Marshal(metrics)
		prompt := fmt.Sprintf("%s\n\nTicker: %s\nFinancial metrics (most recent first):\n%s", warrenBuffettSystemPrompt, ticker, string(analysisJSON))

		in.Progress.UpdateStatus(consts.AnalystWarrenBuffett, ticker, "Analyzing business quality", "")

		modelName, modelProvider := in.Metadata.ModelName, in.Metadata.ModelProvider
		if override, ok := in.Metadata.AgentModels[consts.AnalystWarrenBuffett]; ok {
			modelProvider, modelName = splitProviderModel(override, modelProvider, modelName)
		}

		defaultJSON, _ := json.Marshal(warrenBuffettSignal{Signal: models.Neutral, Confidence: 0, Reasoning: "error in analysis, defaulting to neutral"})
		raw, err := in.LLM.CallJSON(ctx, prompt, consts.AnalystWarrenBuffett, modelName, modelProvider, 3, defaultJSON)
		if err != nil {
			signals.Set(consts.AnalystWarrenBuffett, ticker, models.NeutralDefault("llm call failed"))
			continue
		}

		var out warrenBuffettSignal
		if err := json.Unmarshal(raw, &out); err != nil {
			signals.Set(consts.AnalystWarrenBuffett, ticker, models.NeutralDefault("malformed llm response"))
			continue
		}

		signals.Set(consts.AnalystWarrenBuffett, ticker, models.AnalystSignal{
			Signal:     out.Signal,
			Confidence: out.Confidence,
			Reasoning:  out.Reasoning,
		})
		in.Progress.UpdateStatus(consts.AnalystWarrenBuffett, ticker, "Done", string(out.Signal))
	}

	return models.StateDelta{NodeID: consts.AnalystWarrenBuffett, AnalystSignals: signals}, nil
}

// splitProviderModel parses an "provider:model" override string, falling
// back to the run's defaults on either empty half.
func splitProviderModel(override, defaultProvider, defaultModel string) (provider, model string) {
	for i := 0; i < len(override); i++ {
		if override[i] == ':' {
			provider = override[:i]
			model = override[i+1:]
			if provider == "" {
				provider = defaultProvider
			}
			if model == "" {
				model = defaultModel
			}
			return provider, model
		}
	}
	return defaultProvider, defaultModel
}
