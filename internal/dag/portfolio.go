package dag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
	"github.com/dyike/cortexfund/internal/registry"
)

type portfolioDecisionJSON struct {
	Action     models.TradeAction `json:"action"`
	Quantity   int64              `json:"quantity"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
}

type portfolioOutputJSON struct {
	Decisions map[string]portfolioDecisionJSON `json:"decisions"`
}

const portfolioManagerSystemPrompt = `You are a portfolio manager making final trading decisions for multiple tickers.

Trading rules:
- Only buy if there is available cash.
- Only sell if there are shares to sell (or short if margin allows).
- Quantity must not exceed the remaining position limit supplied for that ticker.
- Total exposure across all tickers should not exceed portfolio limits.

Respond with your decisions as a fenced ` + "```json" + ` block matching:
{"decisions": {"TICKER": {"action": "buy"|"sell"|"hold"|"short"|"cover", "quantity": integer, "confidence": float 0-100, "reasoning": "string"}}}`

// PortfolioManager turns the accumulated analyst signal set and the risk
// manager's position limits into one trade decision per ticker via the LLM
// gateway, grounded on
// original_source/src/agents/portfolio_manager.py's prompt/output contract.
func PortfolioManager(llm registry.LLMCaller, bus *progress.Bus) PortfolioManagerFunc {
	return func(ctx context.Context, data models.RunData, meta models.RunMetadata, limits RiskLimits) (models.RunDecisions, models.StateDelta, error) {
		adapter := progressAdapter{bus: bus}
		adapter.UpdateStatus(consts.NodePortfolioManager, "", "Analyzing signals", "")

		signalsByTicker := make(map[models.Ticker]map[string]models.AnalystSignal)
		for agent, byTicker := range data.AnalystSignals {
			if agent == consts.NodeRiskManagement {
				continue
			}
			for ticker, sig := range byTicker {
				if signalsByTicker[ticker] == nil {
					signalsByTicker[ticker] = make(map[string]models.AnalystSignal)
				}
				signalsByTicker[ticker][agent] = sig
			}
		}

		prompt, err := buildPortfolioPrompt(data, signalsByTicker, limits)
		if err != nil {
			return nil, models.StateDelta{}, fmt.Errorf("portfolio manager: %w", err)
		}

		adapter.UpdateStatus(consts.NodePortfolioManager, "", "Making trading decisions", "")

		defaultOut := portfolioOutputJSON{Decisions: defaultHoldDecisions(data.Tickers)}
		defaultJSON, _ := json.Marshal(defaultOut)

		raw, err := llm.CallJSON(ctx, prompt, consts.NodePortfolioManager, meta.ModelName, meta.ModelProvider, 3, defaultJSON)
		if err != nil {
			return nil, models.StateDelta{}, fmt.Errorf("portfolio manager: llm call: %w", err)
		}

		var out portfolioOutputJSON
		if err := json.Unmarshal(raw, &out); err != nil {
			out = defaultOut
		}

		decisions := make(models.RunDecisions, len(data.Tickers))
		for _, ticker := range data.Tickers {
			d, ok := out.Decisions[string(ticker)]
			if !ok {
				d = portfolioDecisionJSON{Action: models.ActionHold, Reasoning: "no decision returned for ticker"}
			}
			decisions[ticker] = models.PortfolioDecision{
				Action:     d.Action,
				Quantity:   d.Quantity,
				Confidence: d.Confidence,
				Reasoning:  d.Reasoning,
			}
		}

		decisionsJSON, _ := json.Marshal(decisions)
		adapter.UpdateStatus(consts.NodePortfolioManager, "", "Done", "")

		delta := models.StateDelta{
			NodeID:   consts.NodePortfolioManager,
			Messages: []*schema.Message{schema.AssistantMessage(string(decisionsJSON), nil)},
		}
		return decisions, delta, nil
	}
}

func defaultHoldDecisions(tickers []models.Ticker) map[string]portfolioDecisionJSON {
	out := make(map[string]portfolioDecisionJSON, len(tickers))
	for _, t := range tickers {
		out[string(t)] = portfolioDecisionJSON{Action: models.ActionHold, Reasoning: "error in analysis, defaulting to hold"}
	}
	return out
}

func buildPortfolioPrompt(data models.RunData, signalsByTicker map[models.Ticker]map[string]models.AnalystSignal, limits RiskLimits) (string, error) {
	signalsJSON, err := json.MarshalIndent(signalsByTicker, "", "  ")
	if err != nil {
		return "", err
	}
	limitsJSON, err := json.MarshalIndent(limits, "", "  ")
	if err != nil {
		return "", err
	}
	var cash, positions string
	if data.Portfolio != nil {
		cash = data.Portfolio.Cash.StringFixed(2)
		posJSON, _ := json.MarshalIndent(data.Portfolio.Positions, "", "  ")
		positions = string(posJSON)
	}

	return fmt.Sprintf("%s\n\nSignals by ticker:\n%s\n\nRemaining position limits:\n%s\n\nCash: %s\nPositions: %s",
		portfolioManagerSystemPrompt, signalsJSON, limitsJSON, cash, positions), nil
}
