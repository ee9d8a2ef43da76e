package models

import "time"

// RunStatus is the FlowRun lifecycle state.
type RunStatus string

const (
	RunIdle       RunStatus = "IDLE"
	RunInProgress RunStatus = "IN_PROGRESS"
	RunComplete   RunStatus = "COMPLETE"
	RunError      RunStatus = "ERROR"
)

// IsTerminal reports whether status is a terminal state of the FSM.
func (s RunStatus) IsTerminal() bool {
	return s == RunComplete || s == RunError
}

// FlowRun is one execution record of a Flow. run_number is monotonic per
// flow_id, starting at 1, allocated atomically by the repository layer.
// Terminal timestamps (started_at/completed_at) are write-once: see
// DESIGN.md Open Question 2.
type FlowRun struct {
	ID           string     `json:"id"`
	FlowID       string     `json:"flow_id"`
	RunNumber    int64      `json:"run_number"`
	Status       RunStatus  `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	RequestData  []byte     `json:"request_data,omitempty"`
	Results      []byte     `json:"results,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// HedgeFundRequest is the request body the core DAG engine consumes; the
// HTTP layer that decodes it off the wire is out of scope (spec §1).
type HedgeFundRequest struct {
	Tickers           []Ticker          `json:"tickers"`
	SelectedAgents    []string          `json:"selected_agents"`
	AgentModels       map[string]string `json:"agent_models,omitempty"` // agentKey -> "provider:model"
	StartDate         string            `json:"start_date,omitempty"`
	EndDate           string            `json:"end_date,omitempty"`
	ModelName         string            `json:"model_name"`
	ModelProvider     string            `json:"model_provider"`
	InitialCash       string            `json:"initial_cash"`
	MarginRequirement string            `json:"margin_requirement"`
}

// AgentModel resolves the model override for agentKey, falling back to the
// request's global model (spec §4.3 per-agent override resolution).
func (r *HedgeFundRequest) AgentModel(agentKey string) (name, provider string) {
	if r.AgentModels != nil {
		if v, ok := r.AgentModels[agentKey]; ok {
			if i := indexOfColon(v); i >= 0 {
				return v[i+1:], v[:i]
			}
			return v, r.ModelProvider
		}
	}
	return r.ModelName, r.ModelProvider
}

func indexOfColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
