package models

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// RunData is the "data" section of SharedRunState: merged facts about the
// run's universe, date range, current portfolio snapshot, and the
// accumulated analyst signal set.
type RunData struct {
	Tickers        []Ticker       `json:"tickers"`
	Portfolio      *Portfolio     `json:"portfolio"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	AnalystSignals AnalystSignals `json:"analyst_signals"`
}

// RunMetadata is the "metadata" section of SharedRunState.
type RunMetadata struct {
	ShowReasoning bool              `json:"show_reasoning"`
	ModelName     string            `json:"model_name"`
	ModelProvider string            `json:"model_provider"`
	AgentModels   map[string]string `json:"agent_models"` // agentKey -> "provider:model"
}

// taggedMessage pairs a message with the id of the node that produced it and
// its position in the log. The log is ordered by seq alone; nodeID is kept
// for reference and plays no part in ordering.
type taggedMessage struct {
	nodeID string
	seq    int
	msg    *schema.Message
}

// RunState is SharedRunState (C5): an append-only message log plus merged
// data/metadata, mutated only through Apply by the DAG engine's single
// mutator goroutine (Design Notes §5/§9 — "one mutator").
type RunState struct {
	messages []taggedMessage
	nextSeq  int
	Data     RunData
	Metadata RunMetadata
}

// NewRunState builds the initial state for a run.
func NewRunState(tickers []Ticker, portfolio *Portfolio, startDate, endDate string, modelName, modelProvider string) *RunState {
	return &RunState{
		Data: RunData{
			Tickers:        tickers,
			Portfolio:      portfolio,
			StartDate:      startDate,
			EndDate:        endDate,
			AnalystSignals: make(AnalystSignals),
		},
		Metadata: RunMetadata{
			ModelName:     modelName,
			ModelProvider: modelProvider,
			AgentModels:   make(map[string]string),
		},
	}
}

// StateDelta is what a node returns on exit: the fields it wants merged back
// into the shared state. Nil fields are left untouched.
type StateDelta struct {
	NodeID         string
	Messages       []*schema.Message
	AnalystSignals AnalystSignals
	Portfolio      *Portfolio // last-writer-wins when non-nil
	ExtraMetadata  map[string]string
}

// Snapshot returns a copy of the state's data/metadata sections for a node
// to consume on entry. The AnalystSignals and AgentModels maps are copied,
// so later Apply calls do not show through; the Tickers slice and the
// Portfolio pointer are shared with the state. Messages are not copied
// (nodes read them via Messages()) since only the engine mutates them.
func (s *RunState) Snapshot() (RunData, RunMetadata) {
	data, meta := s.Data, s.Metadata
	if s.Data.AnalystSignals != nil {
		data.AnalystSignals = make(AnalystSignals, len(s.Data.AnalystSignals))
		data.AnalystSignals.Merge(s.Data.AnalystSignals)
	}
	if s.Metadata.AgentModels != nil {
		meta.AgentModels = make(map[string]string, len(s.Metadata.AgentModels))
		for k, v := range s.Metadata.AgentModels {
			meta.AgentModels[k] = v
		}
	}
	return data, meta
}

// Messages returns the message log in completion order.
func (s *RunState) Messages() []*schema.Message {
	out := make([]*schema.Message, len(s.messages))
	for i, tm := range s.messages {
		out[i] = tm.msg
	}
	return out
}

// Apply merges delta into the state. Messages from a node append in the
// order returned by that node; across nodes, append order follows Apply call
// order (i.e. completion order, the engine's single mutator already
// serializes concurrent analyst completions — Design Notes §9 merge rule).
// Two analysts finishing at the same moment land in whichever order the
// engine receives their deltas; nodeID does not break such ties.
func (s *RunState) Apply(delta StateDelta) {
	for _, m := range delta.Messages {
		s.messages = append(s.messages, taggedMessage{nodeID: delta.NodeID, seq: s.nextSeq, msg: m})
		s.nextSeq++
	}
	if delta.AnalystSignals != nil {
		if s.Data.AnalystSignals == nil {
			s.Data.AnalystSignals = make(AnalystSignals)
		}
		s.Data.AnalystSignals.Merge(delta.AnalystSignals)
	}
	if delta.Portfolio != nil {
		s.Data.Portfolio = delta.Portfolio
	}
	for k, v := range delta.ExtraMetadata {
		if s.Metadata.AgentModels == nil {
			s.Metadata.AgentModels = make(map[string]string)
		}
		s.Metadata.AgentModels[k] = v
	}
}

// ProgressTimestamp is the wall-clock stamp attached to a progress event.
type ProgressTimestamp = time.Time
