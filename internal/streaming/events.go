// Package streaming implements the Streaming Runner (C6): it wraps a DAG
// engine run with progress fan-out and cancellation detection, emitting an
// SSE-ready event sequence that always starts with `start` and, unless the
// caller's context is cancelled first, ends with exactly one of
// `complete`/`error`.
package streaming

import (
	"time"

	"github.com/dyike/cortexfund/internal/models"
)

// EventType is the SSE event discriminant.
type EventType string

const (
	EventStart           EventType = "start"
	EventProgressUpdate  EventType = "progress_update"
	EventComplete        EventType = "complete"
	EventError           EventType = "error"
)

// Event is one frame of the stream. Only the fields relevant to Type are
// populated; json.Marshal omits the zero-valued rest via `omitempty`, except
// Timestamp: omitempty has no effect on a time.Time, so a zero timestamp is
// still written.
type Event struct {
	Type      EventType   `json:"type"`
	Agent     string      `json:"agent,omitempty"`
	Ticker    string      `json:"ticker,omitempty"`
	Status    string      `json:"status,omitempty"`
	Analysis  string      `json:"analysis,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      *CompleteData `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp,omitempty"`
}

// CompleteData is the terminal `complete` event's payload.
type CompleteData struct {
	Decisions     models.RunDecisions   `json:"decisions"`
	AnalystSignals models.AnalystSignals `json:"analyst_signals"`
}
