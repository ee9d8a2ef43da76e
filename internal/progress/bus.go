// Package progress implements the in-process pub/sub event bus (C1) that
// carries agent-status updates from concurrent DAG nodes to a streaming
// subscriber.
package progress

import (
	"sync"
	"time"

	"github.com/dyike/cortexfund/internal/models"
)

// Event is one status update fanned out to registered handlers.
type Event struct {
	AgentKey  string
	Ticker    models.Ticker
	Status    string
	Analysis  string
	Timestamp time.Time
}

// Handler receives a dispatched Event. A handler must not block; the bus
// invokes handlers synchronously from the caller's goroutine (spec §4.1).
type Handler func(Event)

// Bus is an explicit per-run pub/sub value (Design Notes §9: never a package
// global — callers that want process-wide behavior use DefaultBus()
// explicitly instead).
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// RegisterHandler subscribes h. Returns a token usable with UnregisterHandler.
func (b *Bus) RegisterHandler(h Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
	return len(b.handlers) - 1
}

// UnregisterHandler removes the handler identified by token. Safe to call
// concurrently with in-flight dispatch: dispatch takes a snapshot of the
// slice under RLock, so at most one in-flight call may still observe the
// handler after Unregister returns, and no call is missed after it (spec
// §4.1 contract).
func (b *Bus) UnregisterHandler(token int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token < 0 || token >= len(b.handlers) {
		return
	}
	b.handlers[token] = nil
}

// UpdateStatus fans out an event to every registered handler. A handler that
// panics is recovered so it cannot prevent delivery to its siblings.
func (b *Bus) UpdateStatus(agentKey string, ticker models.Ticker, status, analysis string) {
	b.mu.RLock()
	snapshot := make([]Handler, len(b.handlers))
	copy(snapshot, b.handlers)
	b.mu.RUnlock()

	evt := Event{
		AgentKey:  agentKey,
		Ticker:    ticker,
		Status:    status,
		Analysis:  analysis,
		Timestamp: time.Now(),
	}
	for _, h := range snapshot {
		if h == nil {
			continue
		}
		dispatch(h, evt)
	}
}

func dispatch(h Handler, evt Event) {
	defer func() {
		_ = recover()
	}()
	h(evt)
}
