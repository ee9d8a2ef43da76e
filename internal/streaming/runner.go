package streaming

import (
	"context"

	"github.com/dyike/cortexfund/internal/dag"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/progress"
)

// Runner wraps one dag.Engine run with progress fan-out and cancellation
// detection (spec §4.6), turning it into a channel of SSE-ready Events. The
// reference implementation loops on a 1-second queue.get(timeout) to
// interleave the progress queue, the graph task, and a disconnect watcher;
// a Go select already waits on all three at once, so the three-way
// interleave falls out of the select itself instead of a polling loop.
type Runner struct {
	Engine *dag.Engine
}

// New builds a Runner around engine.
func New(engine *dag.Engine) *Runner {
	return &Runner{Engine: engine}
}

// progressBuffer is sized generously so a burst of analyst updates never
// blocks the engine's goroutines on a slow consumer; when the buffer is full
// the incoming update is dropped rather than stalling the run.
const progressBuffer = 256

// Stream starts state's run in the background and returns a channel of
// events: exactly one `start` first, zero or more `progress_update`, and
// (unless ctx is cancelled first) exactly one terminating `complete` or
// `error`. The channel is closed once the terminal event, if any, has been
// sent. Cancelling ctx stops the stream with no terminal event, per the
// cancellation semantics in spec §5: "no further events are emitted".
func (r *Runner) Stream(ctx context.Context, state *models.RunState) <-chan Event {
	out := make(chan Event, 1)
	go r.run(ctx, state, out)
	return out
}

func (r *Runner) run(ctx context.Context, state *models.RunState, out chan<- Event) {
	defer close(out)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan Event, progressBuffer)
	token := r.Engine.Bus.RegisterHandler(func(evt progress.Event) {
		select {
		case progressCh <- Event{
			Type:      EventProgressUpdate,
			Agent:     evt.AgentKey,
			Ticker:    string(evt.Ticker),
			Status:    evt.Status,
			Analysis:  evt.Analysis,
			Timestamp: evt.Timestamp,
		}:
		default:
			// Buffer full: drop rather than block the analyst goroutine that
			// is dispatching this event.
		}
	})
	defer r.Engine.Bus.UnregisterHandler(token)

	out <- Event{Type: EventStart}

	type outcome struct {
		result dag.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := r.Engine.Run(runCtx, state)
		done <- outcome{result, err}
	}()

	for {
		select {
		case evt := <-progressCh:
			out <- evt

		case oc := <-done:
			if ctx.Err() != nil {
				// ctx was cancelled while the run was finishing: no terminal event.
				return
			}
			drainProgress(progressCh, out)
			out <- terminalEvent(oc.result, oc.err)
			return

		case <-ctx.Done():
			// Cancel the graph task and stop; in-flight LLM/provider calls
			// are left to finish and discarded (spec §5 fire-and-forget).
			cancel()
			return
		}
	}
}

// drainProgress flushes whatever progress_update events are already queued
// before the terminal event, without blocking for more.
func drainProgress(progressCh <-chan Event, out chan<- Event) {
	for {
		select {
		case evt := <-progressCh:
			out <- evt
		default:
			return
		}
	}
}

func terminalEvent(result dag.Result, err error) Event {
	if err != nil {
		return Event{Type: EventError, Message: err.Error()}
	}
	if result.State == nil || len(result.Decisions) == 0 {
		return Event{Type: EventError, Message: "engine produced no decisions"}
	}
	return Event{
		Type: EventComplete,
		Data: &CompleteData{
			Decisions:      result.Decisions,
			AnalystSignals: result.State.Data.AnalystSignals,
		},
	}
}
