package progress

import "sync"

var (
	defaultBus     *Bus
	defaultBusOnce sync.Once
)

// DefaultBus returns a process-wide Bus for callers that don't want to
// thread one through the call chain (CLI one-shot runs, tests). Production
// run paths should prefer an explicit `progress.New()` per run so concurrent
// independent runs don't share subscribers.
func DefaultBus() *Bus {
	defaultBusOnce.Do(func() {
		defaultBus = New()
	})
	return defaultBus
}
