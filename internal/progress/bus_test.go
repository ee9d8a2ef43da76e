package progress

import (
	"sync"
	"testing"

	"github.com/dyike/cortexfund/internal/models"
)

func TestBusFansOutToAllHandlers(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	var got []string

	bus.RegisterHandler(func(evt Event) {
		mu.Lock()
		got = append(got, "h1:"+evt.Status)
		mu.Unlock()
	})
	bus.RegisterHandler(func(evt Event) {
		mu.Lock()
		got = append(got, "h2:"+evt.Status)
		mu.Unlock()
	})

	bus.UpdateStatus("technical_analyst", models.Ticker("AAPL"), "in_progress", "")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d: %v", len(got), got)
	}
}

func TestBusPanickingHandlerDoesNotAffectSiblings(t *testing.T) {
	bus := New()

	delivered := false
	bus.RegisterHandler(func(evt Event) {
		panic("boom")
	})
	bus.RegisterHandler(func(evt Event) {
		delivered = true
	})

	bus.UpdateStatus("x", "", "in_progress", "")

	if !delivered {
		t.Fatal("expected second handler to still be invoked after first panicked")
	}
}

func TestBusUnregisterStopsFutureDelivery(t *testing.T) {
	bus := New()

	count := 0
	token := bus.RegisterHandler(func(evt Event) {
		count++
	})

	bus.UpdateStatus("x", "", "in_progress", "")
	bus.UnregisterHandler(token)
	bus.UpdateStatus("x", "", "in_progress", "")

	if count != 1 {
		t.Fatalf("expected exactly 1 delivery before unregister, got %d", count)
	}
}
