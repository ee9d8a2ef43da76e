package registry

import (
	"context"
	"testing"

	"github.com/dyike/cortexfund/internal/models"
)

func dummyFn(ctx context.Context, in AnalystInput) (models.StateDelta, error) {
	return models.StateDelta{NodeID: in.AgentKey}, nil
}

func testRegistry() *Registry {
	return New(
		Entry{Key: "technical_analyst", DisplayName: "Technical Analyst", Order: 0, Fn: dummyFn},
		Entry{Key: "fundamentals_analyst", DisplayName: "Fundamentals Analyst", Order: 1, Fn: dummyFn},
	)
}

func TestIntersectDropsUnknownKeys(t *testing.T) {
	r := testRegistry()
	got := r.Intersect([]string{"technical_analyst", "not_an_agent"})
	if len(got) != 1 || got[0].Key != "technical_analyst" {
		t.Fatalf("expected only technical_analyst to survive, got %v", got)
	}
}

func TestIntersectPreservesRegistryOrder(t *testing.T) {
	r := testRegistry()
	got := r.Intersect([]string{"fundamentals_analyst", "technical_analyst"})
	if len(got) != 2 || got[0].Key != "technical_analyst" || got[1].Key != "fundamentals_analyst" {
		t.Fatalf("expected registry order regardless of request order, got %v", got)
	}
}

func TestIntersectDedupesRepeatedKeys(t *testing.T) {
	r := testRegistry()
	got := r.Intersect([]string{"technical_analyst", "technical_analyst"})
	if len(got) != 1 {
		t.Fatalf("expected dedup, got %d entries", len(got))
	}
}

func TestLookupMissingKey(t *testing.T) {
	r := testRegistry()
	if _, ok := r.Lookup("not_an_agent"); ok {
		t.Fatal("expected Lookup to report missing key")
	}
}
