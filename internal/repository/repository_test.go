package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dyike/cortexfund/pkg/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func TestFlowCreateReadUpdateRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewFlowRepository(db)
	ctx := context.Background()

	created, err := repo.CreateFlow(ctx, Flow{Name: "my-flow", Nodes: []byte(`[]`), Edges: []byte(`[]`)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "renamed-flow"
	updated, err := repo.UpdateFlow(ctx, created.ID, FlowUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("expected name %q, got %q", newName, updated.Name)
	}

	reread, err := repo.GetFlowByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.Name != newName {
		t.Fatalf("expected reread to reflect updated name, got %q", reread.Name)
	}
}

func TestFlowSearchByNameCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewFlowRepository(db)
	ctx := context.Background()

	if _, err := repo.CreateFlow(ctx, Flow{Name: "Momentum Strategy", Nodes: []byte(`[]`), Edges: []byte(`[]`)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateFlow(ctx, Flow{Name: "Value Strategy", Nodes: []byte(`[]`), Edges: []byte(`[]`)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.SearchFlowsByName(ctx, "momentum")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Momentum Strategy" {
		t.Fatalf("expected one case-insensitive match, got %+v", got)
	}
}

func TestDuplicateFlowDefaultsNameAndClearsTemplate(t *testing.T) {
	db := newTestDB(t)
	repo := NewFlowRepository(db)
	ctx := context.Background()

	orig, err := repo.CreateFlow(ctx, Flow{Name: "Base Flow", Nodes: []byte(`[{"id":1}]`), Edges: []byte(`[]`), IsTemplate: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	dup, err := repo.DuplicateFlow(ctx, orig.ID, "")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.Name != "Base Flow (Copy)" {
		t.Fatalf("expected default copy name, got %q", dup.Name)
	}
	if dup.IsTemplate {
		t.Fatal("expected duplicate to not be a template")
	}
	if string(dup.Nodes) != string(orig.Nodes) {
		t.Fatalf("expected duplicate nodes to match original, got %s", dup.Nodes)
	}
}

func TestFlowRunNumbersAreDenseAndPerFlow(t *testing.T) {
	db := newTestDB(t)
	flowRepo := NewFlowRepository(db)
	runRepo := NewFlowRunRepository(db)
	ctx := context.Background()

	flowA, _ := flowRepo.CreateFlow(ctx, Flow{Name: "A", Nodes: []byte(`[]`), Edges: []byte(`[]`)})
	flowB, _ := flowRepo.CreateFlow(ctx, Flow{Name: "B", Nodes: []byte(`[]`), Edges: []byte(`[]`)})

	for i := 1; i <= 3; i++ {
		run, err := runRepo.CreateFlowRun(ctx, flowA.ID, nil)
		if err != nil {
			t.Fatalf("create run %d: %v", i, err)
		}
		if run.RunNumber != i {
			t.Fatalf("expected run_number %d for flow A, got %d", i, run.RunNumber)
		}
	}

	firstForB, err := runRepo.CreateFlowRun(ctx, flowB.ID, nil)
	if err != nil {
		t.Fatalf("create run for flow B: %v", err)
	}
	if firstForB.RunNumber != 1 {
		t.Fatalf("expected flow B's run numbering to start at 1, got %d", firstForB.RunNumber)
	}
}

func TestUpdateFlowRunStampsTimestampsWriteOnce(t *testing.T) {
	db := newTestDB(t)
	flowRepo := NewFlowRepository(db)
	runRepo := NewFlowRunRepository(db)
	ctx := context.Background()

	flow, _ := flowRepo.CreateFlow(ctx, Flow{Name: "A", Nodes: []byte(`[]`), Edges: []byte(`[]`)})
	run, _ := runRepo.CreateFlowRun(ctx, flow.ID, nil)

	inProgress := StatusInProgress
	started, err := runRepo.UpdateFlowRun(ctx, run.ID, FlowRunUpdate{Status: &inProgress})
	if err != nil {
		t.Fatalf("update to in_progress: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}
	firstStartedAt := *started.StartedAt

	// Re-setting IN_PROGRESS must not rewrite started_at.
	again, err := runRepo.UpdateFlowRun(ctx, run.ID, FlowRunUpdate{Status: &inProgress})
	if err != nil {
		t.Fatalf("re-update to in_progress: %v", err)
	}
	if !again.StartedAt.Equal(firstStartedAt) {
		t.Fatalf("expected started_at to be write-once, got %v then %v", firstStartedAt, *again.StartedAt)
	}

	complete := StatusComplete
	done, err := runRepo.UpdateFlowRun(ctx, run.ID, FlowRunUpdate{Status: &complete})
	if err != nil {
		t.Fatalf("update to complete: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completed_at to be set on COMPLETE")
	}
}

func TestGetActiveFlowRunReturnsOnlyInProgress(t *testing.T) {
	db := newTestDB(t)
	flowRepo := NewFlowRepository(db)
	runRepo := NewFlowRunRepository(db)
	ctx := context.Background()

	flow, _ := flowRepo.CreateFlow(ctx, Flow{Name: "A", Nodes: []byte(`[]`), Edges: []byte(`[]`)})
	if _, err := runRepo.GetActiveFlowRun(ctx, flow.ID); err == nil {
		t.Fatal("expected no active run before any exist")
	}

	run, _ := runRepo.CreateFlowRun(ctx, flow.ID, nil)
	inProgress := StatusInProgress
	if _, err := runRepo.UpdateFlowRun(ctx, run.ID, FlowRunUpdate{Status: &inProgress}); err != nil {
		t.Fatalf("update: %v", err)
	}

	active, err := runRepo.GetActiveFlowRun(ctx, flow.ID)
	if err != nil {
		t.Fatalf("expected an active run, got error: %v", err)
	}
	if active.ID != run.ID {
		t.Fatalf("expected active run to be %d, got %d", run.ID, active.ID)
	}
}
