package modelserver

import (
	"context"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
)

type fakeClient struct {
	listModels []string
	listErr    error
	pullFrames []api.ProgressResponse
	pullErr    error
	deleted    []string
}

func (f *fakeClient) List(ctx context.Context) (*api.ListResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	resp := &api.ListResponse{}
	for _, m := range f.listModels {
		resp.Models = append(resp.Models, api.ListModelResponse{Model: m})
	}
	return resp, nil
}

func (f *fakeClient) Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	for _, frame := range f.pullFrames {
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeClient) Delete(ctx context.Context, req *api.DeleteRequest) error {
	f.deleted = append(f.deleted, req.Model)
	return nil
}

func TestCheckStatusCachesWithinWindow(t *testing.T) {
	fc := &fakeClient{listModels: []string{"llama3.1:latest"}}
	m := newWithClient(fc)

	first := m.CheckStatus(context.Background())
	if !first.Running || len(first.AvailableModels) != 1 {
		t.Fatalf("expected running with one model, got %+v", first)
	}

	fc.listModels = []string{"llama3.1:latest", "gemma3:4b"}
	second := m.CheckStatus(context.Background())
	if len(second.AvailableModels) != 1 {
		t.Fatalf("expected cached status to ignore the new model, got %+v", second)
	}
}

func TestCheckStatusRefreshesAfterInvalidate(t *testing.T) {
	fc := &fakeClient{listModels: []string{"llama3.1:latest"}}
	m := newWithClient(fc)

	_ = m.CheckStatus(context.Background())
	fc.listModels = []string{"llama3.1:latest", "gemma3:4b"}
	m.invalidateCache()

	second := m.CheckStatus(context.Background())
	if len(second.AvailableModels) != 2 {
		t.Fatalf("expected refreshed status after invalidate, got %+v", second)
	}
}

func TestCheckStatusReportsServerDown(t *testing.T) {
	fc := &fakeClient{listErr: context.DeadlineExceeded}
	m := newWithClient(fc)

	status := m.CheckStatus(context.Background())
	if status.Running {
		t.Fatalf("expected running=false when List errors, got %+v", status)
	}
}

func TestDownloadModelWithProgressEmitsCompletedFrame(t *testing.T) {
	fc := &fakeClient{
		listModels: []string{"some-other-model"},
		pullFrames: []api.ProgressResponse{
			{Status: "pulling manifest"},
			{Status: "downloading", Completed: 50, Total: 100},
			{Status: "success"},
		},
	}
	m := newWithClient(fc)

	var last DownloadProgress
	for frame := range m.DownloadModelWithProgress(context.Background(), "llama3.1:latest") {
		last = frame
	}
	if last.Status != DownloadCompleted {
		t.Fatalf("expected final frame to be completed, got %+v", last)
	}

	time.Sleep(downloadEntryTTL + 50*time.Millisecond)
	if got := m.getDownload("llama3.1:latest"); got != nil {
		t.Fatalf("expected download entry to be dropped after TTL, got %+v", got)
	}
}

func TestCancelDownloadMarksCancelled(t *testing.T) {
	fc := &fakeClient{listModels: []string{"x"}, pullFrames: []api.ProgressResponse{{Status: "downloading", Completed: 1, Total: 100}}}
	m := newWithClient(fc)

	m.setDownload("llama3.1:latest", &DownloadProgress{Model: "llama3.1:latest", Status: DownloadStarting, cancel: func() {}})
	if !m.CancelDownload("llama3.1:latest") {
		t.Fatal("expected CancelDownload to report success for a tracked download")
	}
	if got := m.getDownload("llama3.1:latest"); got == nil || got.Status != DownloadCancelled {
		t.Fatalf("expected cancelled status, got %+v", got)
	}
	if m.CancelDownload("not-tracked") {
		t.Fatal("expected CancelDownload to report false for an untracked model")
	}
}

func TestDeleteModelInvalidatesCache(t *testing.T) {
	fc := &fakeClient{listModels: []string{"llama3.1:latest"}}
	m := newWithClient(fc)

	_ = m.CheckStatus(context.Background())
	if err := m.DeleteModel(context.Background(), "llama3.1:latest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.deleted[0] != "llama3.1:latest" {
		t.Fatalf("expected delete to reach the client, got %v", fc.deleted)
	}
	if m.hasCache {
		t.Fatal("expected DeleteModel to invalidate the status cache")
	}
}

func TestRecommendedModelsFallsBackWithoutManifest(t *testing.T) {
	models := RecommendedModels("/nonexistent/path/ollama_models.json")
	if len(models) == 0 {
		t.Fatal("expected fallback recommended models")
	}
}
