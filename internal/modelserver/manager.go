// Package modelserver implements the Model Lifecycle Manager (C7): detecting,
// starting and stopping a local model-serving subprocess, and streaming model
// download progress, talking to it through Ollama's own client library
// rather than hand-rolling the wire protocol.
package modelserver

import (
	"context"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// ollamaClient is the subset of api.Client this package drives, narrowed so
// tests can substitute a fake without standing up a real server.
type ollamaClient interface {
	List(ctx context.Context) (*api.ListResponse, error)
	Pull(ctx context.Context, req *api.PullRequest, fn api.PullProgressFunc) error
	Delete(ctx context.Context, req *api.DeleteRequest) error
}

// processName is the command-name lookup used to detect installation and to
// enumerate the running server's processes, grounded on
// original_source/app/backend/services/ollama_service.py's
// `["which", "ollama"]` / `pgrep -f "ollama serve"` pair.
const processName = "ollama"

const statusCacheDuration = 10 * time.Second

// Manager owns the status cache and the in-flight download-progress table;
// the original is a module-level singleton (`ollama_service = OllamaService()`)
// but Design Notes §9's "no process globals" applies here too, so callers own
// one Manager per process (or per test).
type Manager struct {
	client ollamaClient

	mu          sync.Mutex
	cached      Status
	cachedAt    time.Time
	hasCache    bool

	downloadsMu sync.Mutex
	downloads   map[string]*DownloadProgress
}

// New builds a Manager against a live Ollama client discovered from the
// environment (OLLAMA_HOST or its default, http://localhost:11434).
func New() (*Manager, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}
	return newWithClient(client), nil
}

func newWithClient(client ollamaClient) *Manager {
	return &Manager{client: client, downloads: make(map[string]*DownloadProgress)}
}

// invalidateCache is called after any state-changing operation (start, stop,
// download, delete) so the next CheckStatus call probes fresh.
func (m *Manager) invalidateCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasCache = false
	m.cached = Status{}
}
