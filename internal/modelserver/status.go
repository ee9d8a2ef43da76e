package modelserver

import (
	"context"
	"os/exec"
	"time"
)

// Status is the server's detect/reachability snapshot (spec §4.7).
type Status struct {
	Installed       bool     `json:"installed"`
	Running         bool     `json:"running"`
	AvailableModels []string `json:"available_models"`
	ServerURL       string   `json:"server_url"`
	Error           string   `json:"error,omitempty"`
}

// CheckStatus returns the cached status if it is under 10 seconds old,
// otherwise probes installation and reachability fresh and refreshes the
// cache (spec §4.7: "cached for 10 seconds; invalidated on any
// state-changing operation").
func (m *Manager) CheckStatus(ctx context.Context) Status {
	m.mu.Lock()
	if m.hasCache && time.Since(m.cachedAt) < statusCacheDuration {
		cached := m.cached
		m.mu.Unlock()
		return cached
	}
	m.mu.Unlock()

	status := m.probeStatus(ctx)

	m.mu.Lock()
	m.cached = status
	m.cachedAt = time.Now()
	m.hasCache = true
	m.mu.Unlock()

	return status
}

func (m *Manager) probeStatus(ctx context.Context) Status {
	installed := isInstalled()
	running, models := m.probeServer(ctx)

	serverURL := ""
	if running {
		serverURL = "http://localhost:11434"
	}

	return Status{
		Installed:       installed,
		Running:         running,
		AvailableModels: models,
		ServerURL:       serverURL,
	}
}

// probeServer confirms reachability the same way the reference
// implementation does: a successful List() call, not a port probe.
func (m *Manager) probeServer(ctx context.Context) (bool, []string) {
	resp, err := m.client.List(ctx)
	if err != nil {
		return false, nil
	}
	models := make([]string, 0, len(resp.Models))
	for _, entry := range resp.Models {
		models = append(models, entry.Model)
	}
	return true, models
}

func isInstalled() bool {
	_, err := exec.LookPath(processName)
	return err == nil
}
