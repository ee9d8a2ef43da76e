package modelserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ollama/ollama/api"
)

// DownloadStatus is the state of one in-flight or recently finished model
// pull (spec §4.7 "Model download with progress").
type DownloadStatus string

const (
	DownloadStarting   DownloadStatus = "starting"
	DownloadInProgress DownloadStatus = "downloading"
	DownloadCompleted  DownloadStatus = "completed"
	DownloadCancelled  DownloadStatus = "cancelled"
	DownloadError      DownloadStatus = "error"
)

// DownloadProgress is the in-memory record the manager keeps per model name
// and also the payload streamed to observers as an SSE frame.
type DownloadProgress struct {
	Model            string         `json:"model"`
	Status           DownloadStatus `json:"status"`
	Message          string         `json:"message,omitempty"`
	Percentage       float64        `json:"percentage,omitempty"`
	BytesDownloaded  int64          `json:"bytes_downloaded,omitempty"`
	TotalBytes       int64          `json:"total_bytes,omitempty"`
	Digest           string         `json:"digest,omitempty"`
	Error            string         `json:"error,omitempty"`
	cancel           context.CancelFunc
}

// downloadEntryTTL is how long a terminal download record lingers before
// being dropped, per spec §4.7 ("drop the progress entry 1 s after terminal
// state").
const downloadEntryTTL = 1 * time.Second

// DownloadModelWithProgress streams pull progress for model, reporting each
// frame on the returned channel. The channel is closed once the terminal
// frame (completed/cancelled/error) has been sent and the entry TTL expires.
func (m *Manager) DownloadModelWithProgress(ctx context.Context, model string) <-chan DownloadProgress {
	out := make(chan DownloadProgress, 8)
	pullCtx, cancel := context.WithCancel(ctx)

	entry := &DownloadProgress{Model: model, Status: DownloadStarting, cancel: cancel}
	m.setDownload(model, entry)

	go func() {
		defer close(out)
		defer func() {
			time.Sleep(downloadEntryTTL)
			m.clearDownload(model)
		}()

		if running, _ := m.probeServer(ctx); !running {
			final := DownloadProgress{Model: model, Status: DownloadError, Error: "server is not running"}
			m.setDownload(model, &final)
			out <- final
			return
		}

		m.invalidateCache()
		starting := DownloadProgress{Model: model, Status: DownloadStarting, Message: fmt.Sprintf("starting download of %s", model)}
		m.setDownload(model, &starting)
		out <- starting

		err := m.client.Pull(pullCtx, &api.PullRequest{Model: model}, func(resp api.ProgressResponse) error {
			if cur := m.getDownload(model); cur != nil && cur.Status == DownloadCancelled {
				return context.Canceled
			}
			frame := processProgress(model, resp)
			m.setDownload(model, &frame)
			out <- frame
			return nil
		})

		m.invalidateCache()

		if cur := m.getDownload(model); cur != nil && cur.Status == DownloadCancelled {
			out <- *cur
			return
		}
		if err != nil {
			final := DownloadProgress{Model: model, Status: DownloadError, Message: fmt.Sprintf("error downloading model %s", model), Error: err.Error()}
			m.setDownload(model, &final)
			out <- final
			return
		}

		final := DownloadProgress{Model: model, Status: DownloadCompleted, Percentage: 100, Message: fmt.Sprintf("model %s downloaded successfully", model)}
		m.setDownload(model, &final)
		out <- final
	}()

	return out
}

func processProgress(model string, resp api.ProgressResponse) DownloadProgress {
	frame := DownloadProgress{
		Model:   model,
		Status:  DownloadInProgress,
		Message: resp.Status,
		Digest:  resp.Digest,
	}
	if resp.Total > 0 {
		frame.Percentage = float64(resp.Completed) / float64(resp.Total) * 100
		frame.BytesDownloaded = resp.Completed
		frame.TotalBytes = resp.Total
	}
	if resp.Status == "success" || (resp.Total > 0 && resp.Completed == resp.Total) {
		frame.Status = DownloadCompleted
		frame.Percentage = 100
		frame.Message = fmt.Sprintf("model %s downloaded successfully", model)
	}
	return frame
}

// DownloadModel blocks until model finishes pulling, discarding progress
// frames (spec §4.7 "Model download without progress").
func (m *Manager) DownloadModel(ctx context.Context, model string) error {
	for frame := range m.DownloadModelWithProgress(ctx, model) {
		if frame.Status == DownloadError {
			return fmt.Errorf("modelserver: %s: %s", frame.Message, frame.Error)
		}
	}
	return nil
}

// CancelDownload marks an in-flight download cancelled and cancels its pull
// context; the upstream client may not support hard mid-stream cancellation,
// so observers are still told "cancelled" even if the transfer itself keeps
// running to completion server-side (spec §4.7 "Cancel download").
func (m *Manager) CancelDownload(model string) bool {
	m.downloadsMu.Lock()
	defer m.downloadsMu.Unlock()

	entry, ok := m.downloads[model]
	if !ok {
		return false
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	m.downloads[model] = &DownloadProgress{Model: model, Status: DownloadCancelled, Message: fmt.Sprintf("download of %s was cancelled", model)}
	return true
}

// DeleteModel removes a downloaded model and invalidates the status cache.
func (m *Manager) DeleteModel(ctx context.Context, model string) error {
	if err := m.client.Delete(ctx, &api.DeleteRequest{Model: model}); err != nil {
		return fmt.Errorf("modelserver: delete %s: %w", model, err)
	}
	m.invalidateCache()
	return nil
}

func (m *Manager) setDownload(model string, entry *DownloadProgress) {
	m.downloadsMu.Lock()
	defer m.downloadsMu.Unlock()
	if existing, ok := m.downloads[model]; ok && entry.cancel == nil {
		entry.cancel = existing.cancel
	}
	m.downloads[model] = entry
}

func (m *Manager) getDownload(model string) *DownloadProgress {
	m.downloadsMu.Lock()
	defer m.downloadsMu.Unlock()
	return m.downloads[model]
}

func (m *Manager) clearDownload(model string) {
	m.downloadsMu.Lock()
	defer m.downloadsMu.Unlock()
	delete(m.downloads, model)
}

// RecommendedModel is one entry in the curated, human-readable model list.
type RecommendedModel struct {
	DisplayName string `json:"display_name"`
	ModelName   string `json:"model_name"`
	Provider    string `json:"provider"`
}

var fallbackRecommendedModels = []RecommendedModel{
	{DisplayName: "[meta] llama3.1 (8B)", ModelName: "llama3.1:latest", Provider: "Ollama"},
	{DisplayName: "[google] gemma3 (4B)", ModelName: "gemma3:4b", Provider: "Ollama"},
	{DisplayName: "[alibaba] qwen3 (4B)", ModelName: "qwen3:4b", Provider: "Ollama"},
}

// RecommendedModels loads the curated list from manifestPath if present,
// otherwise serves the hardcoded fallback (spec §4.7 "Recommended list").
func RecommendedModels(manifestPath string) []RecommendedModel {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fallbackRecommendedModels
	}
	var models []RecommendedModel
	if err := json.Unmarshal(data, &models); err != nil {
		return fallbackRecommendedModels
	}
	return models
}
