package models

// DownloadStatus is the state of a model-pull operation tracked by the
// model lifecycle manager (C7).
type DownloadStatus string

const (
	DownloadStarting    DownloadStatus = "starting"
	DownloadInProgress  DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadError       DownloadStatus = "error"
	DownloadCancelled   DownloadStatus = "cancelled"
)

// DownloadProgress is the in-memory record keyed by model name while a pull
// is active. Dropped 1s after reaching a terminal status (§4.7).
type DownloadProgress struct {
	Model            string         `json:"model"`
	Status           DownloadStatus `json:"status"`
	Percentage       float64        `json:"percentage,omitempty"`
	BytesDownloaded  int64          `json:"bytes_downloaded,omitempty"`
	TotalBytes       int64          `json:"total_bytes,omitempty"`
	Phase            string         `json:"phase,omitempty"`
	Message          string         `json:"message,omitempty"`
}

// IsTerminal reports whether d has reached a terminal download state.
func (d DownloadProgress) IsTerminal() bool {
	switch d.Status {
	case DownloadCompleted, DownloadError, DownloadCancelled:
		return true
	default:
		return false
	}
}
