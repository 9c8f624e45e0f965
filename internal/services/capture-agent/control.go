package capture_agent

import (
	"context"
	"net/http"

	"github.com/NordCoder/NotifyCapture/internal/capture"
)

type Capturer interface {
	StartCapture(ctx context.Context) (capture.Ack, error)
}

// Status describes the capture pipeline for GET /v1/capture/status.
type Status struct {
	Target     string `json:"target"`
	Running    bool   `json:"running"`
	Registered bool   `json:"registered"`
}

// StartCaptureHandler answers {"success":true} once the listener is bound,
// or 503 with {"success":false,"error":...} when binding failed.
func StartCaptureHandler(c Capturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ack, err := c.StartCapture(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ack)
			return
		}
		writeJSON(w, http.StatusOK, ack)
	}
}

func StatusHandler(status func() Status) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, status())
	}
}

// PipelineStatus reads the state of l and b.
func PipelineStatus(l *capture.Listener, b *capture.Bridge) func() Status {
	return func() Status {
		return Status{
			Target:     l.Target(),
			Running:    l.Running(),
			Registered: b.Registered(),
		}
	}
}
