package capture_agent

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"go.uber.org/zap"
)

const maxEventBytes = 256 << 10

// HTTPSource receives raw notification events pushed by the device
// forwarder and passes them to the bound observer.
type HTTPSource struct {
	accessGranted bool
	log           *zap.Logger

	mu       sync.RWMutex
	observer notification.Observer
}

var _ notification.Source = (*HTTPSource)(nil)

func NewHTTPSource(accessGranted bool, log *zap.Logger) *HTTPSource {
	if log == nil {
		log = zap.L()
	}
	return &HTTPSource{
		accessGranted: accessGranted,
		log:           log.With(zap.String("component", "capture-agent.http-source")),
	}
}

func (s *HTTPSource) Bind(_ context.Context, o notification.Observer) error {
	if !s.accessGranted {
		return ErrAccessDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observer != nil {
		return ErrSourceBusy
	}
	s.observer = o
	return nil
}

func (s *HTTPSource) Unbind() error {
	s.mu.Lock()
	s.observer = nil
	s.mu.Unlock()
	return nil
}

func (s *HTTPSource) Posted(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "posted", notification.Observer.OnNotificationPosted)
}

func (s *HTTPSource) Removed(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "removed", notification.Observer.OnNotificationRemoved)
}

func (s *HTTPSource) serve(w http.ResponseWriter, r *http.Request, kind string,
	call func(notification.Observer, context.Context, notification.RawEvent)) {
	log := obs.WithTrace(r.Context(), s.log)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ingestRequests.WithLabelValues(kind, "too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "event too large")
			return
		}
		ingestRequests.WithLabelValues(kind, "read_error").Inc()
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	ev, err := notification.DecodeRawEvent(body)
	if err != nil {
		ingestRequests.WithLabelValues(kind, "bad_request").Inc()
		log.Debug("undecodable event", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}

	s.mu.RLock()
	o := s.observer
	s.mu.RUnlock()
	if o == nil {
		ingestRequests.WithLabelValues(kind, "not_started").Inc()
		writeError(w, http.StatusServiceUnavailable, "capture not started")
		return
	}

	call(o, r.Context(), ev)
	ingestRequests.WithLabelValues(kind, "accepted").Inc()
	w.WriteHeader(http.StatusAccepted)
}
