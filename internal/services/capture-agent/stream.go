package capture_agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"go.uber.org/zap"
)

const streamKeepAlive = 15 * time.Second

// Stream serves notificationReceived payloads as server-sent events. Each
// client gets its own subscription and a bounded buffer; a client that falls
// behind loses payloads instead of slowing delivery for everyone else.
type Stream struct {
	subs   notification.Subscriber
	buffer int
	log    *zap.Logger
}

func NewStream(subs notification.Subscriber, buffer int, log *zap.Logger) *Stream {
	if log == nil {
		log = zap.L()
	}
	if buffer <= 0 {
		buffer = 1
	}
	return &Stream{
		subs:   subs,
		buffer: buffer,
		log:    log.With(zap.String("component", "capture-agent.stream")),
	}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := obs.WithTrace(r.Context(), s.log)
	rc := http.NewResponseController(w)

	ch := make(chan notification.Payload, s.buffer)
	remove, err := s.subs.Subscribe(notification.EventReceived, func(_ context.Context, p notification.Payload) {
		select {
		case ch <- p:
		default:
			sinkDropped.WithLabelValues("stream", "client_slow").Inc()
		}
	})
	if err != nil {
		log.Error("stream subscribe", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "subscribe failed")
		return
	}
	defer remove()

	streamClients.Inc()
	defer streamClients.Dec()

	// server read/write timeouts would cut long-lived streams
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Warn("stream flush unsupported", zap.Error(err))
		return
	}
	log.Debug("stream client connected")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("stream client gone")
			return
		case p := <-ch:
			b, err := json.Marshal(p)
			if err != nil {
				log.Error("encode payload", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notification.EventReceived, b); err != nil {
				return
			}
			sinkPublished.WithLabelValues("stream").Inc()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
