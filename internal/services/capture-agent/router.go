package capture_agent

import (
	"context"
	"net/http"

	"github.com/NordCoder/NotifyCapture/internal/obs"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type RouterDeps struct {
	// Source is nil when events arrive over Kafka.
	Source  *HTTPSource
	Capture Capturer
	Status  func() Status
	// Stream is nil when the event stream is disabled.
	Stream http.Handler
	Health func(context.Context) error

	TokenHash      string
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.Handle("/healthz", obs.HealthHandler(d.Health)).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(TokenGuard(d.TokenHash, d.Log))

	if d.Source != nil {
		api.Handle("/notifications/posted",
			obs.HTTPHandler(http.HandlerFunc(d.Source.Posted), "notifications.posted")).Methods(http.MethodPost)
		api.Handle("/notifications/removed",
			obs.HTTPHandler(http.HandlerFunc(d.Source.Removed), "notifications.removed")).Methods(http.MethodPost)
	}
	api.Handle("/capture/start",
		obs.HTTPHandler(StartCaptureHandler(d.Capture), "capture.start")).Methods(http.MethodPost)
	if d.Status != nil {
		api.Handle("/capture/status", StatusHandler(d.Status)).Methods(http.MethodGet)
	}
	if d.Stream != nil {
		api.Handle("/notifications/stream", d.Stream).Methods(http.MethodGet)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(d.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	return cors(r)
}
