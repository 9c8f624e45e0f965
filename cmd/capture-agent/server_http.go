package main

import (
	"net/http"
	"time"

	config "github.com/NordCoder/NotifyCapture/internal/config/capture-agent"
	agent "github.com/NordCoder/NotifyCapture/internal/services/capture-agent"
	"go.uber.org/zap"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, p *pipeline) *http.Server {
	deps := agent.RouterDeps{
		Source:         p.http,
		Capture:        p.bridge,
		Status:         agent.PipelineStatus(p.listener, p.bridge),
		Health:         p.health,
		TokenHash:      cfg.Server.TokenHash,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            logger,
	}
	// a nil *Stream in the interface field would register a dead route
	if p.stream != nil {
		deps.Stream = p.stream
	}

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           agent.NewRouter(deps),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}
