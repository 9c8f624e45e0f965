package main

import (
	"context"

	config "github.com/NordCoder/NotifyCapture/internal/config/capture-agent"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"go.uber.org/zap"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) func(context.Context) error {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		logger.Warn("otel init", zap.Error(err))
		return func(context.Context) error { return nil }
	}
	return closer.Shutdown
}
