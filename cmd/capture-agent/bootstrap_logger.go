package main

import (
	config "github.com/NordCoder/NotifyCapture/internal/config/capture-agent"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
