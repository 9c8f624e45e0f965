package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	config "github.com/NordCoder/NotifyCapture/internal/config/capture-agent"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/capture-agent.yaml", "path to the yaml config")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real env vars win over it
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting capture-agent",
		zap.String("env", cfg.App.Env),
		zap.String("target", cfg.Capture.TargetPackage),
		zap.String("source", cfg.Source.Kind),
		zap.Bool("kafka_sink", cfg.Sink.Kafka.Enable),
	)

	otelShutdown := initOTel(rootCtx, cfg, logger)
	defer func() { _ = otelShutdown(context.Background()) }()

	p, err := wiring(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("wiring", zap.Error(err))
	}
	defer p.close(logger)

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, p.health, logger)

	sinkErrCh := make(chan error, 1)
	if p.sink != nil {
		go func() { sinkErrCh <- p.sink.Run(rootCtx) }()
	}

	if cfg.Capture.AutoStart {
		if ack, err := p.bridge.StartCapture(rootCtx); !ack.Success {
			logger.Error("auto start failed", zap.Error(err))
		}
	}

	httpSrv := buildHTTPServer(cfg, logger, p)
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, logger) }()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)

	if p.sink != nil {
		select {
		case <-sinkErrCh:
		case <-shCtx.Done():
			logger.Warn("sink did not stop in time")
		}
	}
	logger.Info("bye")
}
