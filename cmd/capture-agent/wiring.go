package main

import (
	"context"
	"errors"
	"io"

	"github.com/NordCoder/NotifyCapture/internal/capture"
	config "github.com/NordCoder/NotifyCapture/internal/config/capture-agent"
	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	kafkax "github.com/NordCoder/NotifyCapture/internal/repository/kafka"
	agent "github.com/NordCoder/NotifyCapture/internal/services/capture-agent"
	"go.uber.org/zap"
)

type pipeline struct {
	listener *capture.Listener
	bridge   *capture.Bridge
	http     *agent.HTTPSource
	stream   *agent.Stream
	sink     *agent.KafkaSink
	closers  []io.Closer
}

func buildSource(ctx context.Context, cfg *config.Config, l *zap.Logger, p *pipeline) notification.Source {
	switch cfg.Source.Kind {
	case config.SourceKafka:
		cons := kafkax.BootstrapConsumer(ctx, cfg.Source.Kafka.AsConsumerConfig(), l).WithLogger(l)
		p.closers = append(p.closers, cons)
		l.Info("kafka source initialized",
			zap.Strings("brokers", cfg.Source.Kafka.Brokers),
			zap.String("topic", cfg.Source.Kafka.Topic),
			zap.String("group_id", cfg.Source.Kafka.GroupID),
		)
		return agent.NewKafkaSource(ctx, cons, cfg.Source.AccessGranted, l)
	default:
		p.http = agent.NewHTTPSource(cfg.Source.AccessGranted, l)
		return p.http
	}
}

func wiring(ctx context.Context, cfg *config.Config, l *zap.Logger) (*pipeline, error) {
	p := &pipeline{}
	src := buildSource(ctx, cfg, l, p)

	p.listener = capture.NewListener(cfg.Capture.TargetPackage, src, l)
	p.bridge = capture.NewBridge(p.listener, l)
	if err := p.bridge.Load(); err != nil {
		p.close(l)
		return nil, err
	}

	if cfg.Sink.Kafka.Enable {
		prod := kafkax.BootstrapProducer(ctx, cfg.Sink.Kafka.Brokers, cfg.Sink.Kafka.Topic, l)
		p.closers = append(p.closers, prod)
		p.sink = agent.NewKafkaSink(kafkax.NewNotificationEventsKafka(prod),
			cfg.Sink.Kafka.Buffer, cfg.Sink.Kafka.Timeout, cfg.Sink.Kafka.Attempts, l)
		if _, err := p.bridge.Subscribe(notification.EventReceived, p.sink.Handle); err != nil {
			p.close(l)
			return nil, err
		}
	}
	if cfg.Sink.Stream.Enable {
		p.stream = agent.NewStream(p.bridge, cfg.Sink.Stream.Buffer, l)
	}
	return p, nil
}

// health fails once the bridge lost its registration, e.g. during shutdown.
func (p *pipeline) health(context.Context) error {
	if !p.bridge.Registered() {
		return errors.New("bridge not registered")
	}
	return nil
}

// close tears the pipeline down in reverse order of construction. It is safe
// to call on a partially built pipeline.
func (p *pipeline) close(l *zap.Logger) {
	if p.bridge != nil {
		p.bridge.Destroy()
	}
	if p.listener != nil {
		if err := p.listener.Stop(); err != nil {
			l.Warn("listener stop", zap.Error(err))
		}
	}
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			l.Warn("close", zap.Error(err))
		}
	}
}
