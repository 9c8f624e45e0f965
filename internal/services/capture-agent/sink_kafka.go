package capture_agent

import (
	"context"
	"time"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"github.com/NordCoder/NotifyCapture/internal/obs/retry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Publisher interface {
	PublishReceived(ctx context.Context, p notification.Payload) error
}

type queued struct {
	span    trace.SpanContext
	payload notification.Payload
}

// KafkaSink forwards delivered payloads to Kafka. Handle only enqueues, so the
// listener is never held up by the broker; a single worker publishes in
// delivery order.
type KafkaSink struct {
	pub      Publisher
	queue    chan queued
	timeout  time.Duration
	attempts int
	log      *zap.Logger
}

func NewKafkaSink(pub Publisher, buffer int, timeout time.Duration, attempts int, log *zap.Logger) *KafkaSink {
	if log == nil {
		log = zap.L()
	}
	if buffer <= 0 {
		buffer = 1
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	log = log.With(zap.String("component", "capture-agent.kafka-sink"))
	return &KafkaSink{
		pub:      pub,
		queue:    make(chan queued, buffer),
		timeout:  timeout,
		attempts: attempts,
		log:      log,
	}
}

// Handle is a notification.Handler. When the queue is full the payload is
// dropped.
func (s *KafkaSink) Handle(ctx context.Context, p notification.Payload) {
	select {
	case s.queue <- queued{span: trace.SpanContextFromContext(ctx), payload: p}:
	default:
		sinkDropped.WithLabelValues("kafka", "queue_full").Inc()
		obs.WithNotification(ctx, s.log, payloadID(p)).Warn("sink queue full, payload dropped")
	}
}

// Run publishes queued payloads until ctx is done, then makes one bounded
// attempt to flush what is left.
func (s *KafkaSink) Run(ctx context.Context) error {
	s.log.Info("sink started", zap.Int("buffer", cap(s.queue)))
	for {
		select {
		case <-ctx.Done():
			s.flush()
			s.log.Info("sink stopped")
			return ctx.Err()
		case q := <-s.queue:
			s.publish(ctx, q)
		}
	}
}

func (s *KafkaSink) publish(ctx context.Context, q queued) {
	if q.span.IsValid() {
		ctx = trace.ContextWithRemoteSpanContext(ctx, q.span)
	}
	err := retry.Do(ctx, func() error {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.pub.PublishReceived(pctx, q.payload)
	}, retry.SinkPolicy(ctx, "sink_kafka", s.attempts, s.log))
	if err != nil {
		sinkDropped.WithLabelValues("kafka", "publish_failed").Inc()
		obs.WithNotification(ctx, s.log, payloadID(q.payload)).Error("publish failed", zap.Error(err))
		return
	}
	sinkPublished.WithLabelValues("kafka").Inc()
}

func (s *KafkaSink) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for {
		select {
		case q := <-s.queue:
			if err := s.pub.PublishReceived(ctx, q.payload); err != nil {
				sinkDropped.WithLabelValues("kafka", "shutdown").Inc()
				continue
			}
			sinkPublished.WithLabelValues("kafka").Inc()
		default:
			return
		}
	}
}

func payloadID(p notification.Payload) string {
	id, _ := p[notification.KeyID].(string)
	return id
}
