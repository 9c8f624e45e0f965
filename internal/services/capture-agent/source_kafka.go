package capture_agent

import (
	"context"
	"errors"
	"sync"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	kafkax "github.com/NordCoder/NotifyCapture/internal/repository/kafka"
	"go.uber.org/zap"
)

type MessageConsumer interface {
	Consume(ctx context.Context, h kafkax.Handler) error
}

// KafkaSource feeds posted events read from a Kafka topic to the bound
// observer. The consumer runs from Bind until Unbind.
type KafkaSource struct {
	base          context.Context
	cons          MessageConsumer
	accessGranted bool
	log           *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ notification.Source = (*KafkaSource)(nil)

// NewKafkaSource ties the consumer lifetime to base rather than to the
// context of the Bind call, which usually belongs to a short request.
func NewKafkaSource(base context.Context, cons MessageConsumer, accessGranted bool, log *zap.Logger) *KafkaSource {
	if log == nil {
		log = zap.L()
	}
	return &KafkaSource{
		base:          base,
		cons:          cons,
		accessGranted: accessGranted,
		log:           log.With(zap.String("component", "capture-agent.kafka-source")),
	}
}

func (s *KafkaSource) Bind(_ context.Context, o notification.Observer) error {
	if !s.accessGranted {
		return ErrAccessDenied
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSourceBusy
	}

	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})
	h := kafkax.JSONHandler(func(ctx context.Context, _ []byte, ev notification.RawEvent) error {
		o.OnNotificationPosted(ctx, ev)
		return nil
	})

	go func() {
		defer close(done)
		if err := s.cons.Consume(ctx, h); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("consume stopped", zap.Error(err))
		}
	}()

	s.cancel, s.done = cancel, done
	return nil
}

// Unbind stops the consumer and waits for the in-flight message to finish.
func (s *KafkaSource) Unbind() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
