package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SinkPolicy retries outbound publishes of captured notifications. Any error
// is retried while ctx is alive, including a per-attempt timeout; once ctx
// is done retries stop.
func SinkPolicy(ctx context.Context, name string, attempts int, log *zap.Logger) Policy {
	return Policy{
		Name:     name,
		Attempts: attempts,
		Backoff:  ExpoJitter{Base: 100 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && ctx.Err() == nil
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("publish retry", zap.String("policy", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && ctx.Err() == nil {
				log.Error("publish retries exhausted", zap.String("policy", name), zap.Error(err))
			}
		},
	}
}
