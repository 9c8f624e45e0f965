package obs

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WithTrace adds the trace and span ids of ctx to log, when ctx carries a
// valid span.
func WithTrace(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		return nil
	}
	if fs := traceFields(ctx); fs != nil {
		return log.With(fs...)
	}
	return log
}

// WithNotification is WithTrace plus the id of the notification being
// handled, so one record can be followed from ingest to every sink.
func WithNotification(ctx context.Context, log *zap.Logger, id string) *zap.Logger {
	if log == nil {
		return nil
	}
	return log.With(append(traceFields(ctx), zap.String("notification_id", id))...)
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
