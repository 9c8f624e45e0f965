package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithNotificationAddsIDAndTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x0a},
		SpanID:  trace.SpanID{0x0b},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithNotification(ctx, log, "abc").Info("delivered")
	WithNotification(context.Background(), log, "def").Info("dropped")
	WithTrace(context.Background(), log).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "abc", first["notification_id"])
	assert.Equal(t, sc.TraceID().String(), first["trace_id"])

	second := entries[1].ContextMap()
	assert.Equal(t, "def", second["notification_id"])
	assert.NotContains(t, second, "trace_id")

	assert.Empty(t, entries[2].ContextMap())
	assert.Nil(t, WithNotification(ctx, nil, "x"))
}
