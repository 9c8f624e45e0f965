package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestPayloadToStruct(t *testing.T) {
	rec := notification.Record{
		ID:        "abc",
		SourceApp: "br.com.xp.carteira",
		Title:     "Pix recebido",
		Body:      "R$50,00",
		PostedAt:  1000,
	}

	s, err := PayloadToStruct(rec.Payload())
	require.NoError(t, err)

	fields := s.GetFields()
	assert.Equal(t, "abc", fields["id"].GetStringValue())
	assert.Equal(t, "Pix recebido", fields["title"].GetStringValue())
	assert.Equal(t, float64(1000), fields["timestamp"].GetNumberValue())
	assert.False(t, fields["isNew"].GetBoolValue())

	_, isNull := fields["subText"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull, "subText should be null")
	_, isNull = fields["extras"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull, "extras should be null")
}

func TestJSONHandlerDecodes(t *testing.T) {
	var got notification.RawEvent
	h := JSONHandler(func(_ context.Context, key []byte, ev notification.RawEvent) error {
		assert.Equal(t, "k1", string(key))
		got = ev
		return nil
	})

	err := h(context.Background(), []byte("k1"), []byte(`{"key":"abc","packageName":"com.other.app","postTime":5}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Key)
	assert.Equal(t, "com.other.app", got.PackageName)
	assert.Equal(t, int64(5), got.PostTime)
	assert.Nil(t, got.Notification)
}

func TestJSONHandlerRejectsGarbage(t *testing.T) {
	called := false
	h := JSONHandler(func(context.Context, []byte, notification.RawEvent) error {
		called = true
		return nil
	})

	err := h(context.Background(), nil, []byte("not json"))
	require.Error(t, err)
	assert.False(t, called)
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	hs := traceHeaders(trace.ContextWithSpanContext(context.Background(), sc))
	require.NotEmpty(t, hs)

	got := trace.SpanContextFromContext(withRemoteTrace(context.Background(), hs))
	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.Equal(t, sc.SpanID(), got.SpanID())
	assert.True(t, got.IsRemote())

	assert.Equal(t, "", headerCarrier(hs).Get("missing"))
	assert.False(t, trace.SpanContextFromContext(withRemoteTrace(context.Background(), nil)).IsValid())
}

func TestEnsureTopicNeedsBrokers(t *testing.T) {
	err := EnsureTopic(context.Background(), nil, TopicSpec{Name: "x"}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, kafka.TopicAlreadyExists))
}
