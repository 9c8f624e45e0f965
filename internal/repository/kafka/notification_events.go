package kafka

import (
	"context"
	"fmt"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"google.golang.org/protobuf/types/known/structpb"
)

// NotificationEventsKafka publishes captured notification payloads as
// google.protobuf.Struct messages keyed by notification id.
type NotificationEventsKafka struct {
	p *Producer
}

func NewNotificationEventsKafka(p *Producer) *NotificationEventsKafka {
	return &NotificationEventsKafka{p: p}
}

func (e *NotificationEventsKafka) PublishReceived(ctx context.Context, p notification.Payload) error {
	msg, err := PayloadToStruct(p)
	if err != nil {
		return err
	}
	id, _ := p[notification.KeyID].(string)
	return e.p.PublishProto(ctx, []byte(id), msg)
}

// PayloadToStruct converts p into a protobuf Struct; nil fields become
// null values.
func PayloadToStruct(p notification.Payload) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(p)
	if err != nil {
		return nil, fmt.Errorf("payload to struct: %w", err)
	}
	return s, nil
}
