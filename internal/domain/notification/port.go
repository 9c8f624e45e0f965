package notification

import "context"

// Observer receives notification callbacks from a Source.
type Observer interface {
	OnNotificationPosted(ctx context.Context, ev RawEvent)
	OnNotificationRemoved(ctx context.Context, ev RawEvent)
}

// Source is where notification events come from. At most one observer is
// bound at a time.
type Source interface {
	Bind(ctx context.Context, o Observer) error
	Unbind() error
}

type Deliverer interface {
	Deliver(ctx context.Context, r Record)
}

type Handler func(ctx context.Context, p Payload)

type Subscriber interface {
	Subscribe(event string, h Handler) (remove func(), err error)
}
