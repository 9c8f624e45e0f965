package capture

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ack answers a StartCapture call.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type subscription struct {
	id      string
	handler notification.Handler
}

// Bridge relays records from the listener to subscribers of
// notification.EventReceived.
//
// Load registers the bridge as the listener's relay and Destroy releases it.
// StartCapture only concerns the listener; the bridge forwards records for as
// long as it is registered.
type Bridge struct {
	listener *Listener
	log      *zap.Logger

	mu     sync.Mutex
	detach func()
	// read under deliverMu; a relay reference taken before Destroy must not
	// reach subscribers afterwards
	active atomic.Bool

	subsMu sync.RWMutex
	subs   []subscription

	// serializes broadcasts so subscribers see records in Deliver order
	deliverMu sync.Mutex
}

var (
	_ notification.Deliverer  = (*Bridge)(nil)
	_ notification.Subscriber = (*Bridge)(nil)
)

func NewBridge(l *Listener, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.L()
	}
	return &Bridge{
		listener: l,
		log:      log.With(zap.String("component", "capture.bridge")),
	}
}

// Load attaches the bridge to the listener. Loading twice is a no-op.
func (b *Bridge) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.detach != nil {
		return nil
	}
	detach, err := b.listener.Attach(b)
	if err != nil {
		return fmt.Errorf("attach relay: %w", err)
	}
	b.detach = detach
	b.active.Store(true)
	b.log.Info("bridge registered")
	return nil
}

// Destroy detaches the bridge from the listener. It never fails and may be
// called on an unregistered bridge. It waits for a broadcast in progress, so
// no record reaches subscribers once it returns. Subscribers must not call
// Destroy from their handler.
func (b *Bridge) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.detach == nil {
		return
	}
	b.detach()
	b.detach = nil
	b.active.Store(false)

	// wait out an in-flight Deliver
	b.deliverMu.Lock()
	b.deliverMu.Unlock()
	b.log.Info("bridge unregistered")
}

func (b *Bridge) Registered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detach != nil
}

// StartCapture makes sure the listener is bound to its source. It returns as
// soon as the binding is in place and does not wait for notifications.
func (b *Bridge) StartCapture(ctx context.Context) (Ack, error) {
	if err := b.listener.Start(ctx); err != nil {
		obs.WithTrace(ctx, b.log).Warn("start capture failed", zap.Error(err))
		return Ack{Success: false, Error: err.Error()}, err
	}
	return Ack{Success: true}, nil
}

func (b *Bridge) Subscribe(event string, h notification.Handler) (func(), error) {
	if event != notification.EventReceived {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	id := uuid.NewString()
	b.subsMu.Lock()
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.subsMu.Unlock()
	subscribers.Inc()
	b.log.Debug("subscriber added", zap.String("subscription", id))

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}, nil
}

func (b *Bridge) unsubscribe(id string) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			subscribers.Dec()
			b.log.Debug("subscriber removed", zap.String("subscription", id))
			return
		}
	}
}

// Deliver broadcasts r to the current subscribers. Each handler gets its own
// copy of the payload. With no subscribers, or once the bridge is destroyed,
// the record is dropped.
func (b *Bridge) Deliver(ctx context.Context, r notification.Record) {
	payload := r.Payload()

	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	if !b.active.Load() {
		recordsDropped.WithLabelValues("unregistered").Inc()
		return
	}

	b.subsMu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.subsMu.RUnlock()

	if len(subs) == 0 {
		recordsDropped.WithLabelValues("no_subscribers").Inc()
		return
	}
	for _, s := range subs {
		b.dispatch(ctx, r.ID, s, maps.Clone(payload))
	}
	recordsDelivered.Inc()
	obs.WithNotification(ctx, b.log, r.ID).Debug("record delivered", zap.Int("subscribers", len(subs)))
}

func (b *Bridge) dispatch(ctx context.Context, id string, s subscription, p notification.Payload) {
	defer func() {
		if v := recover(); v != nil {
			handlerPanics.Inc()
			obs.WithNotification(ctx, b.log, id).Error("subscriber panicked",
				zap.String("subscription", s.id),
				zap.Any("panic", v),
			)
		}
	}()
	s.handler(ctx, p)
}
