package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/NordCoder/NotifyCapture/internal/domain/notification"
	"github.com/NordCoder/NotifyCapture/internal/obs"
	"go.uber.org/zap"
)

// Listener observes notification events from a Source, keeps the ones posted
// by the target package and hands the resulting records to the attached
// relay.
type Listener struct {
	target string
	source notification.Source
	log    *zap.Logger

	mu    sync.Mutex
	bound bool

	relayMu  sync.RWMutex
	relay    notification.Deliverer
	relayGen uint64
}

var _ notification.Observer = (*Listener)(nil)

func NewListener(target string, source notification.Source, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.L()
	}
	return &Listener{
		target: target,
		source: source,
		log:    log.With(zap.String("component", "capture.listener"), zap.String("target", target)),
	}
}

func (l *Listener) Target() string { return l.target }

// Start binds the listener to its source. It is a no-op when already bound.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bound {
		l.log.Debug("listener already bound")
		return nil
	}
	if l.source == nil {
		return ErrNoSource
	}
	if err := l.source.Bind(ctx, l); err != nil {
		return fmt.Errorf("bind source: %w", err)
	}
	l.bound = true
	l.log.Info("listener bound")
	return nil
}

// Stop releases the source binding. Stopping an unbound listener is a no-op.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.bound {
		return nil
	}
	l.bound = false
	if err := l.source.Unbind(); err != nil {
		return fmt.Errorf("unbind source: %w", err)
	}
	l.log.Info("listener unbound")
	return nil
}

func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Attach sets d as the delivery target. Only one relay may be attached; the
// returned func detaches it and is safe to call more than once.
func (l *Listener) Attach(d notification.Deliverer) (detach func(), err error) {
	l.relayMu.Lock()
	defer l.relayMu.Unlock()

	if l.relay != nil {
		return nil, ErrRelayAttached
	}
	l.relay = d
	l.relayGen++
	gen := l.relayGen

	return func() {
		l.relayMu.Lock()
		defer l.relayMu.Unlock()
		if l.relayGen == gen {
			l.relay = nil
		}
	}, nil
}

func (l *Listener) OnNotificationPosted(ctx context.Context, ev notification.RawEvent) {
	eventsSeen.Inc()

	rec, ok := Extract(l.target, ev)
	if !ok {
		eventsFiltered.Inc()
		return
	}

	l.relayMu.RLock()
	relay := l.relay
	l.relayMu.RUnlock()

	if relay == nil {
		recordsDropped.WithLabelValues("no_relay").Inc()
		obs.WithNotification(ctx, l.log, rec.ID).Debug("record dropped: no relay attached")
		return
	}
	relay.Deliver(ctx, rec)
}

// OnNotificationRemoved is intentionally a no-op.
func (l *Listener) OnNotificationRemoved(context.Context, notification.RawEvent) {}
