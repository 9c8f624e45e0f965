package capture

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_events_seen_total",
		Help: "Notification-posted events received by the listener.",
	})
	eventsFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_events_filtered_total",
		Help: "Events discarded because they came from another package.",
	})
	recordsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_records_delivered_total",
		Help: "Records broadcast to at least one subscriber.",
	})
	recordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capture_records_dropped_total",
		Help: "Records dropped before reaching a subscriber.",
	}, []string{"reason"})
	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "capture_subscribers",
		Help: "Active notificationReceived subscriptions.",
	})
	handlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_handler_panics_total",
		Help: "Subscriber handlers that panicked during delivery.",
	})
)
