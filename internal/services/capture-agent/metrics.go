package capture_agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capture_ingest_requests_total",
		Help: "Raw notification events received over HTTP, by kind and outcome.",
	}, []string{"kind", "outcome"})
	sinkPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capture_sink_published_total",
		Help: "Payloads handed to an outbound sink.",
	}, []string{"sink"})
	sinkDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capture_sink_dropped_total",
		Help: "Payloads a sink could not accept or publish.",
	}, []string{"sink", "reason"})
	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "capture_stream_clients",
		Help: "Connected event-stream clients.",
	})
)
