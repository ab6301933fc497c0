// Package metrics provides Prometheus instrumentation for the chat
// service. It exposes gauges for connection and presence counts, counters
// for message throughput, and histograms for latency and replay sizes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of live WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connections_total",
		Help: "Current number of live WebSocket connections",
	})

	// OnlineIdentities tracks the number of identities with at least one
	// live connection.
	OnlineIdentities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_identities",
		Help: "Current number of identities with at least one live connection",
	})

	// MessagesTotal counts routed messages, labeled by outcome:
	// "public", "private", or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total number of messages processed",
	}, []string{"kind"})

	// MessageLatency records end-to-end routing latency (validate,
	// persist, fan out) in seconds.
	MessageLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_message_latency_seconds",
		Help:    "Message routing latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// HistoryReplaySize records the number of messages replayed per connect.
	HistoryReplaySize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_history_replay_messages",
		Help:    "Number of messages replayed to a connection at connect time",
		Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
	})

	// RejectedConnects counts connection attempts refused by the
	// authentication gate.
	RejectedConnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_connects_total",
		Help: "Total number of connection attempts refused by the auth gate",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		OnlineIdentities,
		MessagesTotal,
		MessageLatency,
		HistoryReplaySize,
		RejectedConnects,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
