package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	datagramsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "numvault",
			Subsystem: "udp",
			Name:      "datagrams_received_total",
			Help:      "Total UDP datagrams received.",
		},
	)
	datagramsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numvault",
			Subsystem: "udp",
			Name:      "datagrams_dropped_total",
			Help:      "Datagrams dropped without a response, by reason.",
		},
		[]string{"reason"},
	)
	responsesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numvault",
			Subsystem: "udp",
			Name:      "responses_sent_total",
			Help:      "Responses sent back to peers, by status.",
		},
		[]string{"status"},
	)
	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "numvault",
			Subsystem: "udp",
			Name:      "send_failures_total",
			Help:      "Response sends refused by the transport.",
		},
	)
	transactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "numvault",
			Subsystem: "engine",
			Name:      "transaction_duration_seconds",
			Help:      "Transaction execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			datagramsReceived,
			datagramsDropped,
			responsesSent,
			sendFailures,
			transactionDuration,
		)
	})
}

func RecordDatagram() {
	RegisterMetrics()
	datagramsReceived.Inc()
}

func RecordDrop(reason string) {
	RegisterMetrics()
	datagramsDropped.WithLabelValues(reason).Inc()
}

func RecordResponse(status string) {
	RegisterMetrics()
	responsesSent.WithLabelValues(status).Inc()
}

func RecordSendFailure() {
	RegisterMetrics()
	sendFailures.Inc()
}

func ObserveTransaction(method string, duration time.Duration) {
	RegisterMetrics()
	transactionDuration.WithLabelValues(method).Observe(duration.Seconds())
}
