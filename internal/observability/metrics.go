package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	connsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kvwire",
			Subsystem: "conn",
			Name:      "active",
			Help:      "Open client connections.",
		},
		[]string{"node"},
	)
	connsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvwire",
			Subsystem: "conn",
			Name:      "accepted_total",
			Help:      "Accepted client connections.",
		},
		[]string{"node"},
	)
	kvRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvwire",
			Subsystem: "kv",
			Name:      "requests_total",
			Help:      "Packets dispatched by type and outcome.",
		},
		[]string{"node", "type", "outcome"},
	)
	kvDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kvwire",
			Subsystem: "kv",
			Name:      "request_duration_seconds",
			Help:      "Dispatch duration including the reply write.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "type"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvwire",
			Subsystem: "conn",
			Name:      "protocol_errors_total",
			Help:      "Connections closed for violating the wire contract.",
		},
		[]string{"node", "reason"},
	)
	storeKeys = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "kvwire",
			Subsystem: "store",
			Name:      "keys",
			Help:      "Keys currently stored.",
		},
		[]string{"node"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kvwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeIgnored = "ignored"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			connsActive, connsTotal, kvRequests, kvDuration,
			protocolErrors, storeKeys, httpRequests, httpDuration,
		)
	})
}

func RecordConnOpened(node string) {
	RegisterMetrics()
	connsTotal.WithLabelValues(node).Inc()
	connsActive.WithLabelValues(node).Inc()
}

func RecordConnClosed(node string) {
	RegisterMetrics()
	connsActive.WithLabelValues(node).Dec()
}

func RecordRequest(node, packetType, outcome string, duration time.Duration) {
	RegisterMetrics()
	kvRequests.WithLabelValues(node, packetType, outcome).Inc()
	kvDuration.WithLabelValues(node, packetType).Observe(duration.Seconds())
}

func RecordProtocolError(node, reason string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(node, reason).Inc()
}

func SetStoreKeys(node string, n int) {
	RegisterMetrics()
	storeKeys.WithLabelValues(node).Set(float64(n))
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
