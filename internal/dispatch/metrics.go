package dispatch

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatcher's Prometheus collectors.
type Metrics struct {
	Requests     *prometheus.CounterVec
	PollAttempts prometheus.Histogram
	PollTimeouts prometheus.Counter
	Latency      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apicase",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "HTTP requests sent, by method and status code.",
		}, []string{"method", "code"}),
		PollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apicase",
			Subsystem: "dispatch",
			Name:      "poll_attempts",
			Help:      "Requests sent per polled test case.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		PollTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apicase",
			Subsystem: "dispatch",
			Name:      "poll_timeouts_total",
			Help:      "Polls that ended without the awaited body content.",
		}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apicase",
			Subsystem: "dispatch",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.PollAttempts, m.PollTimeouts, m.Latency)
	}
	return m
}

func (m *Metrics) observeRequest(method string, code int, seconds float64) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.Requests.WithLabelValues(method, label).Inc()
	if code > 0 {
		m.Latency.WithLabelValues(method).Observe(seconds)
	}
}
