package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ChatRequests    *prometheus.CounterVec
	ChatLatency     *prometheus.HistogramVec
	SessionMessages prometheus.Counter
	StoreSaves      prometheus.Counter

	gatherer prometheus.Gatherer
}

var (
	once   sync.Once
	global *Metrics
)

// Global returns the process-wide metrics registered on the default registry.
func Global() *Metrics {
	once.Do(func() {
		global = newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return global
}

// NewIsolated builds metrics on a private registry, for tests and embedding.
func NewIsolated() *Metrics {
	reg := prometheus.NewRegistry()
	return newMetrics(reg, reg)
}

func newMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aichat",
			Name:      "chat_requests_total",
			Help:      "Total chat requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		ChatLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aichat",
			Name:      "chat_request_duration_seconds",
			Help:      "Round-trip latency of chat requests",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),
		SessionMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aichat",
			Name:      "session_messages_total",
			Help:      "Total user messages entered in chat sessions",
		}),
		StoreSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aichat",
			Name:      "credential_store_saves_total",
			Help:      "Total credential store writes",
		}),
		gatherer: gatherer,
	}
	reg.MustRegister(m.ChatRequests, m.ChatLatency, m.SessionMessages, m.StoreSaves)
	return m
}

func (m *Metrics) ObserveChat(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(provider, outcome).Inc()
	m.ChatLatency.WithLabelValues(provider).Observe(took.Seconds())
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
