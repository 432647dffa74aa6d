// Package observability exposes Prometheus metrics for the player. The
// collector subscribes to the event bus, so the controller stays free of
// any metrics plumbing.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/events"
)

// Metrics holds the player's Prometheus collectors.
type Metrics struct {
	LoadsStarted  prometheus.Counter
	LoadsAttached prometheus.Counter
	LoadsFailed   prometheus.Counter
	LoadDuration  prometheus.Histogram
	Progress      prometheus.Gauge

	mu        sync.Mutex
	loadBegan time.Time
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoadsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stagehand",
			Name:      "loads_started_total",
			Help:      "Number of project loads begun.",
		}),
		LoadsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stagehand",
			Name:      "loads_attached_total",
			Help:      "Number of project loads that attached a session.",
		}),
		LoadsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stagehand",
			Name:      "loads_failed_total",
			Help:      "Number of project loads that surfaced an error.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stagehand",
			Name:      "load_duration_seconds",
			Help:      "Wall time from load start to session attach.",
			Buckets:   prometheus.DefBuckets,
		}),
		Progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stagehand",
			Name:      "load_progress",
			Help:      "Progress of the current load in [0, 1].",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.LoadsStarted, m.LoadsAttached, m.LoadsFailed, m.LoadDuration, m.Progress)
	}
	return m
}

// Observe subscribes the collectors to the bus.
func (m *Metrics) Observe(bus *events.Bus) {
	bus.LoadStarted.Subscribe(func(string) {
		m.mu.Lock()
		m.loadBegan = time.Now()
		m.mu.Unlock()
		m.LoadsStarted.Inc()
		m.Progress.Set(0)
	})
	bus.Progress.Subscribe(func(p float64) {
		m.Progress.Set(p)
	})
	bus.SessionAttached.Subscribe(func(*domain.Session) {
		m.LoadsAttached.Inc()
		m.Progress.Set(1)
		m.mu.Lock()
		began := m.loadBegan
		m.mu.Unlock()
		if !began.IsZero() {
			m.LoadDuration.Observe(time.Since(began).Seconds())
		}
	})
	bus.Error.Subscribe(func(error) {
		m.LoadsFailed.Inc()
	})
}
