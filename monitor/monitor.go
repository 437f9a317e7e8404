// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SnapshotFetches prometheus.Counter
	SnapshotErrors  prometheus.Counter
	StaleDiscards   prometheus.Counter
	PollTicks       prometheus.Counter
	RealtimeEvents  prometheus.Counter
	RevealsShown    prometheus.Counter
	FetchLatency    prometheus.Histogram
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetches_total",
			Help:      "Total number of snapshot fetches",
		}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_errors_total",
			Help:      "Total number of failed snapshot fetches",
		}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_discards_total",
			Help:      "Snapshot responses discarded for arriving out of order",
		}),
		PollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Total number of poll ticks",
		}),
		RealtimeEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Change notifications received on the realtime channel",
		}),
		RevealsShown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_shown_total",
			Help:      "Round results surfaced to the player",
		}),
		FetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_latency_seconds",
			Help:      "Snapshot fetch latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SnapshotFetches,
			m.SnapshotErrors,
			m.StaleDiscards,
			m.PollTicks,
			m.RealtimeEvents,
			m.RevealsShown,
			m.FetchLatency,
		)
	}

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return NewMonitorWith(namespace, prometheus.DefaultRegisterer)
}

// NewMonitorWith builds a monitor against an explicit registerer. A nil
// registerer skips registration.
func NewMonitorWith(namespace string, reg prometheus.Registerer) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace, reg),
		startTime: time.Now(),
	}
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("fetches", expvar.Func(func() interface{} {
		return m.Fetches()
	}))

	go http.ListenAndServe(addr, nil)
}

// Fetches returns the number of snapshot fetches observed so far.
func (m *Monitor) Fetches() int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.requestCount
}

func (m *Monitor) ObserveFetch(duration time.Duration, err error) {
	m.metrics.SnapshotFetches.Inc()
	m.metrics.FetchLatency.Observe(duration.Seconds())
	if err != nil {
		m.metrics.SnapshotErrors.Inc()
	}
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}
