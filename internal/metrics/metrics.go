// Package metrics exposes Prometheus collectors for breathing sessions, the
// Zen API and the remote guide. All recording methods are safe on a nil
// *Metrics so callers never need to check whether metrics are enabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bloom"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted   *prometheus.CounterVec
	sessionsCompleted *prometheus.CounterVec
	sessionsAbandoned *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	sessionDuration   prometheus.Histogram
	observerFailures  *prometheus.CounterVec

	coinsAwarded    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	guideConns      prometheus.Gauge
	elementsGrown   *prometheus.CounterVec
	leaderboardHits *prometheus.CounterVec
}

// New registers every collector. withRuntime adds the Go and process
// collectors, which the server wants and tests do not.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: reg,
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "started_total",
			Help: "Breathing sessions started, by intention.",
		}, []string{"intention"}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "completed_total",
			Help: "Breathing sessions that ran every cycle, by intention.",
		}, []string{"intention"}),
		sessionsAbandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "abandoned_total",
			Help: "Breathing sessions stopped before completion, by intention.",
		}, []string{"intention"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "session", Name: "active",
			Help: "Sessions currently running.",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "session", Name: "duration_seconds",
			Help:    "Wall-clock length of completed sessions.",
			Buckets: []float64{30, 60, 90, 120, 180, 240, 300, 600},
		}),
		observerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "session", Name: "observer_failures_total",
			Help: "Completion observers that returned an error.",
		}, []string{"observer"}),
		coinsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zen", Name: "coins_awarded_total",
			Help: "Zen coins credited, by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		guideConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "guide", Name: "connections",
			Help: "Open remote guide WebSocket connections.",
		}),
		elementsGrown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "garden", Name: "elements_grown_total",
			Help: "Oasis elements grown, by type.",
		}, []string{"type"}),
		leaderboardHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "zen", Name: "leaderboard_cache_total",
			Help: "Leaderboard cache lookups, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.sessionsStarted, m.sessionsCompleted, m.sessionsAbandoned,
		m.activeSessions, m.sessionDuration, m.observerFailures,
		m.coinsAwarded, m.httpRequests, m.httpDuration, m.guideConns,
		m.elementsGrown, m.leaderboardHits,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SessionStarted increments the started counter and the active gauge.
func (m *Metrics) SessionStarted(intention string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(intention).Inc()
	m.activeSessions.Inc()
}

// SessionCompleted records a finished session and its wall-clock length.
func (m *Metrics) SessionCompleted(intention string, d time.Duration) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(intention).Inc()
	m.sessionDuration.Observe(d.Seconds())
	m.activeSessions.Dec()
}

// SessionAbandoned records a session stopped early.
func (m *Metrics) SessionAbandoned(intention string) {
	if m == nil {
		return
	}
	m.sessionsAbandoned.WithLabelValues(intention).Inc()
	m.activeSessions.Dec()
}

// ObserverFailed counts a completion observer error.
func (m *Metrics) ObserverFailed(observer string) {
	if m == nil {
		return
	}
	m.observerFailures.WithLabelValues(observer).Inc()
}

// CoinsAwarded adds amount under reason.
func (m *Metrics) CoinsAwarded(reason string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.coinsAwarded.WithLabelValues(reason).Add(float64(amount))
}

// ElementGrown counts one oasis element of the given type.
func (m *Metrics) ElementGrown(kind string) {
	if m == nil {
		return
	}
	m.elementsGrown.WithLabelValues(kind).Inc()
}

// LeaderboardLookup counts a cache hit or miss.
func (m *Metrics) LeaderboardLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.leaderboardHits.WithLabelValues(result).Inc()
}

// GuideConnected adjusts the open connection gauge by delta.
func (m *Metrics) GuideConnected(delta int) {
	if m == nil {
		return
	}
	m.guideConns.Add(float64(delta))
}

// GinMiddleware records request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
