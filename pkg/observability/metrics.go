package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the recorder's collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recorded   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	dispatched prometheus.Counter
	skipped    *prometheus.CounterVec
	storeReqs  *prometheus.CounterVec
	passTime   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domrec_actions_recorded_total",
				Help: "Total number of actions retained by recording sessions",
			},
			[]string{"type"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domrec_actions_rejected_total",
				Help: "Total number of captured actions not retained, by reason",
			},
			[]string{"reason"},
		),
		dispatched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "domrec_replay_dispatched_total",
				Help: "Total number of actions dispatched during replay",
			},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domrec_replay_skipped_total",
				Help: "Total number of actions skipped during replay, by reason",
			},
			[]string{"reason"},
		),
		storeReqs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domrec_store_requests_total",
				Help: "Total number of store endpoint requests",
			},
			[]string{"method", "code"},
		),
		passTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "domrec_replay_pass_seconds",
				Help:    "Duration of replay passes",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
	}
	m.registry.MustRegister(m.recorded, m.rejected, m.dispatched, m.skipped, m.storeReqs, m.passTime)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ActionRecorded counts a retained action.
func (m *Metrics) ActionRecorded(eventType string) {
	if m == nil {
		return
	}
	m.recorded.WithLabelValues(eventType).Inc()
}

// ActionRejected counts a captured action the session dropped.
func (m *Metrics) ActionRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// ReplayDispatched counts an action delivered during replay.
func (m *Metrics) ReplayDispatched() {
	if m == nil {
		return
	}
	m.dispatched.Inc()
}

// ReplaySkipped counts an action skipped during replay.
func (m *Metrics) ReplaySkipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

// ReplayPass records the duration of a finished pass.
func (m *Metrics) ReplayPass(d time.Duration) {
	if m == nil {
		return
	}
	m.passTime.Observe(d.Seconds())
}

// StoreRequest counts a store endpoint response.
func (m *Metrics) StoreRequest(method string, code int) {
	if m == nil {
		return
	}
	m.storeReqs.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
