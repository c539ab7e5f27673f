package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for upstream fetches and the session.
type Metrics struct {
	FetchRequests *prometheus.CounterVec   // labels: source={usgs,weather,gage}, outcome={success,network,parse}
	FetchDuration *prometheus.HistogramVec // labels: source
	BreakerState  *prometheus.GaugeVec     // labels: source; 0 closed, 1 half-open, 2 open
	GageFallbacks prometheus.Counter
	CatchesLogged prometheus.Counter
	OutingsBegun  prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishing_log",
			Name:      "fetch_requests_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fishing_log",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fishing_log",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per upstream: 0 closed, 1 half-open, 2 open.",
		}, []string{"source"}),
		GageFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_log",
			Name:      "gage_fallbacks_total",
			Help:      "Depth estimates that used the default gage height.",
		}),
		CatchesLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_log",
			Name:      "catches_logged_total",
			Help:      "Catch entries appended to outings.",
		}),
		OutingsBegun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fishing_log",
			Name:      "outings_begun_total",
			Help:      "Outings started.",
		}),
	}
}

// NewMetrics creates all collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.BreakerState,
		m.GageFallbacks,
		m.CatchesLogged,
		m.OutingsBegun,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
