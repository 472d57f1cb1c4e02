package prometheus

import "github.com/prometheus/client_golang/prometheus"

// Monitor represents a Prometheus monitor
// It contains Prometheus registry and all available metrics
type Monitor struct {
	Registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	FetchDuration     *prometheus.HistogramVec
	SelectorFallbacks *prometheus.CounterVec
	EmptySchedules    *prometheus.CounterVec
	LastSuccess       *prometheus.GaugeVec
}

// New creates a new Monitor
func New() *Monitor {
	reg := prometheus.NewRegistry()
	monitor := &Monitor{
		Registry: reg,

		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_requests_total",
			Help: "Menu lookups by source and result kind",
		}, []string{"source", "result"}),

		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menu_fetch_duration_seconds",
			Help:    "Time spent fetching the upstream page",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"source"}),

		SelectorFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_selector_fallbacks_total",
			Help: "How many times a less specific selector strategy was needed",
		}, []string{"source", "slot"}),

		EmptySchedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_empty_schedules_total",
			Help: "Schedules where every meal slot came back empty",
		}, []string{"source"}),

		LastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "menu_last_success",
			Help: "Unix time of the last successful extraction",
		}, []string{"source"}),
	}

	reg.MustRegister(
		monitor.Requests,
		monitor.FetchDuration,
		monitor.SelectorFallbacks,
		monitor.EmptySchedules,
		monitor.LastSuccess,
	)

	return monitor
}
