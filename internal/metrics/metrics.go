package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments exported by the monitor.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleErrorsTotal prometheus.Counter
	AlertsSentTotal  prometheus.Counter
	ClosuresTotal    *prometheus.CounterVec
	OpenPositions    prometheus.Gauge
}

// New registers the monitor instruments against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_cycles_total",
			Help: "Number of completed analysis cycles.",
		}),
		CycleErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_cycle_errors_total",
			Help: "Number of cycles that failed and triggered a backoff.",
		}),
		AlertsSentTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_alerts_sent_total",
			Help: "Number of new strong signal alerts sent.",
		}),
		ClosuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_position_closures_total",
			Help: "Number of positions closed, by exit reason.",
		}, []string{"reason"}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_open_positions",
			Help: "Number of currently open tracked positions.",
		}),
	}
}
