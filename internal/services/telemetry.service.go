package services

import (
	"net/http"

	"diskwatch/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Telemetry exports cycle outcomes as Prometheus metrics
type Telemetry struct {
	registry *prometheus.Registry

	usedPercent   *prometheus.GaugeVec
	overThreshold *prometheus.GaugeVec
	cycles        prometheus.Counter
	notifications *prometheus.CounterVec
	lastCycle     prometheus.Gauge
}

// NewTelemetry registers the collectors on reg. A nil reg gets a fresh registry.
func NewTelemetry(reg *prometheus.Registry) *Telemetry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Telemetry{
		registry: reg,
		usedPercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "diskwatch",
			Name:      "used_percent",
			Help:      "Used percentage of a watched filesystem at the last cycle.",
		}, []string{"filesystem"}),
		overThreshold: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "diskwatch",
			Name:      "over_threshold",
			Help:      "1 if the watched filesystem was at or over the threshold at the last cycle.",
		}, []string{"filesystem"}),
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "diskwatch",
			Name:      "cycles_total",
			Help:      "Completed monitor cycles.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diskwatch",
			Name:      "notifications_total",
			Help:      "Webhook notifications by delivery result.",
		}, []string{"result"}),
		lastCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "diskwatch",
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle started.",
		}),
	}
}

// ObserveCycle updates the metrics from one cycle
func (t *Telemetry) ObserveCycle(result models.CycleResult) {
	t.cycles.Inc()
	t.lastCycle.Set(float64(result.StartedAt.UnixNano()) / 1e9)

	for _, w := range result.Watched {
		t.usedPercent.WithLabelValues(w.Filesystem).Set(w.Percent)
		over := 0.0
		if w.Over {
			over = 1
		}
		t.overThreshold.WithLabelValues(w.Filesystem).Set(over)
	}

	for _, a := range result.Alerts {
		if a.Delivered {
			t.notifications.WithLabelValues("delivered").Inc()
		} else {
			t.notifications.WithLabelValues("failed").Inc()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
