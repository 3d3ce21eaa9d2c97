package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolgate/internal/domain"
)

type PrometheusMetrics struct {
	refreshDuration *prometheus.HistogramVec
	catalogFetches  *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	registryTools   prometheus.Gauge
	executeDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		refreshDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolgate_refresh_duration_seconds",
				Help:    "Duration of registry refresh cycles in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
		catalogFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolgate_catalog_fetch_total",
				Help: "Total number of backend catalog fetches",
			},
			[]string{"service_id", "status"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolgate_catalog_fetch_duration_seconds",
				Help:    "Duration of backend catalog fetches in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"service_id"},
		),
		registryTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolgate_registry_tools",
				Help: "Number of tools in the current registry snapshot",
			},
		),
		executeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolgate_execute_duration_seconds",
				Help:    "Duration of routed tool executions in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"origin", "status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveRefresh(duration time.Duration, status domain.OutcomeStatus) {
	p.refreshDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCatalogFetch(serviceID string, duration time.Duration, err error) {
	status := domain.OutcomeSuccess
	if err != nil {
		status = domain.OutcomeError
	}
	p.catalogFetches.WithLabelValues(serviceID, string(status)).Inc()
	p.fetchDuration.WithLabelValues(serviceID).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) SetRegistryTools(count int) {
	p.registryTools.Set(float64(count))
}

func (p *PrometheusMetrics) ObserveExecute(metric domain.ExecuteMetric) {
	p.executeDuration.WithLabelValues(string(metric.Origin), string(metric.Status)).Observe(metric.Duration.Seconds())
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
