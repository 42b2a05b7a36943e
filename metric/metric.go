// Package metric exports gridex operational metrics to Prometheus.
package metric

import (
	"time"

	"github.com/hupe1980/gridex"
	"github.com/prometheus/client_golang/prometheus"
)

var _ gridex.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements gridex.MetricsCollector with Prometheus
// metrics. All metrics carry the collection name as a constant label.
type PrometheusCollector struct {
	latency   *prometheus.HistogramVec
	records   prometheus.Counter
	populated prometheus.Gauge
	carried   prometheus.Counter
	dropped   prometheus.Counter
	publishes *prometheus.CounterVec
	density   prometheus.Gauge
}

// NewPrometheusCollector creates the collector for collection and registers
// its metrics with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer, collection string) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"collection": collection}

	c := &PrometheusCollector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gridex_operation_latency_seconds",
			Help:        "Latency of build and reindex operations",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"op", "status"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridex_build_records_total",
			Help:        "Total records scanned by builds",
			ConstLabels: labels,
		}),
		populated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridex_build_populated_cells",
			Help:        "Populated cells of the last successful build",
			ConstLabels: labels,
		}),
		carried: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridex_reindex_carried_cells_total",
			Help:        "Total cells carried onto a published index space",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridex_reindex_dropped_cells_total",
			Help:        "Total cells dropped because they fell outside the published index space",
			ConstLabels: labels,
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gridex_publishes_total",
			Help:        "Total publications",
			ConstLabels: labels,
		}, []string{"status"}),
		density: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridex_published_density_ratio",
			Help:        "Density of the last published grid (0.0-1.0)",
			ConstLabels: labels,
		}),
	}

	for _, m := range []prometheus.Collector{
		c.latency, c.records, c.populated, c.carried, c.dropped, c.publishes, c.density,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordBuild implements gridex.MetricsCollector.
func (c *PrometheusCollector) RecordBuild(records, populated int, d time.Duration, err error) {
	c.latency.WithLabelValues("build", status(err)).Observe(d.Seconds())
	c.records.Add(float64(records))
	if err == nil {
		c.populated.Set(float64(populated))
	}
}

// RecordReindex implements gridex.MetricsCollector.
func (c *PrometheusCollector) RecordReindex(carried, dropped int, d time.Duration, err error) {
	c.latency.WithLabelValues("reindex", status(err)).Observe(d.Seconds())
	c.carried.Add(float64(carried))
	c.dropped.Add(float64(dropped))
}

// RecordPublish implements gridex.MetricsCollector.
func (c *PrometheusCollector) RecordPublish(density float64, err error) {
	c.publishes.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.density.Set(density)
	}
}
