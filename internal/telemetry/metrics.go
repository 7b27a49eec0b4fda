package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	DocumentsTotal    *prometheus.CounterVec
	FactsStored       prometheus.Counter
	TransformDuration *prometheus.HistogramVec
	QueueDepth        prometheus.Gauge

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doctran",
			Name:      "documents_total",
			Help:      "Documents processed, by type and final status.",
		}, []string{"type", "status"}),
		FactsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doctran",
			Name:      "facts_stored_total",
			Help:      "Facts successfully written to the record store.",
		}),
		TransformDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doctran",
			Name:      "transform_duration_seconds",
			Help:      "Transform execution time, by type and output.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type", "output"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "doctran",
			Name:      "ingest_queue_depth",
			Help:      "Jobs currently waiting in the ingest queue.",
		}),
		registry: reg,
	}

	reg.MustRegister(m.DocumentsTotal, m.FactsStored, m.TransformDuration, m.QueueDepth)
	return m
}

// Handler serves the registry for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
