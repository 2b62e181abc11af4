// Package metrics exposes Prometheus collectors for uploads and renders.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datadash"

// Upload outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics groups the application's collectors on a private registry so
// tests can create as many instances as they like
type Metrics struct {
	registry *prometheus.Registry

	Uploads        *prometheus.CounterVec
	UploadRows     prometheus.Histogram
	Renders        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
}

// New creates and registers every collector. sessions, when non-nil, is
// sampled on each scrape for the live session gauge.
func New(sessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded files by format and outcome.",
		}, []string{"format", "outcome"}),
		UploadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_rows",
			Help:      "Data rows per accepted upload.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Rendered charts by kind.",
		}, []string{"kind"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_seconds",
			Help:      "Time spent filtering and rendering a chart.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.Uploads,
		m.UploadRows,
		m.Renders,
		m.RenderDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if sessions != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live browser sessions holding an uploaded table.",
		}, func() float64 { return float64(sessions()) }))
	}
	return m
}

// ObserveUpload records one upload attempt
func (m *Metrics) ObserveUpload(format, outcome string, rows int) {
	m.Uploads.WithLabelValues(format, outcome).Inc()
	if outcome == OutcomeAccepted {
		m.UploadRows.Observe(float64(rows))
	}
}

// ObserveRender records one chart render that began at start
func (m *Metrics) ObserveRender(kind string, start time.Time) {
	m.Renders.WithLabelValues(kind).Inc()
	m.RenderDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
