// Package metrics holds the Prometheus collectors. Every method is a no-op
// on a nil *Metrics so callers can run without instrumentation.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kabir-fx/abhiraksha/internal/llm"
)

const Namespace = "abhiraksha"

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	Extractions    *prometheus.CounterVec
	FieldsFound    *prometheus.HistogramVec
	LLMRequests    *prometheus.CounterVec
	LLMLatency     *prometheus.HistogramVec
	Adjudications  *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPLatency    *prometheus.HistogramVec
	InboxQueueSize prometheus.Gauge
}

// New creates all collectors on a private registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Total number of document extractions",
		}, []string{"document", "strategy", "outcome"}),
		FieldsFound: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_fields_found",
			Help:      "Number of non-empty fields per extraction",
			Buckets:   prometheus.LinearBuckets(0, 3, 8),
		}, []string{"document"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of language model requests",
		}, []string{"purpose", "outcome"}),
		LLMLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of language model requests",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 45},
		}, []string{"purpose"}),
		Adjudications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adjudications_total",
			Help:      "Total number of claim adjudications by decision",
		}, []string{"decision"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
		}, []string{"method", "route"}),
		InboxQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inbox_queue_size",
			Help:      "Current number of inbox jobs waiting for a worker",
		}),
	}

	registry.MustRegister(
		m.Extractions,
		m.FieldsFound,
		m.LLMRequests,
		m.LLMLatency,
		m.Adjudications,
		m.HTTPRequests,
		m.HTTPLatency,
		m.InboxQueueSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the private registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveExtraction(document, strategy string, success bool, found int) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(document, strategy, outcome(success)).Inc()
	m.FieldsFound.WithLabelValues(document).Observe(float64(found))
}

func (m *Metrics) ObserveAdjudication(decision string) {
	if m == nil {
		return
	}
	if decision == "" {
		decision = "failed"
	}
	m.Adjudications.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) SetInboxQueueSize(n int) {
	if m == nil {
		return
	}
	m.InboxQueueSize.Set(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// InstrumentGenerator counts and times every model call made through gen.
func InstrumentGenerator(gen llm.Generator, m *Metrics) llm.Generator {
	if m == nil {
		return gen
	}
	return instrumented{gen: gen, m: m}
}

type instrumented struct {
	gen llm.Generator
	m   *Metrics
}

func (g instrumented) Generate(ctx context.Context, req llm.Request) (string, error) {
	start := time.Now()
	out, err := g.gen.Generate(ctx, req)
	g.m.LLMLatency.WithLabelValues(req.Purpose).Observe(time.Since(start).Seconds())
	g.m.LLMRequests.WithLabelValues(req.Purpose, outcome(err == nil)).Inc()
	return out, err
}

func (g instrumented) Model() string { return g.gen.Model() }
