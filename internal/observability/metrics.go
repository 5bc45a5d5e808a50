package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics is the process-wide metric set, registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	validations  *prometheus.CounterVec
	validateTime *prometheus.HistogramVec
	imports      *prometheus.CounterVec
	importBooks  *prometheus.CounterVec
	aggregateOps *prometheus.HistogramVec
	aggregateCt  *prometheus.CounterVec
	conflicts    *prometheus.CounterVec
	retries      *prometheus.CounterVec
	books        prometheus.Gauge
	vocabulary   *prometheus.GaugeVec
	weightSets   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rv_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rv_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_validations_total",
			Help: "Validated responses by outcome.",
		}, []string{"outcome"}),
		validateTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rv_validation_computation_seconds",
			Help:    "Normalization, extraction and classification time per response.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_imports_total",
			Help: "Ecosystem imports by source/status.",
		}, []string{"source", "status"}),
		importBooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_import_books_total",
			Help: "Books replaced by imports.",
		}, []string{"source"}),
		aggregateOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rv_aggregate_operation_duration_seconds",
			Help:    "Persistence write latency by operation/status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		aggregateCt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_aggregate_operations_total",
			Help: "Persistence writes by operation/status.",
		}, []string{"operation", "status"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_aggregate_conflicts_total",
			Help: "Persistence writes rejected by a conflict.",
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rv_aggregate_retryable_total",
			Help: "Persistence writes that failed transiently.",
		}, []string{"operation"}),
		books: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rv_books",
			Help: "Books in the published vocabulary snapshot.",
		}),
		vocabulary: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rv_vocabulary_words",
			Help: "Vocabulary entries per kind across books.",
		}, []string{"kind"}),
		weightSets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rv_feature_weight_sets",
			Help: "Stored feature weight sets.",
		}),
	}
	m.registry.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.validations, m.validateTime,
		m.imports, m.importBooks,
		m.aggregateOps, m.aggregateCt, m.conflicts, m.retries,
		m.books, m.vocabulary, m.weightSets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the private registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveValidation records one classified response. outcome is "valid",
// "invalid" or an error code.
func (m *Metrics) ObserveValidation(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
	m.validateTime.WithLabelValues(outcome).Observe(dur.Seconds())
}

func (m *Metrics) ValidationCount(outcome string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.validations, outcome)
}

func (m *Metrics) ObserveImport(source, status string, books int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(source, status).Inc()
	if books > 0 {
		m.importBooks.WithLabelValues(source).Add(float64(books))
	}
}

func (m *Metrics) ImportCount(source, status string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.imports, source, status)
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = strings.TrimSpace(name)
	m.aggregateOps.WithLabelValues(name, status).Observe(dur.Seconds())
	m.aggregateCt.WithLabelValues(name, status).Inc()
}

func (m *Metrics) AggregateOperationCount(name, status string) float64 {
	if m == nil {
		return 0
	}
	return counterValue(m.aggregateCt, strings.TrimSpace(name), status)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(strings.TrimSpace(name)).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(strings.TrimSpace(name)).Inc()
}

// SetDatasetSizes refreshes the dataset gauges after a publish.
func (m *Metrics) SetDatasetSizes(books int, words map[string]int) {
	if m == nil {
		return
	}
	m.books.Set(float64(books))
	for kind, n := range words {
		m.vocabulary.WithLabelValues(kind).Set(float64(n))
	}
}

func (m *Metrics) SetFeatureWeightSets(n int) {
	if m == nil {
		return
	}
	m.weightSets.Set(float64(n))
}

// counterValue reads one series; zero when it was never touched.
func counterValue(vec *prometheus.CounterVec, labels ...string) float64 {
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
