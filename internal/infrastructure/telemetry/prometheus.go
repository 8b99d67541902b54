package telemetry

import (
	"net/http"
	"strconv"
	"time"

	appcatalog "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics namespace
const metricsNamespace = "product_dimension"

// Metrics holds the service's Prometheus collectors on a private registry.
// It implements appcatalog.CatalogMetrics.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	templatesCreated  prometheus.Counter
	fieldsPropagated  *prometheus.CounterVec
	variantWrites     *prometheus.CounterVec
	mirrorSyncs       prometheus.Counter
	mirrorFields      *prometheus.CounterVec
	eventsDispatched  *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	unitCacheRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		templatesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "templates_created_total",
			Help:      "Product templates created.",
		}),
		fieldsPropagated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "fields_propagated_total",
			Help:      "Fields copied from a template to its variants, by field.",
		}, []string{"field"}),
		variantWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "variant_writes_total",
			Help:      "Variant writes, by the operation that caused them.",
		}, []string{"source"}),
		mirrorSyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "mirror_syncs_total",
			Help:      "Template mirror refreshes that changed at least one field.",
		}),
		mirrorFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "catalog",
			Name:      "mirror_field_changes_total",
			Help:      "Mirrored template fields changed by a refresh, by field.",
		}, []string{"field"}),
		eventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Domain event handler invocations, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		unitCacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "unit_lookups_total",
			Help:      "Unit of measure cache lookups, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.templatesCreated,
		m.fieldsPropagated,
		m.variantWrites,
		m.mirrorSyncs,
		m.mirrorFields,
		m.eventsDispatched,
		m.httpRequests,
		m.httpDuration,
		m.unitCacheRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding all collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TemplateCreated counts a created template
func (m *Metrics) TemplateCreated() {
	m.templatesCreated.Inc()
}

// FieldsPropagated counts fields copied to variants
func (m *Metrics) FieldsPropagated(fields []catalog.Field) {
	for _, f := range fields {
		m.fieldsPropagated.WithLabelValues(f.String()).Inc()
	}
}

// VariantWritten counts a variant write
func (m *Metrics) VariantWritten(source string) {
	m.variantWrites.WithLabelValues(source).Inc()
}

// MirrorsSynced counts a mirror refresh and the fields it changed
func (m *Metrics) MirrorsSynced(changed []catalog.Field) {
	if len(changed) == 0 {
		return
	}
	m.mirrorSyncs.Inc()
	for _, f := range changed {
		m.mirrorFields.WithLabelValues(f.String()).Inc()
	}
}

// EventDispatched records a handler outcome; it matches event.DispatchObserver
func (m *Metrics) EventDispatched(eventType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.eventsDispatched.WithLabelValues(eventType, outcome).Inc()
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// UnitCacheLookup records a cache hit or miss
func (m *Metrics) UnitCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.unitCacheRequests.WithLabelValues(result).Inc()
}

var _ appcatalog.CatalogMetrics = (*Metrics)(nil)
