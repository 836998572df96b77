// Package metrics exposes Prometheus collectors for the directory service and
// its HTTP gateway.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kbm"

// Metrics holds the collectors of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight *prometheus.GaugeVec

	grpcRequests *prometheus.CounterVec
	grpcDuration *prometheus.HistogramVec

	policyRejections *prometheus.CounterVec
	queryRetries     *prometheus.CounterVec
	auditFailures    prometheus.Counter
	auditLost        prometheus.Counter
	rateLimited      prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled by the gateway.",
		}, []string{"method", "route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "HTTP requests currently being served.",
		}, []string{"method"}),

		grpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC calls handled by the directory service.",
		}, []string{"method", "code"}),

		grpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		policyRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_order_rejections_total",
			Help:      "Requested order columns replaced by the default column.",
		}, []string{"entity", "column"}),

		queryRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_page_retries_total",
			Help:      "Pages retried with the default order column after a failure.",
		}, []string{"entity", "column"}),

		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit writes that failed after the business commit.",
		}),

		auditLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_lost_total",
			Help:      "Audit records not persisted because of a failed audit write.",
		}),

		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "HTTP requests rejected by the rate limiter.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.httpInflight,
		m.grpcRequests, m.grpcDuration,
		m.policyRejections, m.queryRetries,
		m.auditFailures, m.auditLost, m.rateLimited,
	} {
		if err := registerCollector(m.registry, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterPool exports connection pool gauges for pool.
func (m *Metrics) RegisterPool(pool *pgxpool.Pool) error {
	if m == nil || pool == nil {
		return nil
	}
	return registerCollector(m.registry, newPoolCollector(pool))
}

// ---------------------------------------------------------------------------
// Recorders
// ---------------------------------------------------------------------------

// HTTPStarted marks a request as in flight and returns the func that ends it.
func (m *Metrics) HTTPStarted(method string) func(route string, status int) {
	if m == nil {
		return func(string, int) {}
	}
	start := time.Now()
	m.httpInflight.WithLabelValues(method).Inc()
	return func(route string, status int) {
		m.httpInflight.WithLabelValues(method).Dec()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
}

// ObserveGRPC records one finished gRPC call.
func (m *Metrics) ObserveGRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.grpcRequests.WithLabelValues(method, code).Inc()
	m.grpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// PolicyRejected counts an order column replaced by the default.
func (m *Metrics) PolicyRejected(entity, column string) {
	if m == nil {
		return
	}
	m.policyRejections.WithLabelValues(entity, column).Inc()
}

// QueryRetried counts a page retried with the default order.
func (m *Metrics) QueryRetried(entity, column string) {
	if m == nil {
		return
	}
	m.queryRetries.WithLabelValues(entity, column).Inc()
}

// AuditWriteFailed counts a failed audit write and the records it lost.
func (m *Metrics) AuditWriteFailed(pending int) {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
	m.auditLost.Add(float64(pending))
}

// RateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// registerCollector registers collector on reg, ignoring duplicates.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
