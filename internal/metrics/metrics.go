package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors the application exposes.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	permissionChecks *prometheus.CounterVec
	tenantResolved   *prometheus.CounterVec
	auditEntries     prometheus.Counter
}

// New creates the metric set on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juridicai_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "juridicai_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		permissionChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juridicai_permission_checks_total",
			Help: "Permission evaluations by result",
		}, []string{"result"}),
		tenantResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "juridicai_tenant_resolutions_total",
			Help: "Tenant resolution outcomes by source",
		}, []string{"outcome"}),
		auditEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "juridicai_audit_entries_total",
			Help: "Audit entries written",
		}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObservePermissionCheck counts one permission evaluation.
func (m *Metrics) ObservePermissionCheck(granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	m.permissionChecks.WithLabelValues(result).Inc()
}

// ObserveTenantResolution counts one resolution outcome
// ("header", "subdomain", "membership", "failed").
func (m *Metrics) ObserveTenantResolution(outcome string) {
	m.tenantResolved.WithLabelValues(outcome).Inc()
}

// ObserveAuditEntry counts one written audit entry.
func (m *Metrics) ObserveAuditEntry() {
	m.auditEntries.Inc()
}
