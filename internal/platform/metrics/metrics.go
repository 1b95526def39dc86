package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AuthFailures     prometheus.Counter
	AccessDenied     *prometheus.CounterVec
	SitesListed      prometheus.Counter
	SiteLookups      *prometheus.CounterVec
	AuditRecords     *prometheus.CounterVec
	AuditWriteErrors prometheus.Counter
	EndpointLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farmgate_auth_failures_total",
			Help: "Total number of requests rejected for missing or invalid identity",
		}),
		AccessDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_access_denied_total",
			Help: "Total number of site requests denied by policy, labeled by tenant",
		}, []string{"tenant_id"}),
		SitesListed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farmgate_site_listings_total",
			Help: "Total number of site listing requests served",
		}),
		SiteLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_site_lookups_total",
			Help: "Total number of single-site lookups, labeled by outcome",
		}, []string{"outcome"}),
		AuditRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "farmgate_audit_records_total",
			Help: "Total number of audit records written, labeled by action",
		}, []string{"action"}),
		AuditWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "farmgate_audit_write_errors_total",
			Help: "Total number of failed audit sink writes",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "farmgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementAuthFailures() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementAccessDenied(tenantID string) {
	if m == nil {
		return
	}
	m.AccessDenied.WithLabelValues(tenantID).Inc()
}

func (m *Metrics) IncrementSitesListed() {
	if m == nil {
		return
	}
	m.SitesListed.Inc()
}

func (m *Metrics) IncrementSiteLookups(outcome string) {
	if m == nil {
		return
	}
	m.SiteLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementAuditRecords(action string) {
	if m == nil {
		return
	}
	m.AuditRecords.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementAuditWriteErrors() {
	if m == nil {
		return
	}
	m.AuditWriteErrors.Inc()
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
