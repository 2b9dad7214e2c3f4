// Package metrics exposes Prometheus counters for tenant isolation events.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storekit"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	TenantRejections     *prometheus.CounterVec
	SQLRejections        *prometheus.CounterVec
	GuardDenials         *prometheus.CounterVec
	Provisioning         *prometheus.CounterVec
	ProvisioningDuration *prometheus.HistogramVec
	ScopedConnsInUse     prometheus.Gauge
	ScopedConnsDiscarded prometheus.Counter
	RateLimited          prometheus.Counter
}

// New creates the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		TenantRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenant",
			Name:      "rejections_total",
			Help:      "Requests rejected during tenant resolution, by reason.",
		}, []string{"reason"}),

		SQLRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sqlguard",
			Name:      "rejections_total",
			Help:      "Tenant-scoped statements refused by the SQL surface validator, by reason.",
		}, []string{"reason"}),

		GuardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scopeguard",
			Name:      "denials_total",
			Help:      "Requests denied by the tenant scope guard, by route and reason.",
		}, []string{"route", "reason"}),

		Provisioning: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provisioning",
			Name:      "requests_total",
			Help:      "Provisioning attempts by outcome.",
		}, []string{"outcome"}),

		ProvisioningDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provisioning",
			Name:      "duration_seconds",
			Help:      "Time spent provisioning a store, by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"outcome"}),

		ScopedConnsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tenantdb",
			Name:      "connections_in_use",
			Help:      "Pooled connections currently bound to a tenant schema.",
		}),

		ScopedConnsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tenantdb",
			Name:      "connections_discarded_total",
			Help:      "Connections destroyed because their session state could not be reset.",
		}),

		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimiter",
			Name:      "limited_total",
			Help:      "Requests refused with 429 by the provisioning rate limit.",
		}),
	}

	m.registry.MustRegister(append(m.Collectors(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)...)
	return m
}

// Collectors returns the storekit collectors.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TenantRejections,
		m.SQLRejections,
		m.GuardDenials,
		m.Provisioning,
		m.ProvisioningDuration,
		m.ScopedConnsInUse,
		m.ScopedConnsDiscarded,
		m.RateLimited,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TenantRejected matches tenant.WithRejectHook.
func (m *Metrics) TenantRejected(reason string) {
	m.TenantRejections.WithLabelValues(reason).Inc()
}

// SQLRejected matches tenantdb.WithRejectHook.
func (m *Metrics) SQLRejected(reason string) {
	m.SQLRejections.WithLabelValues(reason).Inc()
}

// GuardDenied matches scopeguard.WithDenyHook.
func (m *Metrics) GuardDenied(route, reason string) {
	m.GuardDenials.WithLabelValues(route, reason).Inc()
}

// ProvisioningDone matches provisioning.WithOutcomeHook.
func (m *Metrics) ProvisioningDone(outcome string, d time.Duration) {
	m.Provisioning.WithLabelValues(outcome).Inc()
	m.ProvisioningDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ConnAcquired matches tenantdb.WithAcquireHook.
func (m *Metrics) ConnAcquired() {
	m.ScopedConnsInUse.Inc()
}

// ConnReleased matches tenantdb.WithReleaseHook.
func (m *Metrics) ConnReleased(discarded bool) {
	m.ScopedConnsInUse.Dec()
	if discarded {
		m.ScopedConnsDiscarded.Inc()
	}
}

// Limited matches ratelimiter.WithLimitHook.
func (m *Metrics) Limited() {
	m.RateLimited.Inc()
}
