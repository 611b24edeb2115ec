// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CachedTenants = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cached_tenants",
			Help: "Number of tenant records currently held in the directory cache.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenant records loaded from the database.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant directory load errors.",
		})

	TenantResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolve_total",
			Help: "Cumulative number of per-request tenant resolutions by strategy.",
		},
		[]string{"strategy"})

	TenantResolveErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_resolve_errors_total",
			Help: "Cumulative number of failed tenant resolutions.",
		})
)

func init() {
	prometheus.MustRegister(
		CachedTenants,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		TenantResolveTotal,
		TenantResolveErrorsTotal,
	)
}
