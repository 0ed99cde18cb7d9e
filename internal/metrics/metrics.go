// Package metrics provides Prometheus collectors for ranking and catalog operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankingRowsTotal       = "caloriecart_ranking_rows_total"
	MetricCatalogRequestsTotal   = "caloriecart_catalog_requests_total"
	MetricCatalogRateLimitsTotal = "caloriecart_catalog_rate_limits_total"
)

// Metrics contains Prometheus metrics for ranking and catalog collection.
// All operations are thread-safe and safe on a nil receiver.
type Metrics struct {
	rankingRows     *prometheus.CounterVec
	catalogRequests *prometheus.CounterVec
	rateLimits      prometheus.Counter
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		rankingRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankingRowsTotal,
				Help: "Total number of ranked rows by the tier that produced their calories per dollar",
			},
			[]string{"tier"},
		),
		catalogRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCatalogRequestsTotal,
				Help: "Total number of catalog API requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),
		rateLimits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricCatalogRateLimitsTotal,
				Help: "Total number of 429 responses received from the catalog API",
			},
		),
	}
}

// Collectors returns all collectors, for custom registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankingRows,
		m.catalogRequests,
		m.rateLimits,
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveTier counts one row ranked by tier.
func (m *Metrics) ObserveTier(tier string) {
	if m == nil {
		return
	}
	m.rankingRows.WithLabelValues(tier).Inc()
}

// ObserveCatalogRequest counts one catalog call.
func (m *Metrics) ObserveCatalogRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.catalogRequests.WithLabelValues(endpoint, status).Inc()
}

// IncRateLimited counts one 429 from the catalog.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimits.Inc()
}
