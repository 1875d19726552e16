package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pricecalc"

// Metrics holds the application collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	QuotesSaved     *prometheus.CounterVec
	QuotesLoaded    prometheus.Counter
	StaleWarnings   *prometheus.CounterVec
	CatalogImports  *prometheus.CounterVec
	CatalogRows     prometheus.Gauge
	RefreshTriggers *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		QuotesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_saved_total",
			Help:      "Quote save attempts by outcome.",
		}, []string{"mode", "outcome"}),
		QuotesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_loaded_total",
			Help:      "Quotes loaded into a draft.",
		}),
		StaleWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_stale_items_total",
			Help:      "Stale catalog references detected while loading quotes.",
		}, []string{"kind"}),
		CatalogImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_imports_total",
			Help:      "Catalog import batches by outcome.",
		}, []string{"source", "outcome"}),
		CatalogRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_items",
			Help:      "Number of catalog items after the last import.",
		}),
		RefreshTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_refresh_triggers_total",
			Help:      "Pricing refresh trigger attempts by outcome.",
		}, []string{"outcome"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	// Go runtime and process collectors already live on the default registry.
	reg.MustRegister(
		m.QuotesSaved,
		m.QuotesLoaded,
		m.StaleWarnings,
		m.CatalogImports,
		m.CatalogRows,
		m.RefreshTriggers,
		m.HTTPDuration,
	)
	return m
}

// Gatherer merges the application registry with the default one, which is
// where the gorm prometheus plugin registers its collectors.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{m.Registry, prometheus.DefaultGatherer}
}
