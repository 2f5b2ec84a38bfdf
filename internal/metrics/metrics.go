// Package metrics exposes Prometheus counters for store dispatches and
// swallowed bridge failures.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/store"
)

const namespace = "listing"

// Metrics owns a private registry so tests can create as many as they
// like without colliding on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	dispatches     *prometheus.CounterVec
	bridgeFailures *prometheus.CounterVec
	listings       *prometheus.GaugeVec
}

// New registers the listing collectors plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_dispatches_total",
			Help:      "Store actions dispatched, by action kind and outcome.",
		}, []string{"kind", "outcome"}),
		bridgeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_failures_total",
			Help:      "Persistence failures swallowed by the bridge, by operation and key.",
		}, []string{"op", "key"}),
		listings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_listings",
			Help:      "Listings currently held by the store, by collection.",
		}, []string{"collection"}),
	}
	m.Registry.MustRegister(
		m.dispatches,
		m.bridgeFailures,
		m.listings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// StoreMiddleware counts every dispatch and tracks collection sizes.
func (m *Metrics) StoreMiddleware() store.Middleware {
	return func(_ context.Context, c store.Commit) {
		m.dispatches.WithLabelValues(c.Action.Kind(), c.Outcome.String()).Inc()
		if c.Outcome != store.Updated {
			return
		}
		studios := 0
		for _, a := range c.Next.Apartments {
			studios += len(a.Studios)
		}
		m.listings.WithLabelValues("apartments").Set(float64(len(c.Next.Apartments)))
		m.listings.WithLabelValues("studios").Set(float64(studios))
		m.listings.WithLabelValues("sale_apartments").Set(float64(len(c.Next.SaleApartments)))
	}
}

// BridgeFailureHook counts swallowed bridge failures.
func (m *Metrics) BridgeFailureHook() bridge.FailureHook {
	return func(op, key string) {
		m.bridgeFailures.WithLabelValues(op, key).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
