// Package metrics exposes Prometheus instruments for searches and dataset reloads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// searchesTotal counts searches by outcome.
	// Labels: "found", "empty_graph", "no_feasible_path", "error"
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyroute_searches_total",
		Help: "Total route searches by outcome",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyroute_search_duration_seconds",
		Help:    "Route search duration",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5},
	})

	candidatePaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyroute_search_candidate_paths",
		Help:    "Airport paths enumerated per search",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
	})

	graphLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skyroute_graph_cache_lookups_total",
		Help: "Routing graph cache lookups by result",
	}, []string{"result"})

	datasetReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyroute_dataset_reloads_total",
		Help: "Successful dataset reloads",
	})

	datasetFlights = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skyroute_dataset_flights",
		Help: "Flights in the current dataset",
	})
)

// ObserveSearch records one finished search.
func ObserveSearch(outcome string, took time.Duration, candidates int) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.Observe(took.Seconds())
	candidatePaths.Observe(float64(candidates))
}

// ObserveGraphLookup records a graph cache hit or miss.
func ObserveGraphLookup(hit bool) {
	if hit {
		graphLookups.WithLabelValues("hit").Inc()
		return
	}
	graphLookups.WithLabelValues("miss").Inc()
}

// ObserveReload records a dataset reload.
func ObserveReload(flights int) {
	datasetReloads.Inc()
	datasetFlights.Set(float64(flights))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
