// Package metrics exposes Prometheus counters for the scheduling engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ForecastCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outfit_calendar_forecast_cache_hits_total",
		Help: "Number of forecast lookups served from cache.",
	})
	ForecastCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outfit_calendar_forecast_cache_misses_total",
		Help: "Number of forecast lookups that required a provider fetch.",
	})
	ForecastCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outfit_calendar_forecast_cache_evictions_total",
		Help: "Number of cache entries evicted after their date passed.",
	})
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outfit_calendar_provider_calls_total",
		Help: "Outbound weather provider calls by provider name.",
	}, []string{"provider"})
	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outfit_calendar_provider_failures_total",
		Help: "Failed weather provider calls by provider name.",
	}, []string{"provider"})
	OutfitsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outfit_calendar_outfits_scheduled_total",
		Help: "Number of outfits committed to the schedule.",
	})
	OutfitsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outfit_calendar_outfits_deleted_total",
		Help: "Number of scheduled outfits deleted.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
