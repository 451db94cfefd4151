// Package metrics exposes Prometheus collectors for the crawler service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	matchesIngestedTotal    prometheus.Counter
	matchesInvalidTotal     *prometheus.CounterVec
	matchesMissingTotal     prometheus.Counter
	matchesDuplicateTotal   prometheus.Counter
	summonersDiscovered     prometheus.Counter
	claimsTotal             *prometheus.CounterVec
	riotRequestsTotal       *prometheus.CounterVec
	riotRequestDurationSecs *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		matchesIngestedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_matches_ingested_total",
				Help: "Total number of matches validated and persisted.",
			},
		)

		matchesInvalidTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_matches_invalid_total",
				Help: "Total number of matches rejected by validation, labeled by reason.",
			},
			[]string{"reason"},
		)

		matchesMissingTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_matches_missing_total",
				Help: "Total number of listed match ids that no longer resolve upstream.",
			},
		)

		matchesDuplicateTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_matches_duplicate_total",
				Help: "Total number of listed match ids already present in the store.",
			},
		)

		summonersDiscovered = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_summoners_discovered_total",
				Help: "Total number of summoner upserts issued from match participants.",
			},
		)

		claimsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_claims_total",
				Help: "Total number of frontier claim attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		riotRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riot_api_requests_total",
				Help: "Total number of Riot API requests, labeled by endpoint and status code.",
			},
			[]string{"endpoint", "code"},
		)

		riotRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riot_api_request_duration_seconds",
				Help:    "Histogram of Riot API request latencies, labeled by endpoint.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveMatchIngested increments the persisted-match counter.
func ObserveMatchIngested() {
	matchesIngestedTotal.Inc()
}

// ObserveMatchInvalid increments the invalid-match counter for one reason.
func ObserveMatchInvalid(reason string) {
	matchesInvalidTotal.WithLabelValues(reason).Inc()
}

// ObserveMatchMissing increments the upstream-missing counter.
func ObserveMatchMissing() {
	matchesMissingTotal.Inc()
}

// ObserveMatchesDuplicate adds already-known ids dropped by the dedup filter.
func ObserveMatchesDuplicate(n int) {
	if n > 0 {
		matchesDuplicateTotal.Add(float64(n))
	}
}

// ObserveSummonersDiscovered adds participant upserts issued for one match.
func ObserveSummonersDiscovered(n int) {
	if n > 0 {
		summonersDiscovered.Add(float64(n))
	}
}

// ObserveClaim increments the claim counter for the given outcome.
func ObserveClaim(outcome string) {
	claimsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRiotRequest records one Riot API round trip. A zero code marks a
// transport failure before any response arrived.
func ObserveRiotRequest(endpoint string, code int, duration time.Duration) {
	riotRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	riotRequestDurationSecs.WithLabelValues(endpoint).Observe(duration.Seconds())
}
