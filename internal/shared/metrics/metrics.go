// Package metrics defines Prometheus collectors for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationRequests counts generation attempts by vendor and outcome
	// (success, error, rate_limited, config_error, cache_hit).
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total generation attempts by vendor and outcome.",
	}, []string{"vendor", "outcome"})

	// CacheHits counts responses served from the prompt cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_cache_hits_total",
		Help: "Total prompt cache hits.",
	})

	// CacheMisses counts cache lookups that went to a vendor.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_cache_misses_total",
		Help: "Total prompt cache misses.",
	})

	// RateLimitRejections counts rejected calls by exhausted dimension.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_rate_limit_rejections_total",
		Help: "Total calls rejected by the rate limiter, by dimension.",
	}, []string{"dimension"})

	// TokensConsumed counts vendor tokens consumed by vendor.
	TokensConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_tokens_total",
		Help: "Total tokens consumed by vendor.",
	}, []string{"vendor"})

	// CostUSD accumulates computed spend by vendor.
	CostUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_cost_usd_total",
		Help: "Total computed cost in USD by vendor.",
	}, []string{"vendor"})
)
