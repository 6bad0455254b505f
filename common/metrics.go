package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request/cache counters, registered on the default registry so a host that
// already serves /metrics picks them up for free.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubapi_requests_total",
		Help: "Hub API requests by module and outcome.",
	}, []string{"module", "outcome"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubapi_cache_hits_total",
		Help: "Responses served from the in-process cache, by category.",
	}, []string{"category"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubapi_cache_misses_total",
		Help: "Cache misses that triggered a network fetch, by category.",
	}, []string{"category"})
)

// Outcome labels for RequestsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeNotFound  = "not_found"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
	OutcomeFail      = "fail"
)
