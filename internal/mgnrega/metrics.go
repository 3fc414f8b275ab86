package mgnrega

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tierAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgnrega_tier_attempts_total",
		Help: "Data tier attempts by tier and outcome (hit/miss)",
	}, []string{"tier", "outcome"})

	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mgnrega_responses_total",
		Help: "Answered queries by query kind and serving source",
	}, []string{"query", "source"})

	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mgnrega_resolve_duration_seconds",
		Help:    "Time spent walking the tier chain",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
)
