// Package telemetry holds the process-wide prometheus collectors. Collectors
// are registered once at import time; callers only ever increment or observe.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DebateTurns counts completed turns by actor and outcome.
	DebateTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "debate_turns_total",
		Help:      "Completed debate turns by actor and status.",
	}, []string{"actor", "status"})

	// TurnDuration observes per-turn wall time by actor.
	TurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bullbear",
		Name:      "debate_turn_duration_seconds",
		Help:      "Wall time of a single debate turn.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"actor"})

	// SessionsTotal counts finished debate sessions by outcome.
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "debate_sessions_total",
		Help:      "Finished debate sessions by status.",
	}, []string{"status"})

	// VerdictsTotal counts verdicts by recommendation.
	VerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "debate_verdicts_total",
		Help:      "Verdicts delivered, by recommendation.",
	}, []string{"recommendation"})

	// ResearchFetchFailures counts isolated research fetch failures by category.
	ResearchFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "research_fetch_failures_total",
		Help:      "Research category fetches that failed and were degraded to empty.",
	}, []string{"category"})

	// OracleCalls counts LLM completion calls by provider and status.
	OracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "oracle_calls_total",
		Help:      "LLM completion calls by provider and status.",
	}, []string{"provider", "status"})

	// OracleLatency observes LLM completion round-trip time by provider.
	OracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bullbear",
		Name:      "oracle_latency_seconds",
		Help:      "LLM completion round-trip latency.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"provider"})

	// OracleTokens accumulates token usage by provider and direction, for cost
	// tracking when the provider reports usage.
	OracleTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullbear",
		Name:      "oracle_tokens_total",
		Help:      "Token usage reported by the LLM provider.",
	}, []string{"provider", "direction"})
)
