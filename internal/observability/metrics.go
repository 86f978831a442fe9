// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts committed vote submissions by transition, e.g. "none->up".
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_votes_total",
		Help: "Committed vote submissions by state transition",
	}, []string{"transition"})

	// VoteConflictRetries counts vote transactions retried after a store conflict.
	VoteConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_vote_conflict_retries_total",
		Help: "Vote transactions retried after a serialization or uniqueness conflict",
	})

	// VoteTxDuration records the latency of the vote atomic unit including retries.
	VoteTxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_vote_tx_duration_seconds",
		Help:    "Vote submission latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// ReportsTotal counts appended reports by target type.
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_reports_total",
		Help: "Reports appended to the report ledger",
	}, []string{"target_type"})
)
