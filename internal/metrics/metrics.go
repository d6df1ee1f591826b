// Package metrics exposes Prometheus instrumentation for the voice banking
// agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsStarted counts voice sessions by language.
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_sessions_started_total",
		Help: "Number of voice sessions started, by language.",
	}, []string{"language"})

	// RecipientLookups counts recipient search calls by outcome
	// (found, not_found, ambiguous, error).
	RecipientLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_recipient_lookups_total",
		Help: "Number of recipient lookups, by outcome.",
	}, []string{"outcome"})

	// TransferAttempts counts transfer submissions by outcome
	// (success, failure, transport_error, decode_error, validation_error).
	TransferAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_transfer_attempts_total",
		Help: "Number of transfer attempts, by outcome.",
	}, []string{"outcome"})

	// TransferDuration observes end-to-end transfer submission latency.
	TransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicebank_transfer_duration_seconds",
		Help:    "Latency of transfer submissions to the banking service.",
		Buckets: prometheus.DefBuckets,
	})

	// IntentClassifications counts classifier decisions by intent and language.
	IntentClassifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicebank_intent_classifications_total",
		Help: "Number of utterance classifications, by intent and language.",
	}, []string{"intent", "language"})
)
