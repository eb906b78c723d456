package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

// Prometheus metrics
var (
	collaboratorCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_calls_total",
			Help: "Total number of calls to external collaborators",
		},
		[]string{"collaborator", "operation", "outcome"},
	)
	collaboratorCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collaborator_call_duration_seconds",
			Help:    "Duration of calls to external collaborators",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"collaborator", "operation"},
	)
	surveyTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_transitions_total",
			Help: "Survey state machine transitions",
		},
		[]string{"transition"},
	)
	expansionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_expansion_outcomes_total",
			Help: "Follow-up question generation results",
		},
		[]string{"outcome"},
	)
	recommendationRationalesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_rationales_total",
			Help: "Rationales attached to recommendations, by whether a line matched",
		},
		[]string{"matched"},
	)
)

func init() {
	prometheus.MustRegister(collaboratorCallsTotal)
	prometheus.MustRegister(collaboratorCallDuration)
	prometheus.MustRegister(surveyTransitionsTotal)
	prometheus.MustRegister(expansionOutcomesTotal)
	prometheus.MustRegister(recommendationRationalesTotal)
}

// ObserveCall records one collaborator round trip started at start
func ObserveCall(collaborator, operation string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	collaboratorCallsTotal.WithLabelValues(collaborator, operation, outcome).Inc()
	collaboratorCallDuration.WithLabelValues(collaborator, operation).Observe(time.Since(start).Seconds())
}

func ObserveTransition(transition string) {
	surveyTransitionsTotal.WithLabelValues(transition).Inc()
}

func ObserveExpansion(outcome string) {
	expansionOutcomesTotal.WithLabelValues(outcome).Inc()
}

func ObserveRationales(matched, placeholder int) {
	recommendationRationalesTotal.WithLabelValues("true").Add(float64(matched))
	recommendationRationalesTotal.WithLabelValues("false").Add(float64(placeholder))
}
