package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StrategyLabel = "strategy"
	GoalLabel     = "goal"
	Outcome       = "outcome"
	Satisfiable   = "satisfiable"
	Unsatisfiable = "unsatisfiable"
	Indeterminate = "indeterminate"
	Failed        = "failed"
)

// To add new metrics:
// 1. Register new metrics in RegisterCrossing() below.
// 2. Add an emitter function and inject it where the event happens.
var (
	encodingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossing_encodings_total",
			Help: "Number of puzzle instances encoded to CNF",
		},
		[]string{StrategyLabel, GoalLabel},
	)

	encodingClauses = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crossing_encoding_clauses",
			Help:    "Number of clauses in an encoded puzzle instance",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		},
	)

	encodingVariables = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crossing_encoding_variables",
			Help:    "Number of variables in an encoded puzzle instance",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		},
	)

	solveDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "crossing_solve_duration_seconds",
			Help:       "The duration of a solver call",
			Objectives: map[float64]float64{0.95: 0.05, 0.99: 0.001},
		},
		[]string{Outcome},
	)
)

func RegisterCrossing() {
	prometheus.MustRegister(encodingsTotal)
	prometheus.MustRegister(encodingClauses)
	prometheus.MustRegister(encodingVariables)
	prometheus.MustRegister(solveDurationSummary)
}

// EmitEncoding records one finished encoding.
func EmitEncoding(strategy, goal string, variables, clauses int) {
	encodingsTotal.WithLabelValues(strategy, goal).Inc()
	encodingVariables.Observe(float64(variables))
	encodingClauses.Observe(float64(clauses))
}

// RegisterSolveDuration records a solver call that ended with outcome.
func RegisterSolveDuration(outcome string, duration time.Duration) {
	solveDurationSummary.WithLabelValues(outcome).Observe(duration.Seconds())
}
