package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competition_draws_total",
			Help: "Total number of draw attempts by outcome",
		},
		[]string{"outcome"},
	)

	DrawCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "competition_draw_candidates",
			Help:    "Number of eligible candidates per completed draw",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	DrawWinners = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "competition_draw_winners",
			Help:    "Number of winners selected per completed draw",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)

	DrawDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "competition_draw_duration_seconds",
			Help: "Time spent running a draw, including storage round trips",
		},
	)

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competition_draw_verifications_total",
			Help: "Total number of draw hash verifications by result",
		},
		[]string{"result"},
	)
)

// Draw outcomes.
const (
	OutcomeDrawn        = "drawn"
	OutcomeAlreadyDrawn = "already_drawn"
	OutcomeNoCandidates = "no_candidates"
	OutcomeError        = "error"
)
