package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fitness-league/pkg/errors"
)

// FinalizeMetrics records finalize runs. A nil *FinalizeMetrics is valid and
// records nothing.
type FinalizeMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	awards   *prometheus.CounterVec
}

func NewFinalizeMetrics(reg prometheus.Registerer) *FinalizeMetrics {
	factory := promauto.With(reg)
	return &FinalizeMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "league_week_finalize_runs_total",
				Help: "Week finalize runs by outcome.",
			},
			[]string{"status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "league_week_finalize_duration_seconds",
				Help:    "Duration of week finalize runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		awards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "league_week_awards_issued_total",
				Help: "Category awards written by finalize runs.",
			},
			[]string{"category"},
		),
	}
}

func (m *FinalizeMetrics) observeRun(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = errors.CodeOf(err)
		if status == "" {
			status = "error"
		}
	}
	m.runs.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *FinalizeMetrics) observeAward(category string) {
	if m == nil {
		return
	}
	m.awards.WithLabelValues(category).Inc()
}
