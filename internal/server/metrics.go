package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfquiz_uploads_total",
			Help: "PDF uploads by outcome",
		},
		[]string{"outcome"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfquiz_generation_duration_seconds",
			Help:    "Time spent asking the model for questions",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"outcome"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfquiz_submissions_total",
			Help: "Scored submissions by where the questions came from",
		},
		[]string{"source"},
	)

	scoreRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfquiz_score_ratio",
			Help:    "Score divided by question count of each submission",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)
