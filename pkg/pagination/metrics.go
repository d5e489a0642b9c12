package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page outcomes recorded by gamma_pages_total.
const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeDiscarded = "discarded"
)

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamma_pages_total",
		Help: "Total pages handled by the paginator by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gamma_paginated_fetch_duration_seconds",
		Help:    "Duration of a complete paginated fetch in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	fetchRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gamma_paginated_records",
		Help:    "Number of records returned by a paginated fetch",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
