// Package metrics defines the Prometheus metrics exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_predictor"

// ResultOK is the result label of a successful request; failures use the error kind name.
const ResultOK = "ok"

var (
	// UploadsTotal counts upload requests by result.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests by result (ok or error kind)",
		},
		[]string{"result"},
	)

	// PredictionsTotal counts prediction requests by result.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by result (ok or error kind)",
		},
		[]string{"result"},
	)

	// UploadDuration observes the time spent loading, fitting and plotting one upload.
	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time spent handling an upload, including plot rendering",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// UploadPoints observes the number of data points per successful upload.
	UploadPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_points",
			Help:      "Data points per successfully fitted upload",
			Buckets:   prometheus.ExponentialBuckets(2, 4, 8),
		},
	)

	// RateLimitedTotal counts requests rejected by the upload throttle.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Upload requests rejected by the rate limiter",
		},
	)

	// ExpiredModelsDeletedTotal counts model slots removed by the cleanup job.
	ExpiredModelsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_models_deleted_total",
			Help:      "Expired session models deleted by the scheduled cleanup",
		},
	)
)
