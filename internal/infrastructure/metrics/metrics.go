package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filevault"

func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "general_counters",
		},
		[]string{"result"})
}

// NewJobHistogram observes background job durations by job name and outcome.
func NewJobHistogram() *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"job", "result"})
}
