package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_call_duration_seconds",
		Help:    "Provider call duration in seconds, retries included",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"op", "status"})

	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_calls_total",
		Help: "Total number of provider calls",
	}, []string{"op"})

	callErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_call_errors_total",
		Help: "Total number of failed provider calls by classification",
	}, []string{"op", "error_type"})

	callRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_call_retries_total",
		Help: "Total number of retry attempts after transient failures",
	}, []string{"op"})
)

func recordCall(op, status string, duration time.Duration) {
	callDuration.WithLabelValues(op, status).Observe(duration.Seconds())
	callsTotal.WithLabelValues(op).Inc()
}

func recordError(op, errorType string) {
	callErrorsTotal.WithLabelValues(op, errorType).Inc()
}

func recordRetry(op string) {
	callRetriesTotal.WithLabelValues(op).Inc()
}
