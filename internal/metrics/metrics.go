package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationRequests counts verification endpoint calls by outcome.
	VerificationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borrzu_verification_requests_total",
		Help: "Total number of verification requests processed",
	}, []string{"endpoint", "status"})

	// KeyGenerations counts secret key regenerations, including ones
	// denied by the cooldown.
	KeyGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borrzu_key_generations_total",
		Help: "Total number of secret key generation attempts",
	}, []string{"result"})

	// LogWriteFailures counts api log entries lost to enqueue or insert
	// failures.
	LogWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borrzu_api_log_write_failures_total",
		Help: "Total number of failed api log writes",
	})
)
