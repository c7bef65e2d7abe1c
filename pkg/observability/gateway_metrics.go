package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Processor call metrics
	gatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "Total number of payment gateway operations",
	}, []string{
		"gateway",      // aim, cim
		"operation",    // charge, capture, void, refund, store, update, remove
		"payment_type", // cc, ach
		"status",       // approved, declined, error, pending, void, refunded, stored, failed
	})

	gatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "gateway_call_duration_seconds",
		Help: "Duration of payment gateway operations, including the processor round trip",
		// Buckets: 50ms to 30s (processor round trips)
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"gateway",
		"operation",
	})

	// Operations refused before any processor call
	gatewayRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_rejected_total",
		Help: "Operations rejected locally as invalid or unsupported",
	}, []string{
		"gateway",
		"operation",
		"reason", // validation, unsupported
	})
)

// RecordGatewayCall records one operation that reached the processor
func RecordGatewayCall(gateway, operation, paymentType, status string, duration time.Duration) {
	gatewayCallsTotal.WithLabelValues(gateway, operation, paymentType, status).Inc()
	gatewayCallDuration.WithLabelValues(gateway, operation).Observe(duration.Seconds())
}

// RecordGatewayRejection records an operation refused without a processor call
func RecordGatewayRejection(gateway, operation, reason string) {
	gatewayRejectedTotal.WithLabelValues(gateway, operation, reason).Inc()
}
