package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for payment processing.
type Metrics struct {
	Payments         *prometheus.CounterVec
	GatewayDuration  prometheus.Histogram
	RetriesScheduled prometheus.Counter
	RetriesExhausted prometheus.Counter
	RetriesProcessed *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Payments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_payments_total",
			Help: "Payment attempts by target kind and outcome",
		}, []string{"target", "outcome"}),
		GatewayDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "municipal_payment_settle_duration_seconds",
			Help:    "Duration of the locked settle step, gateway call included",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RetriesScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_payment_retries_scheduled_total",
			Help: "Retry directives recorded after a decline",
		}),
		RetriesExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_payment_retries_exhausted_total",
			Help: "Declines that reached the attempt limit and were not rescheduled",
		}),
		RetriesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_payment_retries_processed_total",
			Help: "Retry directives run by the worker, by result",
		}, []string{"result"}),
	}
}

// IncrementPayment counts an attempt. outcome is "approved", "declined" or "error".
func (m *Metrics) IncrementPayment(target, outcome string) {
	m.Payments.WithLabelValues(target, outcome).Inc()
}

// ObserveSettle records the duration of the settle step.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSettle(start time.Time) {
	m.GatewayDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRetryScheduled() {
	m.RetriesScheduled.Inc()
}

func (m *Metrics) IncrementRetryExhausted() {
	m.RetriesExhausted.Inc()
}

func (m *Metrics) IncrementRetryProcessed(result string) {
	m.RetriesProcessed.WithLabelValues(result).Inc()
}
