package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the procedure ledger.
type Metrics struct {
	ProceduresOpened   *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	RefundsFailed      prometheus.Counter
	TransitionDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ProceduresOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_procedures_opened_total",
			Help: "Procedures opened by type",
		}, []string{"type"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_procedure_transitions_total",
			Help: "Successful procedure status transitions by target status",
		}, []string{"to"}),
		RefundsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_procedure_refunds_failed_total",
			Help: "Cancellations rejected because the refund failed",
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "municipal_procedure_transition_duration_seconds",
			Help:    "Duration of transition and cancel operations, lock wait included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementOpened(procType string) {
	m.ProceduresOpened.WithLabelValues(procType).Inc()
}

func (m *Metrics) IncrementTransition(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncrementRefundFailed() {
	m.RefundsFailed.Inc()
}

// ObserveTransition records the duration of a transition.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
