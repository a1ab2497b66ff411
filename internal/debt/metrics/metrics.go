package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the debt ledger.
type Metrics struct {
	DebtsAssessed    *prometheus.CounterVec
	DebtsSettled     *prometheus.CounterVec
	PlansCreated     prometheus.Counter
	PlanInstallments prometheus.Histogram
	RemindersFailed  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		DebtsAssessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_debts_assessed_total",
			Help: "Debts assessed by type",
		}, []string{"type"}),
		DebtsSettled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "municipal_debts_settled_total",
			Help: "Debts moved to PAID by settlement path",
		}, []string{"path"}),
		PlansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_installment_plans_created_total",
			Help: "Installment plans created",
		}),
		PlanInstallments: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "municipal_installment_plan_size",
			Help:    "Number of installments per created plan",
			Buckets: prometheus.LinearBuckets(3, 1, 10),
		}),
		RemindersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_installment_reminders_failed_total",
			Help: "Reminder scheduling failures after a plan was committed",
		}),
	}
}

func (m *Metrics) IncrementAssessed(debtType string) {
	m.DebtsAssessed.WithLabelValues(debtType).Inc()
}

// IncrementSettled counts a settlement. path is "manual" or "payment".
func (m *Metrics) IncrementSettled(path string) {
	m.DebtsSettled.WithLabelValues(path).Inc()
}

func (m *Metrics) ObservePlan(installments int) {
	m.PlansCreated.Inc()
	m.PlanInstallments.Observe(float64(installments))
}

func (m *Metrics) IncrementReminderFailed() {
	m.RemindersFailed.Inc()
}
