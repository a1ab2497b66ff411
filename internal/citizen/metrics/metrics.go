package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the citizen registry.
type Metrics struct {
	CitizensRegistered prometheus.Counter
	RegisterDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all citizen metrics registered.
func New() *Metrics {
	return &Metrics{
		CitizensRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "municipal_citizens_registered_total",
			Help: "Total number of citizens registered",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "municipal_citizen_register_duration_seconds",
			Help:    "Duration of citizen registration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistered records a successful registration.
func (m *Metrics) IncrementRegistered() {
	m.CitizensRegistered.Inc()
}

// ObserveRegister records the duration of a Register call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
