package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lotto/internal/lottery/models"
)

// Metrics holds lottery counters. Build once per process; collectors register
// with the default registry.
type Metrics struct {
	TicketsSold       *prometheus.CounterVec
	PrincipalPulled   prometheus.Counter
	PrincipalRefunded prometheus.Counter
	YieldPaid         prometheus.Counter
	PhaseTransitions  *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OutstandingStake  prometheus.Gauge
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers collectors with reg, so tests can use a private registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TicketsSold: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lotto_tickets_sold_total",
			Help: "Tickets issued, by stake size",
		}, []string{"size"}),
		PrincipalPulled: f.NewCounter(prometheus.CounterOpts{
			Name: "lotto_principal_pulled_total",
			Help: "Principal pulled from participants, in the currency's smallest unit",
		}),
		PrincipalRefunded: f.NewCounter(prometheus.CounterOpts{
			Name: "lotto_principal_refunded_total",
			Help: "Principal refunded to participants, in the currency's smallest unit",
		}),
		YieldPaid: f.NewCounter(prometheus.CounterOpts{
			Name: "lotto_yield_paid_total",
			Help: "Yield paid to raffle winners, in the currency's smallest unit",
		}),
		PhaseTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lotto_phase_transitions_total",
			Help: "Phase transitions, by target phase",
		}, []string{"to"}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lotto_operation_errors_total",
			Help: "Failed lottery operations, by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lotto_operation_duration_seconds",
			Help:    "Lottery operation latency including external transfer and venue calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		OutstandingStake: f.NewGauge(prometheus.GaugeOpts{
			Name: "lotto_outstanding_principal",
			Help: "Principal of the current round not yet refunded",
		}),
	}
}

func (m *Metrics) IncrementTicketsSold(size models.TicketSize, amount models.Amount) {
	m.TicketsSold.WithLabelValues(size.String()).Inc()
	m.PrincipalPulled.Add(float64(amount))
}

func (m *Metrics) AddRefunded(amount models.Amount) {
	m.PrincipalRefunded.Add(float64(amount))
}

func (m *Metrics) AddYieldPaid(amount models.Amount) {
	m.YieldPaid.Add(float64(amount))
}

func (m *Metrics) IncrementTransition(to models.Phase) {
	m.PhaseTransitions.WithLabelValues(to.String()).Inc()
}

func (m *Metrics) IncrementError(operation, code string) {
	m.OperationErrors.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveDuration(operation string, seconds float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) SetOutstanding(amount models.Amount) {
	m.OutstandingStake.Set(float64(amount))
}
