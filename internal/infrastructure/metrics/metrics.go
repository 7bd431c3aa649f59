package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CompensationMetrics bundles every metric the engine exports.
type CompensationMetrics struct {
	PlacementsTotal          prometheus.CounterVec
	CommissionsCreatedTotal  prometheus.CounterVec
	CommissionAmountTotal    prometheus.CounterVec
	DuplicateEventsTotal     prometheus.Counter
	ForfeitedAmountTotal     prometheus.CounterVec
	RankTransitionsTotal     prometheus.CounterVec
	PayoutRequestsTotal      prometheus.CounterVec
	PayoutRequestErrorsTotal prometheus.CounterVec
	EventProcessingDuration  prometheus.HistogramVec
	EngineErrorsTotal        prometheus.CounterVec
}

func NewCompensationMetrics() *CompensationMetrics {
	return &CompensationMetrics{
		PlacementsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matrix_placements_total",
				Help: "Matrix placements by kind (direct or spillover)",
			},
			[]string{"kind"},
		),

		CommissionsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commissions_created_total",
				Help: "Commission ledger rows created",
			},
			[]string{"type", "level"},
		),

		CommissionAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_amount_total",
				Help: "Total commission amount accrued in dollars",
			},
			[]string{"type"},
		),

		DuplicateEventsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "duplicate_billing_events_total",
				Help: "Redelivered billing events absorbed as no-ops",
			},
		),

		ForfeitedAmountTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_forfeited_amount_total",
				Help: "Amounts forfeited by rank-based level caps",
			},
			[]string{"level"},
		),

		RankTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_transitions_total",
				Help: "Rank transitions by direction and resulting rank",
			},
			[]string{"direction", "rank"},
		),

		PayoutRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_requests_total",
				Help: "Payout requests by resulting status",
			},
			[]string{"status"},
		),

		PayoutRequestErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_request_errors_total",
				Help: "Rejected payout request attempts by reason",
			},
			[]string{"reason"},
		),

		EventProcessingDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qualifying_event_duration_seconds",
				Help:    "Qualifying-event processing time",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"event_type"},
		),

		EngineErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_errors_total",
				Help: "Engine failures by operation",
			},
			[]string{"operation"},
		),
	}
}

func (m *CompensationMetrics) RecordPlacement(spillover bool) {
	kind := "direct"
	if spillover {
		kind = "spillover"
	}
	m.PlacementsTotal.WithLabelValues(kind).Inc()
}

func (m *CompensationMetrics) RecordCommission(ctype string, level int, amount float64) {
	m.CommissionsCreatedTotal.WithLabelValues(ctype, strconv.Itoa(level)).Inc()
	m.CommissionAmountTotal.WithLabelValues(ctype).Add(amount)
}

func (m *CompensationMetrics) RecordDuplicateEvent() {
	m.DuplicateEventsTotal.Inc()
}

func (m *CompensationMetrics) RecordForfeited(level int, amount float64) {
	m.ForfeitedAmountTotal.WithLabelValues(strconv.Itoa(level)).Add(amount)
}

func (m *CompensationMetrics) RecordRankTransition(direction, rank string) {
	m.RankTransitionsTotal.WithLabelValues(direction, rank).Inc()
}

func (m *CompensationMetrics) RecordPayoutRequest(status string) {
	m.PayoutRequestsTotal.WithLabelValues(status).Inc()
}

func (m *CompensationMetrics) RecordPayoutError(reason string) {
	m.PayoutRequestErrorsTotal.WithLabelValues(reason).Inc()
}

func (m *CompensationMetrics) RecordEventDuration(eventType string, seconds float64) {
	m.EventProcessingDuration.WithLabelValues(eventType).Observe(seconds)
}

func (m *CompensationMetrics) RecordEngineError(operation string) {
	m.EngineErrorsTotal.WithLabelValues(operation).Inc()
}
