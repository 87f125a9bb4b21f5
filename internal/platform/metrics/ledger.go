package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts lifecycle activity on the till.
type LedgerMetrics struct {
	transitions       *prometheus.CounterVec
	insufficientFunds *prometheus.CounterVec
	referenceRetries  prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caisse",
		Name:      "operation_transitions_total",
		Help:      "Accepted operation lifecycle transitions.",
	}, []string{"action", "kind", "currency"})
	insufficientFunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caisse",
		Name:      "insufficient_funds_total",
		Help:      "Withdrawals refused by the solvency guard.",
	}, []string{"stage", "currency"})
	referenceRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "caisse",
		Name:      "reference_retries_total",
		Help:      "Reference candidates discarded because they were already taken.",
	})
	reg.MustRegister(transitions, insufficientFunds, referenceRetries)
	return &LedgerMetrics{
		transitions:       transitions,
		insufficientFunds: insufficientFunds,
		referenceRetries:  referenceRetries,
	}
}

// IncTransition counts an accepted transition.
func (m *LedgerMetrics) IncTransition(action, kind, currency string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(kind), normalizeLabel(currency)).Inc()
}

// IncInsufficientFunds counts a solvency refusal at the given stage ("create" or "decide").
func (m *LedgerMetrics) IncInsufficientFunds(stage, currency string) {
	if m == nil || m.insufficientFunds == nil {
		return
	}
	m.insufficientFunds.WithLabelValues(normalizeLabel(stage), normalizeLabel(currency)).Inc()
}

// IncReferenceRetry counts a discarded reference candidate.
func (m *LedgerMetrics) IncReferenceRetry() {
	if m == nil || m.referenceRetries == nil {
		return
	}
	m.referenceRetries.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
