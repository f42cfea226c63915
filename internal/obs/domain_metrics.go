package obs

import "github.com/prometheus/client_golang/prometheus"

// Result labels shared by the domain counters.
const (
	ResultAccepted   = "accepted"
	ResultRejected   = "rejected"
	ResultAllowed    = "allowed"
	ResultRedirected = "redirected"
)

// DomainMetrics counts storefront outcomes.
type DomainMetrics struct {
	QuantityChanges *prometheus.CounterVec
	AccessGuard     *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on reg.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &DomainMetrics{
		QuantityChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_changes_total",
			Help:      "Quantity commits by outcome.",
		}, []string{"result"}),
		AccessGuard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_guard_total",
			Help:      "Guarded page requests by outcome.",
		}, []string{"result"}),
	}
	register(reg, &m.QuantityChanges)
	register(reg, &m.AccessGuard)
	return m
}

// QuantityChange records one commit outcome. Safe on a nil receiver.
func (m *DomainMetrics) QuantityChange(result string) {
	if m == nil || m.QuantityChanges == nil {
		return
	}
	m.QuantityChanges.WithLabelValues(result).Inc()
}

// GuardDecision records one guard outcome. Safe on a nil receiver.
func (m *DomainMetrics) GuardDecision(result string) {
	if m == nil || m.AccessGuard == nil {
		return
	}
	m.AccessGuard.WithLabelValues(result).Inc()
}
