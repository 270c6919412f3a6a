package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the workflow collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	Registry *prometheus.Registry

	transitions *prometheus.CounterVec
	auditWrites *prometheus.CounterVec
	allocations prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "civic",
				Subsystem: "workflow",
				Name:      "transitions_total",
				Help:      "Application workflow operations by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		auditWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "civic",
				Subsystem: "audit",
				Name:      "writes_total",
				Help:      "Audit recorder outcomes (written, skipped, invalid, failed).",
			},
			[]string{"outcome"},
		),
		allocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "civic",
				Subsystem: "sequence",
				Name:      "allocations_total",
				Help:      "Ward sequence numbers issued (including ones rolled back).",
			},
		),
	}
	m.Registry.MustRegister(
		m.transitions,
		m.auditWrites,
		m.allocations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Transition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) AuditWrite(outcome string) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Allocation() {
	if m == nil {
		return
	}
	m.allocations.Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Transitions() *prometheus.CounterVec { return m.transitions }
func (m *Metrics) AuditWrites() *prometheus.CounterVec { return m.auditWrites }
func (m *Metrics) Allocations() prometheus.Counter     { return m.allocations }
