package observability

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "arbor"

// Outcome labels for the operations counter.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Metrics holds the Prometheus collectors fed by session lifecycle hooks.
type Metrics struct {
	Operations    *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
	Nodes         prometheus.Gauge
	Depth         prometheus.Gauge
	HistoryCursor prometheus.Gauge
	HistoryLen    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of session commands by outcome",
			},
			[]string{"operation", "outcome"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Total number of rejected commands by reason",
			},
			[]string{"reason"},
		),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Current number of nodes in the tree",
		}),
		Depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_max_depth",
			Help:      "Deepest level currently present in the tree",
		}),
		HistoryCursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_cursor",
			Help:      "Index of the current history snapshot",
		}),
		HistoryLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Number of retained history snapshots",
		}),
	}

	reg.MustRegister(m.Operations, m.Rejections, m.Nodes, m.Depth, m.HistoryCursor, m.HistoryLen)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChange: m.ObserveChange,
		OnReject: m.ObserveReject,
	}
}

// ObserveChange records a successful command.
func (m *Metrics) ObserveChange(e *domain.ChangeEvent) {
	m.Operations.WithLabelValues(string(e.Operation), OutcomeApplied).Inc()
	m.Nodes.Set(float64(e.NodeCount))
	m.Depth.Set(float64(e.MaxDepthSeen))
	m.HistoryCursor.Set(float64(e.History.Cursor))
	m.HistoryLen.Set(float64(e.History.Len))
}

// ObserveReject records a command that left the session unchanged.
func (m *Metrics) ObserveReject(e *domain.RejectEvent) {
	m.Operations.WithLabelValues(string(e.Operation), OutcomeRejected).Inc()
	m.Rejections.WithLabelValues(string(e.Reason)).Inc()
}

// Chain combines hooks so each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChange: func(e *domain.ChangeEvent) {
			for _, h := range hooks {
				if h.OnChange != nil {
					h.OnChange(e)
				}
			}
		},
		OnReject: func(e *domain.RejectEvent) {
			for _, h := range hooks {
				if h.OnReject != nil {
					h.OnReject(e)
				}
			}
		},
	}
}
