// Package metrics exposes Prometheus instrumentation for the binding
// pipeline and the deferred task queue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-formbind/pkg/binding"
)

// Metrics provides observability for bound forms.
type Metrics struct {
	// Pipeline transitions by event kind and update policy
	Events *prometheus.CounterVec

	// Controls currently wired to a view
	BoundControls prometheus.Gauge

	// Tasks run per queue drain
	DrainSize prometheus.Histogram
}

var _ binding.Observer = (*Metrics)(nil)

// New registers the metrics with reg. A nil registerer uses the default
// Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formbind_pipeline_events_total",
			Help: "Binding pipeline events by kind and update policy",
		}, []string{"kind", "policy"}),

		BoundControls: factory.NewGauge(prometheus.GaugeOpts{
			Name: "formbind_bound_controls",
			Help: "Number of controls currently bound to a view element",
		}),

		DrainSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "formbind_queue_drain_tasks",
			Help:    "Deferred tasks executed per queue drain",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
	}
}

// Observe implements binding.Observer.
func (m *Metrics) Observe(e binding.Event) {
	if m == nil {
		return
	}
	policy := string(e.Policy)
	if policy == "" {
		policy = "none"
	}
	m.Events.WithLabelValues(string(e.Kind), policy).Inc()

	switch e.Kind {
	case binding.EventSetUp:
		m.BoundControls.Inc()
	case binding.EventCleanUp:
		m.BoundControls.Dec()
	}
}

// ObserveDrain records the number of tasks run by one drain.
func (m *Metrics) ObserveDrain(tasks int) {
	if m != nil {
		m.DrainSize.Observe(float64(tasks))
	}
}
