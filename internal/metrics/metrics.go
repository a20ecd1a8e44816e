// Package metrics exposes Prometheus collectors for the generation pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "timemachine"

const (
	OutcomeParsed   = "parsed"
	OutcomeDegraded = "degraded"
)

type Metrics struct {
	generated      *prometheus.CounterVec
	groundingErrs  prometheus.Counter
	groundingFacts prometheus.Histogram
	modelDuration  prometheus.Histogram
	modelErrors    prometheus.Counter
	storeErrors    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timelines_generated_total",
			Help:      "Timelines generated, by parse outcome",
		}, []string{"outcome"}),
		groundingErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grounding_errors_total",
			Help:      "Search terms whose Wikipedia lookups failed",
		}),
		groundingFacts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grounding_facts",
			Help:      "Grounding facts gathered per request",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		modelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of generative model calls",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}),
		modelErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_call_errors_total",
			Help:      "Failed generative model calls",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Timeline store failures, by operation",
		}, []string{"op"}),
	}
	reg.MustRegister(m.generated, m.groundingErrs, m.groundingFacts, m.modelDuration, m.modelErrors, m.storeErrors)
	return m
}

func (m *Metrics) TimelineGenerated(degraded bool) {
	if m == nil {
		return
	}
	outcome := OutcomeParsed
	if degraded {
		outcome = OutcomeDegraded
	}
	m.generated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GroundingError() {
	if m == nil {
		return
	}
	m.groundingErrs.Inc()
}

func (m *Metrics) GroundingFacts(n int) {
	if m == nil {
		return
	}
	m.groundingFacts.Observe(float64(n))
}

// ModelCall records one model call that started at start.
func (m *Metrics) ModelCall(start time.Time, err error) {
	if m == nil {
		return
	}
	m.modelDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.modelErrors.Inc()
	}
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
