package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "empiregen"

// Reroll outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeUsed    = "used"
)

// Recorder counts generations and rerolls. A nil Recorder is a no-op.
type Recorder struct {
	registry    *prometheus.Registry
	generations prometheus.Counter
	failures    *prometheus.CounterVec
	rerolls     *prometheus.CounterVec
	loads       prometheus.Histogram
}

// NewRecorder registers the counters in a fresh registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Empires generated successfully.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Generations that found no valid candidate, by step.",
		}, []string{"step"}),
		rerolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerolls_total",
			Help:      "Reroll requests by category and outcome.",
		}, []string{"category", "outcome"}),
		loads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_load_seconds",
			Help:      "Time spent loading the game catalog.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
	for _, c := range []prometheus.Collector{r.generations, r.failures, r.rerolls, r.loads} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// Generated counts one successful generation.
func (r *Recorder) Generated() {
	if r == nil {
		return
	}
	r.generations.Inc()
}

// GenerationFailed counts one failed generation at step.
func (r *Recorder) GenerationFailed(step string) {
	if r == nil {
		return
	}
	step = strings.TrimSpace(step)
	if step == "" {
		step = "unknown"
	}
	r.failures.WithLabelValues(step).Inc()
}

// Rerolled counts one reroll request.
func (r *Recorder) Rerolled(category, outcome string) {
	if r == nil {
		return
	}
	r.rerolls.WithLabelValues(category, outcome).Inc()
}

// CatalogLoaded observes one catalog load duration in seconds.
func (r *Recorder) CatalogLoaded(seconds float64) {
	if r == nil {
		return
	}
	r.loads.Observe(seconds)
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// It is a no-op when path is empty.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
