package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exports solve counters on its own registry so that several
// recorders can live in one process.
type Recorder struct {
	registry *prometheus.Registry
	solves   *prometheus.CounterVec
	steps    prometheus.Counter
	explored prometheus.Counter
	replans  prometheus.Counter
	duration prometheus.Histogram
}

func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = "gridplan"
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solves_total",
			Help:      "Finished solves by outcome.",
		}, []string{"outcome"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_steps_total",
			Help:      "Joint actions in solved plans.",
		}),
		explored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "states_explored_total",
			Help:      "States taken off search frontiers.",
		}),
		replans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replans_total",
			Help:      "Plans rebuilt after the server rejected a step.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of successful solves.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	r.registry.MustRegister(r.solves, r.steps, r.explored, r.replans, r.duration)
	return r
}

func (r *Recorder) RecordSolved(steps, explored int, elapsed time.Duration) {
	r.solves.WithLabelValues("solved").Inc()
	r.steps.Add(float64(steps))
	r.explored.Add(float64(explored))
	r.duration.Observe(elapsed.Seconds())
}

func (r *Recorder) RecordFailure(reason string) {
	r.solves.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordReplan() {
	r.replans.Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
