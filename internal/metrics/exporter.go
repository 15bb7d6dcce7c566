package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exporter publishes run counters and the latest metric values of each model
// on a private Prometheus registry.
type Exporter struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	steps    *prometheus.CounterVec
	failures *prometheus.CounterVec
	values   *prometheus.GaugeVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popdyn",
			Name:      "runs_total",
			Help:      "Completed simulation runs.",
		}, []string{"model"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popdyn",
			Name:      "steps_total",
			Help:      "Map steps applied across all runs.",
		}, []string{"model"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popdyn",
			Name:      "run_failures_total",
			Help:      "Runs aborted by a missing parameter or shape error.",
		}, []string{"model"}),
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "popdyn",
			Name:      "metric",
			Help:      "Latest value of a per-run metric.",
		}, []string{"model", "metric"}),
	}
	e.registry.MustRegister(e.runs, e.steps, e.failures, e.values)
	return e
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// RecordRun counts a finished run of the given length and stores its metric values.
func (e *Exporter) RecordRun(model string, steps int, ms []Metric) {
	e.runs.WithLabelValues(model).Inc()
	e.steps.WithLabelValues(model).Add(float64(steps))
	for _, m := range ms {
		e.values.WithLabelValues(model, m.Name()).Set(m.Value())
	}
}

func (e *Exporter) RecordFailure(model string) {
	e.failures.WithLabelValues(model).Inc()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}
