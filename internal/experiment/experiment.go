package experiment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/metrics"
)

type Config struct {
	Model     string
	Params    dynamo.Params
	InitState dynamo.State // nil selects the model's default state
	Steps     int
}

type Result struct {
	Model      string
	Params     dynamo.Params
	Trajectory dynamo.Trajectory
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Experiment struct {
	cfg      Config
	model    *dynamo.Model
	entry    Entry
	metrics  []metrics.Metric
	exporter *metrics.Exporter
	logger   *slog.Logger
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg, logger: slog.Default()}
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.logger = l
	return e
}

func (e *Experiment) WithExporter(x *metrics.Exporter) *Experiment {
	e.exporter = x
	return e
}

// Setup resolves the model from the registry and attaches ms, or the default
// metrics for the model's dimension when ms is nil.
func (e *Experiment) Setup(r *Registry, ms []metrics.Metric) error {
	entry, err := r.Get(e.cfg.Model)
	if err != nil {
		return err
	}
	model, err := r.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return err
	}

	if ms == nil {
		ms = metrics.Defaults(model.StateDim())
	}
	for _, m := range ms {
		model.AddObserver(m)
	}

	e.entry, e.model, e.metrics = entry, model, ms
	return nil
}

func (e *Experiment) Run() (*Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	x0 := e.cfg.InitState
	if x0 == nil {
		x0 = e.entry.DefaultState
	}

	e.logger.Debug("simulating", "model", e.model.Name(), "params", e.model.Params().String(),
		"x0", []float64(x0), "steps", e.cfg.Steps)

	start := time.Now()
	traj, err := e.model.Simulate(x0, e.cfg.Steps)
	elapsed := time.Since(start)
	if err != nil {
		if e.exporter != nil {
			e.exporter.RecordFailure(e.model.Name())
		}
		return nil, fmt.Errorf("%s: %w", e.model.Name(), err)
	}

	result := &Result{
		Model:      e.model.Name(),
		Params:     e.model.Params(),
		Trajectory: traj,
		Metrics:    make(map[string]float64, len(e.metrics)),
		Elapsed:    elapsed,
	}
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if e.exporter != nil {
		e.exporter.RecordRun(e.model.Name(), e.cfg.Steps, e.metrics)
	}

	e.logger.Info("run complete", "model", result.Model, "states", len(traj), "elapsed", elapsed)
	return result, nil
}

// Model returns the underlying model for adding observers.
func (e *Experiment) Model() *dynamo.Model {
	return e.model
}

// Labels returns the component names of the configured model.
func (e *Experiment) Labels() []string {
	return e.entry.Labels
}
