package metrics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/popdyn/internal/dynamo"
)

func observeAll(m Metric, states ...dynamo.State) {
	m.Reset()
	for t, x := range states {
		m.Observe(t, x)
	}
}

func TestAmplitude(t *testing.T) {
	m := NewAmplitude(1)
	observeAll(m, dynamo.Vec(0, 2), dynamo.Vec(0, math.NaN()), dynamo.Vec(0, -1), dynamo.Vec(0, 5))

	if got := m.Value(); got != 6 {
		t.Errorf("expected amplitude 6, got %v", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero amplitude after reset")
	}
}

func TestMean(t *testing.T) {
	m := NewMean(0)
	observeAll(m, dynamo.Scalar(1), dynamo.Scalar(math.Inf(1)), dynamo.Scalar(3))
	if got := m.Value(); got != 2 {
		t.Errorf("expected mean 2, got %v", got)
	}
	if m.Name() != "mean_x0" {
		t.Errorf("unexpected name %q", m.Name())
	}
}

func TestNonFinite(t *testing.T) {
	m := NewNonFinite()
	observeAll(m, dynamo.Scalar(1), dynamo.Scalar(math.NaN()), dynamo.Vec(1, math.Inf(-1)))
	if got := m.Value(); got != 2 {
		t.Errorf("expected 2 non-finite states, got %v", got)
	}
}

func TestExtinction(t *testing.T) {
	tests := []struct {
		name   string
		states []dynamo.State
		want   float64
	}{
		{"never", []dynamo.State{{1}, {0.5}, {0.7}}, -1},
		{"collapse", []dynamo.State{{1, 1}, {0, 0.5}, {0, 0}, {0, 0}}, 2},
		{"nan is not extinct", []dynamo.State{{math.NaN()}}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewExtinction(1e-9)
			observeAll(m, tt.states...)
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounded(t *testing.T) {
	m := NewBounded(10)
	observeAll(m, dynamo.Scalar(1), dynamo.Scalar(100), dynamo.Scalar(math.NaN()), dynamo.Scalar(-3))
	if got := m.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestDefaults(t *testing.T) {
	if got := len(Defaults(1)); got != 5 {
		t.Errorf("expected 5 metrics for scalar models, got %d", got)
	}
	if got := len(Defaults(2)); got != 7 {
		t.Errorf("expected 7 metrics for two-species models, got %d", got)
	}
}

func TestExporter(t *testing.T) {
	e := NewExporter()
	amp := NewAmplitude(0)
	observeAll(amp, dynamo.Scalar(0.2), dynamo.Scalar(0.8))

	e.RecordRun("logistic", 100, []Metric{amp})
	e.RecordRun("logistic", 50, nil)
	e.RecordFailure("moran")

	families, err := e.Registry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				found[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				found[f.GetName()] = m.GetGauge().GetValue()
			}
		}
	}

	if found["popdyn_runs_total"] != 2 {
		t.Errorf("runs_total = %v, want 2", found["popdyn_runs_total"])
	}
	if found["popdyn_steps_total"] != 150 {
		t.Errorf("steps_total = %v, want 150", found["popdyn_steps_total"])
	}
	if found["popdyn_run_failures_total"] != 1 {
		t.Errorf("run_failures_total = %v, want 1", found["popdyn_run_failures_total"])
	}
	if math.Abs(found["popdyn_metric"]-0.6) > 1e-12 {
		t.Errorf("metric gauge = %v, want 0.6", found["popdyn_metric"])
	}

	path := filepath.Join(t.TempDir(), "popdyn.prom")
	if err := e.WriteTextfile(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `popdyn_runs_total{model="logistic"} 2`) {
		t.Errorf("textfile missing runs counter:\n%s", data)
	}
}
