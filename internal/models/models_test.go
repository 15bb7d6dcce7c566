package models

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/san-kum/popdyn/internal/dynamo"
)

func TestLogisticTrajectory(t *testing.T) {
	m := NewLogistic(dynamo.Params{"r": 2.5})

	traj, err := m.Simulate(dynamo.Scalar(0.5), 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []float64{0.5, 0.625, 0.5859375, 0.606536865234375}
	if diff := cmp.Diff(want, traj.Column(0), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("trajectory mismatch (-want +got):\n%s", diff)
	}
}

func TestLogisticZeroIsFixed(t *testing.T) {
	for _, r := range []float64{0, 1, 2.5, 3.9, 4} {
		m := NewLogistic(dynamo.Params{"r": r})
		x, err := m.Step(dynamo.Scalar(0))
		if err != nil {
			t.Fatal(err)
		}
		if x[0] != 0 {
			t.Errorf("r=%v: step(0) = %v, want 0", r, x[0])
		}
	}

	m := NewLogistic(dynamo.Params{"r": 0})
	traj, _ := m.Simulate(dynamo.Scalar(0.7), 5)
	for i := 1; i < len(traj); i++ {
		if traj[i][0] != 0 {
			t.Errorf("r=0: x[%d] = %v, want 0", i, traj[i][0])
		}
	}
}

func TestExponentialClosedForm(t *testing.T) {
	tests := []struct {
		r, x0 float64
	}{
		{1.1, 2},
		{0.9, 100},
		{1, 3},
		{-0.5, 1},
	}

	for _, tt := range tests {
		m := NewExponential(dynamo.Params{"r": tt.r})
		traj, err := m.Simulate(dynamo.Scalar(tt.x0), 20)
		if err != nil {
			t.Fatal(err)
		}
		for n, x := range traj {
			want := tt.x0 * math.Pow(tt.r, float64(n))
			if math.Abs(x[0]-want) > 1e-9*math.Max(1, math.Abs(want)) {
				t.Errorf("r=%v: x[%d] = %v, want %v", tt.r, n, x[0], want)
			}
		}
	}
}

func TestMoranPositivity(t *testing.T) {
	for _, r := range []float64{0.5, 2, 3, 5} {
		m := NewMoran(dynamo.Params{"r": r})

		zero, err := m.Step(dynamo.Scalar(0))
		if err != nil {
			t.Fatal(err)
		}
		if zero[0] != 0 {
			t.Errorf("r=%v: step(0) = %v, want 0", r, zero[0])
		}

		for _, x := range []float64{1e-6, 0.1, 1, 2.5, 10} {
			next, _ := m.Step(dynamo.Scalar(x))
			if !(next[0] > 0) {
				t.Errorf("r=%v: step(%v) = %v, want > 0", r, x, next[0])
			}
		}
	}
}

func TestMoranCarryingCapacity(t *testing.T) {
	m := NewMoran(dynamo.Params{"r": 1.5})
	traj, _ := m.Simulate(dynamo.Scalar(0.2), 200)
	if got := traj.Last()[0]; math.Abs(got-1) > 1e-9 {
		t.Errorf("expected convergence to 1, got %v", got)
	}
}

func TestHostParasiteStep(t *testing.T) {
	m := NewHostParasite(dynamo.Params{"b": 2, "a": 0.1, "c": 1})

	next, err := m.Step(dynamo.Vec(10, 1))
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}

	wantX := 2 * 10 * math.Exp(-0.1)
	wantY := 1 * 10 * (1 - math.Exp(-0.1))
	if math.Abs(next[0]-wantX) > 1e-12 || math.Abs(next[0]-18.097) > 1e-3 {
		t.Errorf("hosts = %v, want %v", next[0], wantX)
	}
	if math.Abs(next[1]-wantY) > 1e-12 || math.Abs(next[1]-0.952) > 1e-3 {
		t.Errorf("parasitoids = %v, want %v", next[1], wantY)
	}
}

func TestHostParasiteNoParasitoids(t *testing.T) {
	m := NewHostParasite(dynamo.Params{"b": 1.5, "a": 0.3, "c": 2})
	next, _ := m.Step(dynamo.Vec(40, 0))
	if next[0] != 1.5*40 {
		t.Errorf("hosts = %v, want %v", next[0], 1.5*40)
	}
	if next[1] != 0 {
		t.Errorf("parasitoids = %v, want 0", next[1])
	}
}

func TestMissingParameter(t *testing.T) {
	tests := []struct {
		name  string
		model *dynamo.Model
		x0    dynamo.State
		param string
	}{
		{"exponential", NewExponential(dynamo.Params{}), dynamo.Scalar(1), "r"},
		{"logistic", NewLogistic(dynamo.Params{"k": 1}), dynamo.Scalar(0.5), "r"},
		{"moran", NewMoran(nil), dynamo.Scalar(0.5), "r"},
		{"host_parasite", NewHostParasite(dynamo.Params{"b": 2, "c": 1}), dynamo.Vec(10, 1), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.model.Step(tt.x0)
			var pe *dynamo.ParamError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParamError, got %v", err)
			}
			if pe.Name != tt.param {
				t.Errorf("missing parameter = %q, want %q", pe.Name, tt.param)
			}
			if err := tt.model.Validate(); !errors.Is(err, dynamo.ErrMissingParameter) {
				t.Errorf("Validate() = %v, want ErrMissingParameter", err)
			}
		})
	}
}

func TestShapeMismatch(t *testing.T) {
	if _, err := NewLogistic(dynamo.Params{"r": 3}).Step(dynamo.Vec(0.1, 0.2)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("logistic with 2-vector: %v", err)
	}
	if _, err := NewHostParasite(dynamo.Params{"a": 1, "b": 1, "c": 1}).Step(dynamo.Scalar(1)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("host_parasite with scalar: %v", err)
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		m   dynamo.Map
		dim int
	}{
		{Exponential{}, 1},
		{Logistic{}, 1},
		{Moran{}, 1},
		{HostParasite{}, 2},
	}
	for _, tt := range tests {
		if tt.m.StateDim() != tt.dim {
			t.Errorf("%s: expected state dim %d, got %d", tt.m.Name(), tt.dim, tt.m.StateDim())
		}
	}
}
