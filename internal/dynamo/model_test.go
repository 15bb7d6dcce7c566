package dynamo

import (
	"errors"
	"math"
	"testing"
)

// halving is x' = k*x with a scalar state.
type halving struct{}

func (halving) Name() string       { return "halving" }
func (halving) StateDim() int      { return 1 }
func (halving) Required() []string { return []string{"k"} }
func (halving) Step(p Params, x State) (State, error) {
	k, err := p.Need("halving", "k")
	if err != nil {
		return nil, err
	}
	return State{k * x[0]}, nil
}

type countingObserver struct {
	seen   []int
	resets int
}

func (c *countingObserver) Observe(t int, x State) { c.seen = append(c.seen, t) }
func (c *countingObserver) Reset() {
	c.resets++
	c.seen = nil
}

func TestSimulateLength(t *testing.T) {
	m := New(halving{}, Params{"k": 0.5})

	for _, steps := range []int{0, 1, 7, 100} {
		traj, err := m.Simulate(Scalar(1), steps)
		if err != nil {
			t.Fatalf("steps=%d: %v", steps, err)
		}
		if len(traj) != steps+1 {
			t.Errorf("steps=%d: expected %d states, got %d", steps, steps+1, len(traj))
		}
		if traj[0][0] != 1 {
			t.Errorf("steps=%d: first state %v, want [1]", steps, traj[0])
		}
	}
}

func TestSimulateValues(t *testing.T) {
	m := New(halving{}, Params{"k": 0.5})
	traj, err := m.Simulate(Scalar(8), 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := []float64{8, 4, 2, 1}
	for i, w := range want {
		if traj[i][0] != w {
			t.Errorf("x[%d] = %v, want %v", i, traj[i][0], w)
		}
	}
	if len(m.Trajectory()) != 4 {
		t.Errorf("model kept %d states, want 4", len(m.Trajectory()))
	}
}

func TestSimulateOverwritesTrajectory(t *testing.T) {
	m := New(halving{}, Params{"k": 2})
	if _, err := m.Simulate(Scalar(1), 10); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Simulate(Scalar(1), 2); err != nil {
		t.Fatal(err)
	}
	if got := len(m.Trajectory()); got != 3 {
		t.Errorf("trajectory length = %d, want 3", got)
	}
}

func TestSimulateDoesNotAliasInitialState(t *testing.T) {
	m := New(halving{}, Params{"k": 2})
	x0 := Scalar(1)
	traj, _ := m.Simulate(x0, 1)
	traj[0][0] = 42
	if x0[0] != 1 {
		t.Error("trajectory aliases the caller's initial state")
	}
}

func TestSimulateErrors(t *testing.T) {
	t.Run("negative steps", func(t *testing.T) {
		m := New(halving{}, Params{"k": 1})
		if _, err := m.Simulate(Scalar(1), -1); !errors.Is(err, ErrNegativeSteps) {
			t.Errorf("error = %v, want ErrNegativeSteps", err)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		m := New(halving{}, Params{})
		traj, err := m.Simulate(Scalar(1), 5)
		if !errors.Is(err, ErrMissingParameter) {
			t.Fatalf("error = %v, want ErrMissingParameter", err)
		}
		if traj != nil {
			t.Error("failed run returned a trajectory")
		}
		var pe *ParamError
		if !errors.As(err, &pe) || pe.Name != "k" {
			t.Errorf("expected ParamError for k, got %v", err)
		}
		var se *SimulationError
		if !errors.As(err, &se) || se.Step != 0 {
			t.Errorf("expected SimulationError at step 0, got %v", err)
		}
	})

	t.Run("missing parameter with zero steps", func(t *testing.T) {
		m := New(halving{}, Params{})
		traj, err := m.Simulate(Scalar(1), 0)
		if err != nil || len(traj) != 1 {
			t.Errorf("zero-step run should not touch parameters: %v, %v", traj, err)
		}
	})

	t.Run("shape mismatch", func(t *testing.T) {
		m := New(halving{}, Params{"k": 1})
		if _, err := m.Simulate(Vec(1, 2), 1); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("error = %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("failure clears stored trajectory", func(t *testing.T) {
		m := New(halving{}, Params{"k": 1})
		if _, err := m.Simulate(Scalar(1), 3); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Simulate(Vec(1, 2), 3); err == nil {
			t.Fatal("expected error")
		}
		if len(m.Trajectory()) != 0 {
			t.Errorf("trajectory not cleared: %v", m.Trajectory())
		}
	})
}

func TestNonFinitePropagates(t *testing.T) {
	m := New(halving{}, Params{"k": math.Inf(1)})
	traj, err := m.Simulate(Scalar(1), 3)
	if err != nil {
		t.Fatalf("non-finite values must not fail the run: %v", err)
	}
	if !math.IsInf(traj[3][0], 1) {
		t.Errorf("expected +Inf, got %v", traj[3][0])
	}
}

func TestValidate(t *testing.T) {
	if err := New(halving{}, Params{"k": 1}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := New(halving{}, Params{"j": 1}).Validate()
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Name != "k" || pe.Model != "halving" {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSimulateResultIsIndependent(t *testing.T) {
	m := New(halving{}, Params{"k": 2})
	traj, err := m.Simulate(Scalar(1), 2)
	if err != nil {
		t.Fatal(err)
	}

	traj[1][0] = -7
	traj[2] = Scalar(99)
	stored := m.Trajectory()
	if stored[1][0] != 2 || stored[2][0] != 4 {
		t.Errorf("stored trajectory changed with the returned one: %v", stored)
	}
}

func TestCheckParam(t *testing.T) {
	if err := CheckParam(halving{}, "k"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckParam(halving{}, "r"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("CheckParam(r) = %v, want ErrUnknownParameter", err)
	}
}

func TestParamsAreCopied(t *testing.T) {
	p := Params{"k": 2}
	m := New(halving{}, p)
	p["k"] = 100
	traj, _ := m.Simulate(Scalar(1), 1)
	if traj[1][0] != 2 {
		t.Errorf("model saw caller mutation: %v", traj[1][0])
	}
}

func TestIterate(t *testing.T) {
	m := New(halving{}, Params{"k": 0.5})
	obs := &countingObserver{}
	m.AddObserver(obs)

	var got []float64
	err := m.Iterate(Scalar(16), 4, func(t int, x State) bool {
		got = append(got, x[0])
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 || got[4] != 1 {
		t.Errorf("Iterate visited %v", got)
	}
	if len(obs.seen) != 5 || obs.resets != 1 {
		t.Errorf("observer saw %v with %d resets", obs.seen, obs.resets)
	}

	visits := 0
	_ = m.Iterate(Scalar(16), 100, func(t int, x State) bool {
		visits++
		return t < 2
	})
	if visits != 3 {
		t.Errorf("early stop visited %d states, want 3", visits)
	}
	if len(m.Trajectory()) != 0 {
		t.Error("Iterate should not retain history")
	}
}
