package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"scalar", State{0.5}, true},
		{"pair", State{10, 1}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want State
	}{
		{"float", 0.5, State{0.5}},
		{"int", 3, State{3}},
		{"slice", []float64{10, 1}, State{10, 1}},
		{"array", [2]float64{10, 1}, State{10, 1}},
		{"yaml list", []any{10, 1.5}, State{10, 1.5}},
		{"string", "10, 1", State{10, 1}},
		{"state", State{0.2}, State{0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in)
			if err != nil {
				t.Fatalf("Coerce(%v) failed: %v", tt.in, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Coerce(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Coerce(%v)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCoerce_Invalid(t *testing.T) {
	for _, in := range []any{nil, "abc", map[string]int{}, []any{[]any{1, 2}}} {
		if _, err := Coerce(in); !errors.Is(err, ErrInvalidState) {
			t.Errorf("Coerce(%v) error = %v, want ErrInvalidState", in, err)
		}
	}
}

func TestCoerce_Copies(t *testing.T) {
	src := []float64{1, 2}
	s, _ := Coerce(src)
	s[0] = 99
	if src[0] == 99 {
		t.Error("Coerce did not copy its input")
	}
}

func TestParams(t *testing.T) {
	p := Params{"b": 2, "a": 0.1}

	q := p.With("c", 1)
	if _, ok := p["c"]; ok {
		t.Error("With modified the receiver")
	}
	if q["c"] != 1 || q["a"] != 0.1 {
		t.Errorf("With returned %v", q)
	}

	if got := q.String(); got != "a=0.1, b=2, c=1" {
		t.Errorf("String() = %q", got)
	}

	missing := p.Missing([]string{"b", "a", "c"})
	if len(missing) != 1 || missing[0] != "c" {
		t.Errorf("Missing() = %v, want [c]", missing)
	}

	if _, err := p.Need("hp", "c"); !errors.Is(err, ErrMissingParameter) {
		t.Errorf("Need error = %v, want ErrMissingParameter", err)
	}
}

func TestTrajectory(t *testing.T) {
	tr := Trajectory{{1, 0}, {2, math.NaN()}, {3, 5}, {math.Inf(1), 6}}

	if tr.Len() != 4 || tr.Dim() != 2 {
		t.Fatalf("Len/Dim = %d/%d", tr.Len(), tr.Dim())
	}
	if tail := tr.Tail(2); len(tail) != 2 || tail[0][0] != 3 {
		t.Errorf("Tail(2) = %v", tail)
	}
	if tail := tr.Tail(10); len(tail) != 4 {
		t.Errorf("Tail(10) length = %d, want 4", len(tail))
	}
	if tail := tr.Tail(0); len(tail) != 0 {
		t.Errorf("Tail(0) length = %d, want 0", len(tail))
	}

	col := tr.Column(1)
	if col[0] != 0 || !math.IsNaN(col[1]) || col[3] != 6 {
		t.Errorf("Column(1) = %v", col)
	}

	if got := tr.Finite(0); len(got) != 3 {
		t.Errorf("Finite(0) = %v, want 3 values", got)
	}
	if got := tr.Finite(1); len(got) != 3 {
		t.Errorf("Finite(1) = %v, want 3 values", got)
	}
	if last := tr.Last(); last[1] != 6 {
		t.Errorf("Last() = %v", last)
	}
	if (Trajectory{}).Last() != nil {
		t.Error("Last() of empty trajectory should be nil")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 3, State: State{0.5}, Wrapped: ErrDimensionMismatch}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Error("SimulationError does not unwrap")
	}
	want := "step 3 (x=[0.5]): " + ErrDimensionMismatch.Error()
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
