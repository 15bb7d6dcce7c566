package dynamo

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

type State []float64

// Scalar wraps a single population value.
func Scalar(x float64) State { return State{x} }

// Vec builds a two-species state.
func Vec(x, y float64) State { return State{x, y} }

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Coerce converts loosely typed input into a State. Accepted forms are a single
// number, a slice or array of numbers, and []any as produced by YAML decoding.
func Coerce(v any) (State, error) {
	switch x := v.(type) {
	case State:
		return x.Clone(), nil
	case []float64:
		return State(x).Clone(), nil
	case [2]float64:
		return State{x[0], x[1]}, nil
	case float64:
		return State{x}, nil
	case float32:
		return State{float64(x)}, nil
	case int:
		return State{float64(x)}, nil
	case int64:
		return State{float64(x)}, nil
	case []int:
		s := make(State, len(x))
		for i, n := range x {
			s[i] = float64(n)
		}
		return s, nil
	case []any:
		s := make(State, len(x))
		for i, e := range x {
			c, err := Coerce(e)
			if err != nil {
				return nil, err
			}
			if len(c) != 1 {
				return nil, fmt.Errorf("%w: nested element %d", ErrInvalidState, i)
			}
			s[i] = c[0]
		}
		return s, nil
	case string:
		return ParseState(x)
	case nil:
		return nil, fmt.Errorf("%w: no value", ErrInvalidState)
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidState, v)
}

// ParseState reads a comma separated list such as "10,1" or "0.5".
func ParseState(s string) (State, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	st := make(State, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidState, s)
		}
		st = append(st, v)
	}
	return st, nil
}

// Params maps parameter names to values.
type Params map[string]float64

func (p Params) Get(name string) (float64, bool) {
	v, ok := p[name]
	return v, ok
}

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// With returns a copy of p with name set to v.
func (p Params) With(name string, v float64) Params {
	c := p.Clone()
	c[name] = v
	return c
}

// Missing lists the required names absent from p, in the given order.
func (p Params) Missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := p[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// String renders the set as "a=0.1, b=2" with keys sorted.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(p[k], 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// Map is the transition function of a concrete model.
type Map interface {
	Name() string
	StateDim() int
	Required() []string
	Step(p Params, x State) (State, error)
}

// CheckParam fails with ErrUnknownParameter unless name is one of m's parameters.
func CheckParam(m Map, name string) error {
	if slices.Contains(m.Required(), name) {
		return nil
	}
	return fmt.Errorf("%w: %s has no parameter %q (parameters: %v)", ErrUnknownParameter, m.Name(), name, m.Required())
}

// Observer receives every state appended to a trajectory, starting with t=0.
type Observer interface {
	Observe(t int, x State)
	Reset()
}

// Trajectory holds the states of one run; index is the time step.
type Trajectory []State

func (tr Trajectory) Len() int { return len(tr) }

func (tr Trajectory) Last() State {
	if len(tr) == 0 {
		return nil
	}
	return tr[len(tr)-1]
}

// Tail returns the last k states, or the whole trajectory when k exceeds its length.
func (tr Trajectory) Tail(k int) Trajectory {
	if k <= 0 {
		return Trajectory{}
	}
	if k >= len(tr) {
		return tr
	}
	return tr[len(tr)-k:]
}

// Dim is the state dimension of the first entry.
func (tr Trajectory) Dim() int {
	if len(tr) == 0 {
		return 0
	}
	return len(tr[0])
}

// Column extracts component i of every state. Missing components read as NaN.
func (tr Trajectory) Column(i int) []float64 {
	out := make([]float64, len(tr))
	for t, x := range tr {
		if i < len(x) {
			out[t] = x[i]
		} else {
			out[t] = math.NaN()
		}
	}
	return out
}

// Clone copies every state.
func (tr Trajectory) Clone() Trajectory {
	out := make(Trajectory, len(tr))
	for i, x := range tr {
		out[i] = x.Clone()
	}
	return out
}

// Finite is Column(i) with NaN and Inf dropped.
func (tr Trajectory) Finite(i int) []float64 {
	out := make([]float64, 0, len(tr))
	for _, x := range tr {
		if i < len(x) && !math.IsNaN(x[i]) && !math.IsInf(x[i], 0) {
			out = append(out, x[i])
		}
	}
	return out
}
