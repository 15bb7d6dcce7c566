package dynamo

import "fmt"

// Model binds a Map to a parameter set and records the most recent run.
type Model struct {
	m          Map
	params     Params
	trajectory Trajectory
	observers  []Observer
}

// New stores a copy of p. Parameters are not checked until a step needs them;
// call Validate for an early check.
func New(m Map, p Params) *Model {
	return &Model{
		m:          m,
		params:     p.Clone(),
		trajectory: Trajectory{},
		observers:  make([]Observer, 0),
	}
}

func (md *Model) AddObserver(o Observer) { md.observers = append(md.observers, o) }

func (md *Model) Name() string       { return md.m.Name() }
func (md *Model) StateDim() int      { return md.m.StateDim() }
func (md *Model) Map() Map           { return md.m }
func (md *Model) Params() Params     { return md.params.Clone() }
func (md *Model) Required() []string { return md.m.Required() }

// Trajectory returns the trajectory of the last successful Simulate call.
// It does not share storage with the slice Simulate returned.
func (md *Model) Trajectory() Trajectory { return md.trajectory }

// Validate reports the first required parameter missing from the set.
func (md *Model) Validate() error {
	if missing := md.params.Missing(md.m.Required()); len(missing) > 0 {
		return &ParamError{Model: md.m.Name(), Name: missing[0]}
	}
	return nil
}

// Step applies the transition once. NaN and Inf are returned as ordinary values.
func (md *Model) Step(x State) (State, error) {
	if len(x) != md.m.StateDim() {
		return nil, fmt.Errorf("%w: %s expects %d components, got %d",
			ErrDimensionMismatch, md.m.Name(), md.m.StateDim(), len(x))
	}
	return md.m.Step(md.params, x)
}

// Simulate runs exactly steps transitions from x0 and returns steps+1 states.
// On failure the stored trajectory is cleared and no partial result is returned.
func (md *Model) Simulate(x0 State, steps int) (Trajectory, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativeSteps, steps)
	}

	traj := make(Trajectory, 0, steps+1)
	err := md.Iterate(x0, steps, func(t int, x State) bool {
		traj = append(traj, x)
		return true
	})
	if err != nil {
		md.trajectory = Trajectory{}
		return nil, err
	}

	md.trajectory = traj.Clone()
	return traj, nil
}

// Iterate drives the map like Simulate without retaining history. fn sees
// t=0 with a copy of x0 and then every new state; returning false stops the run.
func (md *Model) Iterate(x0 State, steps int, fn func(t int, x State) bool) error {
	if steps < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeSteps, steps)
	}

	for _, o := range md.observers {
		o.Reset()
	}

	x := x0.Clone()
	if !md.emit(0, x, fn) {
		return nil
	}

	for i := 0; i < steps; i++ {
		next, err := md.Step(x)
		if err != nil {
			return &SimulationError{Step: i, State: x, Wrapped: err}
		}
		x = next
		if !md.emit(i+1, x, fn) {
			return nil
		}
	}
	return nil
}

func (md *Model) emit(t int, x State, fn func(int, State) bool) bool {
	for _, o := range md.observers {
		o.Observe(t, x)
	}
	return fn(t, x)
}

// Need looks up a parameter the named model requires.
func (p Params) Need(model, name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, &ParamError{Model: model, Name: name}
	}
	return v, nil
}
