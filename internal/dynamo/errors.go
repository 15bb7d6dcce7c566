package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrMissingParameter indicates a step referenced a parameter absent from the set.
	ErrMissingParameter = errors.New("dynamo: missing parameter")

	// ErrDimensionMismatch indicates a state whose length does not match the model.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and model")

	// ErrNegativeSteps indicates a negative run length.
	ErrNegativeSteps = errors.New("dynamo: steps must be non-negative")

	// ErrInvalidState indicates input that cannot be converted to a state.
	ErrInvalidState = errors.New("dynamo: invalid state")

	// ErrUnknownParameter indicates a parameter name the model never reads.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")
)

// ParamError names the parameter a model could not find.
type ParamError struct {
	Model string
	Name  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: model %s requires %q", ErrMissingParameter, e.Model, e.Name)
}

func (e *ParamError) Unwrap() error {
	return ErrMissingParameter
}

// SimulationError wraps a step failure with the step index and the state it was applied to.
type SimulationError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (x=%v): %v", e.Step, []float64(e.State), e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
