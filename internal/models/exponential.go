package models

import "github.com/san-kum/popdyn/internal/dynamo"

// Exponential is unbounded geometric growth: x' = r*x.
// |r| > 1 grows, |r| < 1 decays, r = 1 is neutral.
type Exponential struct{}

func NewExponential(p dynamo.Params) *dynamo.Model { return dynamo.New(Exponential{}, p) }

func (Exponential) Name() string       { return "exponential" }
func (Exponential) StateDim() int      { return 1 }
func (Exponential) Required() []string { return []string{"r"} }

func (e Exponential) Step(p dynamo.Params, x dynamo.State) (dynamo.State, error) {
	r, err := p.Need(e.Name(), "r")
	if err != nil {
		return nil, err
	}
	return dynamo.State{r * x[0]}, nil
}
