package models

import "github.com/san-kum/popdyn/internal/dynamo"

// Logistic is the logistic map x' = r*x*(1-x). Depending on r the orbit settles
// on a fixed point, a cycle or a chaotic attractor; for r > 4 it can leave [0, 1]
// and go negative.
type Logistic struct{}

func NewLogistic(p dynamo.Params) *dynamo.Model { return dynamo.New(Logistic{}, p) }

func (Logistic) Name() string       { return "logistic" }
func (Logistic) StateDim() int      { return 1 }
func (Logistic) Required() []string { return []string{"r"} }

func (l Logistic) Step(p dynamo.Params, x dynamo.State) (dynamo.State, error) {
	r, err := p.Need(l.Name(), "r")
	if err != nil {
		return nil, err
	}
	return dynamo.State{r * x[0] * (1 - x[0])}, nil
}
