package models

import (
	"math"

	"github.com/san-kum/popdyn/internal/dynamo"
)

// Moran is the Moran-Ricker map x' = x*exp(r*(1-x)). The exponential factor is
// always positive, so a positive population stays positive.
type Moran struct{}

func NewMoran(p dynamo.Params) *dynamo.Model { return dynamo.New(Moran{}, p) }

func (Moran) Name() string       { return "moran" }
func (Moran) StateDim() int      { return 1 }
func (Moran) Required() []string { return []string{"r"} }

func (m Moran) Step(p dynamo.Params, x dynamo.State) (dynamo.State, error) {
	r, err := p.Need(m.Name(), "r")
	if err != nil {
		return nil, err
	}
	return dynamo.State{x[0] * math.Exp(r*(1-x[0]))}, nil
}
