package models

import (
	"math"

	"github.com/san-kum/popdyn/internal/dynamo"
)

// Parameter names of the Nicholson-Bailey map.
const (
	ParamHostBirth  = "b" // host reproduction rate
	ParamSearch     = "a" // parasitoid searching efficiency
	ParamConversion = "c" // parasitoids emerging per parasitized host
)

// HostParasite is the Nicholson-Bailey model. State is [hosts, parasitoids]:
//
//	s  = exp(-a*y)       fraction of hosts escaping parasitism
//	x' = b*x*s
//	y' = c*x*(1-s)
type HostParasite struct{}

func NewHostParasite(p dynamo.Params) *dynamo.Model { return dynamo.New(HostParasite{}, p) }

func (HostParasite) Name() string  { return "host_parasite" }
func (HostParasite) StateDim() int { return 2 }
func (HostParasite) Required() []string {
	return []string{ParamHostBirth, ParamSearch, ParamConversion}
}

func (h HostParasite) Step(p dynamo.Params, x dynamo.State) (dynamo.State, error) {
	b, err := p.Need(h.Name(), ParamHostBirth)
	if err != nil {
		return nil, err
	}
	a, err := p.Need(h.Name(), ParamSearch)
	if err != nil {
		return nil, err
	}
	c, err := p.Need(h.Name(), ParamConversion)
	if err != nil {
		return nil, err
	}

	hosts, parasitoids := x[0], x[1]
	survival := math.Exp(-a * parasitoids)

	return dynamo.State{
		b * hosts * survival,
		c * hosts * (1 - survival),
	}, nil
}
