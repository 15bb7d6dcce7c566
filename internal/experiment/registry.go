package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/models"
)

// Entry describes a registered model.
type Entry struct {
	Name         string
	Description  string
	Map          dynamo.Map
	Defaults     dynamo.Params
	DefaultState dynamo.State
	Labels       []string // component names used by renderers
}

// New binds the entry's map to p, falling back to Defaults for absent keys.
func (e Entry) New(p dynamo.Params) *dynamo.Model {
	merged := e.Defaults.Clone()
	for k, v := range p {
		merged[k] = v
	}
	return dynamo.New(e.Map, merged)
}

type Registry struct {
	models  map[string]Entry
	aliases map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]Entry),
		aliases: make(map[string]string),
	}

	r.Register(Entry{
		Name:         "exponential",
		Description:  "geometric growth x' = r*x",
		Map:          models.Exponential{},
		Defaults:     dynamo.Params{"r": 1.1},
		DefaultState: dynamo.Scalar(1),
		Labels:       []string{"Population"},
	})
	r.Register(Entry{
		Name:         "logistic",
		Description:  "logistic map x' = r*x*(1-x)",
		Map:          models.Logistic{},
		Defaults:     dynamo.Params{"r": 2.5},
		DefaultState: dynamo.Scalar(0.5),
		Labels:       []string{"Population"},
	})
	r.Register(Entry{
		Name:         "moran",
		Description:  "Moran-Ricker map x' = x*exp(r*(1-x))",
		Map:          models.Moran{},
		Defaults:     dynamo.Params{"r": 1.5},
		DefaultState: dynamo.Scalar(0.5),
		Labels:       []string{"Population"},
	})
	r.Register(Entry{
		Name:         "host_parasite",
		Description:  "Nicholson-Bailey host-parasitoid map",
		Map:          models.HostParasite{},
		Defaults:     dynamo.Params{"b": 2, "a": 0.1, "c": 1},
		DefaultState: dynamo.Vec(10, 1),
		Labels:       []string{"Hosts", "Parasitoids"},
	})

	r.aliases["ricker"] = "moran"
	r.aliases["nicholson_bailey"] = "host_parasite"
	r.aliases["hostparasite"] = "host_parasite"

	return r
}

func (r *Registry) Register(e Entry) { r.models[e.Name] = e }

func (r *Registry) Get(name string) (Entry, error) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	e, ok := r.models[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown model: %s (available: %v)", name, r.ListModels())
	}
	return e, nil
}

// GetModel builds a model with defaults merged under p and validates it.
func (r *Registry) GetModel(name string, p dynamo.Params) (*dynamo.Model, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	m := e.New(p)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ListModels returns registered names, sorted.
func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
