package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/san-kum/popdyn/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// BifurcationPoint holds the settled values observed for one parameter value.
type BifurcationPoint struct {
	Param  float64   `json:"param"`
	Values []float64 `json:"values"`
	Period int       `json:"period"`
}

// BifurcationConfig describes a one-parameter sweep.
type BifurcationConfig struct {
	Map       dynamo.Map
	Base      dynamo.Params // fixed parameters; Param is overwritten per run
	Param     string
	Min, Max  float64
	Points    int
	X0        dynamo.State
	Steps     int // run length per parameter value
	Tail      int // trailing states kept as the attractor sample
	Component int
	Tolerance float64 // cycle detection tolerance
	MaxPeriod int
	Workers   int
	Logger    *slog.Logger
}

// DefaultBifurcationConfig matches the classic logistic diagram settings.
func DefaultBifurcationConfig() BifurcationConfig {
	return BifurcationConfig{
		Min:       2.5,
		Max:       4.0,
		Points:    300,
		X0:        dynamo.Scalar(0.5),
		Steps:     500,
		Tail:      50,
		Tolerance: DefaultTolerance,
		MaxPeriod: DefaultMaxPeriod,
	}
}

// ParamValues returns the evenly spaced sweep values, Min first.
func (c BifurcationConfig) ParamValues() []float64 {
	return Linspace(c.Min, c.Max, c.Points)
}

// Bifurcation runs one fresh model per parameter value and keeps the finite
// values of the last Tail states. Points come back ordered by parameter value.
// A missing parameter or a shape mismatch aborts the whole sweep.
func Bifurcation(ctx context.Context, cfg BifurcationConfig) ([]BifurcationPoint, error) {
	if cfg.Map == nil {
		return nil, fmt.Errorf("bifurcation: no model")
	}
	if cfg.Param == "" {
		return nil, fmt.Errorf("bifurcation: no parameter to sweep")
	}
	if err := dynamo.CheckParam(cfg.Map, cfg.Param); err != nil {
		return nil, fmt.Errorf("bifurcation: %w", err)
	}
	if cfg.Component < 0 || cfg.Component >= cfg.Map.StateDim() {
		return nil, fmt.Errorf("%w: component %d of %s", dynamo.ErrDimensionMismatch, cfg.Component, cfg.Map.Name())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	params := cfg.ParamValues()
	results := make([]BifurcationPoint, len(params))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(cfg.Workers))

	for i, p := range params {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			model := dynamo.New(cfg.Map, cfg.Base.With(cfg.Param, p))
			values, err := settledValues(model, cfg.X0, cfg.Steps, cfg.Tail, cfg.Component)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", cfg.Param, p, err)
			}

			results[i] = BifurcationPoint{
				Param:  p,
				Values: values,
				Period: DetectPeriod(values, cfg.Tolerance, cfg.MaxPeriod),
			}
			logger.Debug("bifurcation point", "model", cfg.Map.Name(), cfg.Param, p,
				"values", len(values), "period", results[i].Period)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// settledValues iterates without keeping history and returns the finite values
// of component comp over the last tail states.
func settledValues(m *dynamo.Model, x0 dynamo.State, steps, tail, comp int) ([]float64, error) {
	first := steps + 1 - tail
	values := make([]float64, 0, max(tail, 0))

	err := m.Iterate(x0, steps, func(t int, x dynamo.State) bool {
		if t >= first && comp < len(x) {
			values = append(values, x[comp])
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return FiniteValues(values), nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
