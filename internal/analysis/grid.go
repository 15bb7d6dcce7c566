package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/popdyn/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Axis is one swept parameter of a grid scan.
type Axis struct {
	Param  string
	Values []float64
}

// GridConfig describes a scan over the Cartesian product of several axes.
type GridConfig struct {
	Map       dynamo.Map
	Base      dynamo.Params
	Axes      []Axis
	X0        dynamo.State
	Steps     int
	Tail      int
	Component int
	Tolerance float64
	MaxPeriod int
	Workers   int
	Logger    *slog.Logger
}

// GridCell is the outcome of one parameter combination.
type GridCell struct {
	Params  dynamo.Params `json:"params"`
	Period  int           `json:"period"`
	Summary Summary       `json:"summary"`
}

// GridScan evaluates every combination of axis values. Cells are returned in
// row-major order, the last axis varying fastest.
func GridScan(ctx context.Context, cfg GridConfig) ([]GridCell, error) {
	if cfg.Map == nil {
		return nil, fmt.Errorf("grid: no model")
	}
	if len(cfg.Axes) == 0 {
		return nil, fmt.Errorf("grid: no axes")
	}
	for _, a := range cfg.Axes {
		if err := dynamo.CheckParam(cfg.Map, a.Param); err != nil {
			return nil, fmt.Errorf("grid: %w", err)
		}
	}
	if cfg.Component < 0 || cfg.Component >= cfg.Map.StateDim() {
		return nil, fmt.Errorf("%w: component %d of %s", dynamo.ErrDimensionMismatch, cfg.Component, cfg.Map.Name())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var combos []dynamo.Params
	expand(cfg.Axes, 0, cfg.Base.Clone(), &combos)

	cells := make([]GridCell, len(combos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(cfg.Workers))

	for i, params := range combos {
		i, params := i, params
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			values, err := settledValues(dynamo.New(cfg.Map, params), cfg.X0, cfg.Steps, cfg.Tail, cfg.Component)
			if err != nil {
				return fmt.Errorf("%s: %w", params, err)
			}
			cells[i] = GridCell{
				Params:  params,
				Period:  DetectPeriod(values, cfg.Tolerance, cfg.MaxPeriod),
				Summary: Summarize(values),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("grid scan done", "model", cfg.Map.Name(), "cells", len(cells))
	return cells, nil
}

func expand(axes []Axis, depth int, current dynamo.Params, out *[]dynamo.Params) {
	if depth == len(axes) {
		*out = append(*out, current)
		return
	}

	axis := axes[depth]
	for _, v := range axis.Values {
		expand(axes, depth+1, current.With(axis.Param, v), out)
	}
}
