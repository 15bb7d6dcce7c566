package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/config"
	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/experiment"
	"github.com/san-kum/popdyn/internal/viz"
	"github.com/spf13/cobra"
)

// runSpec is a model configuration after presets, config file and flags are applied,
// in that order of precedence from lowest to highest.
type runSpec struct {
	Entry  experiment.Entry
	Params dynamo.Params // overrides only; the registry fills in defaults
	X0     dynamo.State  // nil selects the model's default state
	Steps  int
	Tail   int
	Sweep  config.SweepConfig
	Render config.RenderConfig
}

func (s *runSpec) State() dynamo.State {
	if s.X0 != nil {
		return s.X0
	}
	return s.Entry.DefaultState
}

// FullParams is Params over the model defaults.
func (s *runSpec) FullParams() dynamo.Params {
	p := s.Entry.Defaults.Clone()
	for k, v := range s.Params {
		p[k] = v
	}
	return p
}

func (s *runSpec) renderConfig() viz.RenderConfig {
	title := s.Render.Title
	if title == "" {
		title = s.Entry.Name
	}
	return viz.RenderConfig{
		Title:       title,
		ParamString: s.FullParams().String(),
		Labels:      s.Entry.Labels,
		Width:       s.Render.Width,
		Height:      s.Render.Height,
	}
}

func resolve(cmd *cobra.Command, args []string, registry *experiment.Registry) (*runSpec, error) {
	var (
		cfg   *config.Config
		model string
	)
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg, model = loaded, loaded.Model
	}
	if len(args) > 0 {
		model = args[0]
	}
	if model == "" {
		return nil, fmt.Errorf("no model given (available: %v)", registry.ListModels())
	}

	entry, err := registry.Get(model)
	if err != nil {
		return nil, err
	}

	defaults := config.DefaultConfig()
	spec := &runSpec{
		Entry:  entry,
		Params: dynamo.Params{},
		Steps:  intFlag(cmd, "steps"),
		Tail:   tail,
		Sweep:  defaults.Sweep,
		Render: defaults.Render,
	}

	if preset != "" {
		p := config.GetPreset(entry.Name, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(entry.Name))
		}
		if err := spec.apply(cmd, p); err != nil {
			return nil, err
		}
	}

	if cfg != nil {
		if err := spec.apply(cmd, cfg); err != nil {
			return nil, err
		}
		spec.Sweep, spec.Render = cfg.Sweep, cfg.Render
		if !cmd.Flags().Changed("tail") && cfg.Tail > 0 {
			spec.Tail = cfg.Tail
		}
	}

	overrides, err := parseParams(paramFlags)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		spec.Params[k] = v
	}

	if x0Flag != "" {
		x0, err := dynamo.ParseState(x0Flag)
		if err != nil {
			return nil, err
		}
		spec.X0 = x0
	}

	return spec, nil
}

func (s *runSpec) apply(cmd *cobra.Command, c *config.Config) error {
	for k, v := range c.Params {
		s.Params[k] = v
	}
	x0, err := c.State()
	if err != nil {
		return err
	}
	if x0 != nil {
		s.X0 = x0
	}
	if !cmd.Flags().Changed("steps") && c.Steps > 0 {
		s.Steps = c.Steps
	}
	return nil
}

// parseParams reads k=v pairs. Each entry may hold several pairs separated by commas.
func parseParams(pairs []string) (dynamo.Params, error) {
	p := dynamo.Params{}
	for _, entry := range pairs {
		for _, pair := range strings.Split(entry, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("invalid parameter %q, want name=value", pair)
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", k, err)
			}
			p[strings.TrimSpace(k)] = f
		}
	}
	return p, nil
}

// parseAxis reads name=min:max:n.
func parseAxis(s string) (analysis.Axis, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return analysis.Axis{}, fmt.Errorf("invalid axis %q, want name=min:max:n", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return analysis.Axis{}, fmt.Errorf("invalid axis %q, want name=min:max:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return analysis.Axis{}, fmt.Errorf("axis %s min: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return analysis.Axis{}, fmt.Errorf("axis %s max: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return analysis.Axis{}, fmt.Errorf("axis %s needs a positive count, got %q", name, parts[2])
	}
	return analysis.Axis{Param: name, Values: analysis.Linspace(lo, hi, n)}, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(os.Stderr, logLevel, logJSON)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
