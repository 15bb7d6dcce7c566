package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/automation"
	"github.com/san-kum/popdyn/internal/config"
	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/experiment"
	"github.com/san-kum/popdyn/internal/export"
	"github.com/san-kum/popdyn/internal/metrics"
	"github.com/san-kum/popdyn/internal/viz"
	"github.com/spf13/cobra"
)

func simulate(registry *experiment.Registry, spec *runSpec, exporter *metrics.Exporter) (*experiment.Result, error) {
	exp := experiment.New(experiment.Config{
		Model:     spec.Entry.Name,
		Params:    spec.Params,
		InitState: spec.X0,
		Steps:     spec.Steps,
	}).WithLogger(slog.Default())
	if exporter != nil {
		exp.WithExporter(exporter)
	}
	if err := exp.Setup(registry, nil); err != nil {
		return nil, err
	}
	return exp.Run()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}

	comparisons, err := parseComparisons(spec, compare)
	if err != nil {
		return err
	}
	if len(comparisons) > 0 && format != "text" {
		return fmt.Errorf("--compare needs text output, got --format %s", format)
	}

	var exporter *metrics.Exporter
	if metricsOut != "" {
		exporter = metrics.NewExporter()
	}

	result, err := simulate(registry, spec, exporter)
	if err != nil {
		if exporter != nil {
			if werr := exporter.WriteTextfile(metricsOut); werr != nil {
				slog.Warn("failed to write metrics", "path", metricsOut, "err", werr)
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "text":
		if err := printRun(out, spec, result); err != nil {
			return err
		}
		if len(comparisons) > 0 {
			if err := printComparison(out, registry, spec, result, comparisons, exporter); err != nil {
				return err
			}
		}
	case "csv":
		if err := export.WriteTrajectoryCSV(out, result.Trajectory); err != nil {
			return err
		}
	case "json":
		if err := export.WriteJSON(out, result); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (want text, csv or json)", format)
	}

	if svgOut != "" {
		rc := spec.renderConfig()
		svg := export.TrajectorySVG(result.Trajectory, rc.Labels, rc.Title+" ("+rc.ParamString+")", 800, 400)
		if err := writeFile(svgOut, svg); err != nil {
			return err
		}
		slog.Info("wrote svg", "path", svgOut)
	}
	if exporter != nil {
		if err := exporter.WriteTextfile(metricsOut); err != nil {
			return err
		}
		slog.Info("wrote metrics", "path", metricsOut)
	}
	return nil
}

func printRun(w io.Writer, spec *runSpec, result *experiment.Result) error {
	rc := spec.renderConfig()
	traj := result.Trajectory

	fmt.Fprintf(w, "model: %s\n", result.Model)
	fmt.Fprintf(w, "params: %s\n", result.Params)
	fmt.Fprintf(w, "x0: %v\n", []float64(traj[0]))
	fmt.Fprintf(w, "steps: %d (%v)\n\n", traj.Len()-1, result.Elapsed)

	fmt.Fprintln(w, viz.TimeSeries([]dynamo.Trajectory{traj}, nil, rc))
	if traj.Dim() == 2 {
		fmt.Fprintln(w, viz.PhasePortrait(traj, rc))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tFINAL\tMEAN\tSTDDEV\tMIN\tMAX\tPERIOD")
	for i := 0; i < traj.Dim(); i++ {
		s := analysis.Summarize(traj.Column(i))
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t%s\n",
			rc.Label(i, traj.Dim()), traj.Last()[i], s.Mean, s.StdDev, s.Min, s.Max,
			periodString(tailPeriod(traj, spec.Tail, i)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

// parseComparisons reads --compare values as overrides of spec's parameters.
func parseComparisons(spec *runSpec, values []string) ([]dynamo.Params, error) {
	var out []dynamo.Params
	for _, v := range values {
		overrides, err := parseParams([]string{v})
		if err != nil {
			return nil, err
		}
		if len(overrides) == 0 {
			return nil, fmt.Errorf("empty --compare value %q", v)
		}
		for k := range overrides {
			if err := dynamo.CheckParam(spec.Entry.Map, k); err != nil {
				return nil, err
			}
		}
		out = append(out, overrides)
	}
	return out, nil
}

// printComparison reruns spec once per override set and overlays every run
// on one chart, the base run first.
func printComparison(w io.Writer, registry *experiment.Registry, spec *runSpec, base *experiment.Result,
	comparisons []dynamo.Params, exporter *metrics.Exporter) error {
	trajs := []dynamo.Trajectory{base.Trajectory}
	labels := []string{"base"}

	for _, overrides := range comparisons {
		alt := *spec
		alt.Params = spec.Params.Clone()
		for k, v := range overrides {
			alt.Params[k] = v
		}
		result, err := simulate(registry, &alt, exporter)
		if err != nil {
			return fmt.Errorf("compare %s: %w", overrides, err)
		}
		trajs = append(trajs, result.Trajectory)
		labels = append(labels, overrides.String())
	}

	rc := spec.renderConfig()
	rc.Title = spec.Entry.Name + " comparison"
	rc.ParamString = "base " + spec.FullParams().String()
	fmt.Fprintln(w, "\ncomparison:")
	fmt.Fprintln(w, viz.TimeSeries(trajs, labels, rc))
	return nil
}

func tailPeriod(traj dynamo.Trajectory, tail, comp int) int {
	return analysis.DetectPeriod(traj.Tail(tail).Finite(comp), analysis.DefaultTolerance, analysis.DefaultMaxPeriod)
}

func periodString(p int) string {
	if p < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", p)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}
	result, err := simulate(registry, spec, nil)
	if err != nil {
		return err
	}

	rc := spec.renderConfig()
	fmt.Fprintln(cmd.OutOrStdout(), viz.PhasePortrait(result.Trajectory, rc))

	if svgOut != "" {
		var points []analysis.Point
		if result.Trajectory.Dim() >= 2 {
			points, err = analysis.PhasePortrait(result.Trajectory, 0, 1)
			if err != nil {
				return err
			}
		} else {
			points = analysis.ReturnMap(result.Trajectory.Column(0))
		}
		if err := writeFile(svgOut, export.ScatterSVG(points, rc.Title, 600, 600, result.Trajectory.Dim() >= 2)); err != nil {
			return err
		}
	}
	return nil
}

func bifurcationDiagram(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}

	sw := spec.Sweep
	flags := cmd.Flags()
	if flags.Changed("param") || sw.Param == "" {
		sw.Param = stringFlag(cmd, "param")
	}
	if flags.Changed("min") {
		sw.Min = sweepMin
	}
	if flags.Changed("max") {
		sw.Max = sweepMax
	}
	if flags.Changed("points") || sw.Points == 0 {
		sw.Points = intFlag(cmd, "points")
	}
	if flags.Changed("steps") || sw.Steps == 0 {
		sw.Steps = intFlag(cmd, "steps")
	}
	if flags.Changed("tail") || sw.Tail == 0 {
		sw.Tail = tail
	}

	cfg := analysis.DefaultBifurcationConfig()
	cfg.Map = spec.Entry.Map
	cfg.Base = spec.FullParams()
	cfg.Param = sw.Param
	cfg.Min, cfg.Max, cfg.Points = sw.Min, sw.Max, sw.Points
	cfg.X0 = spec.State()
	cfg.Steps, cfg.Tail = sw.Steps, sw.Tail
	cfg.Component = component
	cfg.Workers = workers
	cfg.Logger = slog.Default()

	result, err := analysis.Bifurcation(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	rc := spec.renderConfig()
	rc.Title = fmt.Sprintf("%s bifurcation over %s", spec.Entry.Name, sw.Param)
	rc.ParamString = ""
	rc.Labels = []string{sw.Param}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.BifurcationScatter(result, rc))
	for _, win := range periodWindows(result) {
		fmt.Fprintf(out, "  %s in [%.4f, %.4f]: %s\n", sw.Param, win.From, win.To, windowLabel(win.Period))
	}

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteBifurcationCSV(f, result); err != nil {
			return err
		}
	}
	if svgOut != "" {
		svg := export.ScatterSVG(export.BifurcationPoints(result), rc.Title, 800, 500, false)
		if err := writeFile(svgOut, svg); err != nil {
			return err
		}
	}
	return nil
}

type periodWindow struct {
	From, To float64
	Period   int
}

// periodWindows groups consecutive sweep points that share a period.
func periodWindows(points []analysis.BifurcationPoint) []periodWindow {
	var out []periodWindow
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Period == p.Period {
			out[n-1].To = p.Param
			continue
		}
		out = append(out, periodWindow{From: p.Param, To: p.Param, Period: p.Period})
	}
	return out
}

func windowLabel(period int) string {
	if period < 0 {
		return "aperiodic"
	}
	return fmt.Sprintf("period %d", period)
}

func gridScan(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return fmt.Errorf("grid needs at least one --axis name=min:max:n")
	}
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}

	cfg := analysis.GridConfig{
		Map:       spec.Entry.Map,
		Base:      spec.FullParams(),
		X0:        spec.State(),
		Steps:     intFlag(cmd, "steps"),
		Tail:      tail,
		Component: component,
		Tolerance: analysis.DefaultTolerance,
		MaxPeriod: analysis.DefaultMaxPeriod,
		Workers:   workers,
		Logger:    slog.Default(),
	}
	for _, a := range axes {
		axis, err := parseAxis(a)
		if err != nil {
			return err
		}
		cfg.Axes = append(cfg.Axes, axis)
	}

	cells, err := analysis.GridScan(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMS\tPERIOD\tMEAN\tMIN\tMAX")
	for _, c := range cells {
		fmt.Fprintf(tw, "%s\t%s\t%.6g\t%.6g\t%.6g\n",
			c.Params, periodString(c.Period), c.Summary.Mean, c.Summary.Min, c.Summary.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		return export.WriteGridCSV(f, cells)
	}
	return nil
}

func lyapunovExponent(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}

	cfg := analysis.DefaultLyapunovConfig()
	cfg.Steps, cfg.Transient = intFlag(cmd, "steps"), intFlag(cmd, "transient")
	sweepParam := stringFlag(cmd, "sweep")
	out := cmd.OutOrStdout()

	if sweepParam == "" {
		l, err := analysis.Lyapunov(spec.Entry.Map, spec.FullParams(), spec.State(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "model: %s\nparams: %s\nlyapunov exponent: %.6f (%s)\n",
			spec.Entry.Name, spec.FullParams(), l, regime(l))
		return nil
	}

	if err := dynamo.CheckParam(spec.Entry.Map, sweepParam); err != nil {
		return err
	}
	values := analysis.Linspace(sweepMin, sweepMax, intFlag(cmd, "points"))
	exponents := make([]float64, len(values))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tLYAPUNOV\tREGIME\n", sweepParam)
	for i, v := range values {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		l, err := analysis.Lyapunov(spec.Entry.Map, spec.FullParams().With(sweepParam, v), spec.State(), cfg)
		if err != nil {
			return fmt.Errorf("%s=%g: %w", sweepParam, v, err)
		}
		exponents[i] = l
		fmt.Fprintf(tw, "%.4f\t%.6f\t%s\n", v, l, regime(l))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(exponents) > 1 {
		rc := spec.renderConfig()
		rc.Title = fmt.Sprintf("lyapunov exponent over %s in [%g, %g]", sweepParam, sweepMin, sweepMax)
		rc.ParamString = ""
		rc.Labels = []string{"lambda"}
		traj := make(dynamo.Trajectory, len(exponents))
		for i, l := range exponents {
			traj[i] = dynamo.Scalar(l)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, viz.TimeSeries([]dynamo.Trajectory{traj}, nil, rc))
	}
	return nil
}

func regime(l float64) string {
	switch {
	case l > 1e-3:
		return "chaotic"
	case l < -1e-3:
		return "stable"
	}
	return "neutral"
}

func spectrumPlot(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}
	result, err := simulate(registry, spec, nil)
	if err != nil {
		return err
	}
	if component < 0 || component >= result.Trajectory.Dim() {
		return fmt.Errorf("%w: component %d", dynamo.ErrDimensionMismatch, component)
	}

	col := result.Trajectory.Column(component)
	if skip := intFlag(cmd, "transient"); skip > 0 && skip < len(col) {
		col = col[skip:]
	}
	spectrum := analysis.Spectrum(col)
	if spectrum == nil {
		return fmt.Errorf("spectrum needs at least 2 finite values")
	}

	rc := spec.renderConfig()
	rc.Title = fmt.Sprintf("%s spectrum of %s", spec.Entry.Name, rc.Label(component, result.Trajectory.Dim()))
	rc.Labels = []string{"|X(k)|"}
	traj := make(dynamo.Trajectory, len(spectrum))
	for k, v := range spectrum {
		traj[k] = dynamo.Scalar(v)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.TimeSeries([]dynamo.Trajectory{traj}, nil, rc))
	if p := analysis.DominantPeriod(col); p > 0 {
		fmt.Fprintf(out, "dominant period: %.3f steps\n", p)
	} else {
		fmt.Fprintln(out, "no dominant period")
	}
	return nil
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	spec, err := resolve(cmd, args, registry)
	if err != nil {
		return err
	}

	cfg := &automation.MonteCarloConfig{
		Model:        spec.Entry.Name,
		Params:       spec.Params,
		BaseState:    spec.X0,
		Perturbation: perturbation,
		NumTrials:    trials,
		Steps:        spec.Steps,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, registry, slog.Default())
	if err != nil {
		return err
	}

	stats := automation.MonteCarloStats(results)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "model: %s\nparams: %s\nx0: %v +/- %g\ntrials: %d\n\n",
		spec.Entry.Name, spec.FullParams(), []float64(spec.State()), perturbation, len(results))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTCOME\tRUNS\tSHARE")
	for _, o := range []automation.Outcome{automation.Bounded, automation.Extinct, automation.Diverged} {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", o, stats[o], 100*float64(stats[o])/float64(len(results)))
	}
	return tw.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	results, runErr := automation.RunScenario(cmd.Context(), scenario, registry, slog.Default())

	out := cmd.OutOrStdout()
	if scenario.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Fprintf(out, "%s\n", scenario.Description)
	}
	if scenario.Overlay && len(results) > 0 {
		trajs := make([]dynamo.Trajectory, len(results))
		labels := make([]string, len(results))
		for i, r := range results {
			trajs[i], labels[i] = r.Result.Trajectory, r.Title
		}
		rc := viz.RenderConfig{Title: scenario.Name, Width: config.DefaultWidth, Height: config.DefaultHeight}
		fmt.Fprintln(out)
		fmt.Fprintln(out, viz.TimeSeries(trajs, labels, rc))
		return runErr
	}

	for _, r := range results {
		entry, err := registry.Get(r.Result.Model)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n[%d] %s\n", r.Index, r.Title)
		rc := viz.RenderConfig{
			Title:       r.Title,
			ParamString: r.Result.Params.String(),
			Labels:      entry.Labels,
			Width:       config.DefaultWidth,
			Height:      config.DefaultHeight,
		}
		fmt.Fprintln(out, viz.TimeSeries([]dynamo.Trajectory{r.Result.Trajectory}, nil, rc))
	}
	return runErr
}

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIM\tDEFAULTS\tX0\tDESCRIPTION")
	for _, name := range registry.ListModels() {
		e, err := registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%v\t%s\n",
			e.Name, e.Map.StateDim(), e.Defaults, []float64(e.DefaultState), e.Description)
	}
	return tw.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	out := cmd.OutOrStdout()

	model := args[0]
	if e, err := registry.Get(model); err == nil {
		model = e.Name
	}
	presets := config.ListPresets(model)
	if len(presets) == 0 {
		fmt.Fprintf(out, "no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Fprintf(out, "presets for %s:\n", model)
	for _, name := range presets {
		p := config.GetPreset(model, name)
		fmt.Fprintf(out, "  %-10s %s, %d steps\n", name, dynamo.Params(p.Params), p.Steps)
	}
	return nil
}
