package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/config"
	"github.com/san-kum/popdyn/internal/experiment"
	"github.com/san-kum/popdyn/internal/viz"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool

	configFile string
	preset     string
	paramFlags []string
	x0Flag     string
	tail       int
	component  int

	format     string
	svgOut     string
	csvOut     string
	metricsOut string
	compare    []string

	sweepMin float64
	sweepMax float64
	workers  int
	axes     []string

	trials       int
	perturbation float64
	seed         int64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "popdyn",
		Short:             "discrete-time population dynamics lab",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunExplore(experiment.NewRegistry(), "")
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate a model and print its trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd, config.DefaultSteps)
	runCmd.Flags().StringVar(&format, "format", "text", "output format (text, csv, json)")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the time series as SVG")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to a textfile")
	runCmd.Flags().StringArrayVar(&compare, "compare", nil, "overlay a run with these overrides, k=v[,k=v] (repeatable)")

	phaseCmd := &cobra.Command{
		Use:   "phase [model]",
		Short: "phase portrait, or return map for 1-D models",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	addRunFlags(phaseCmd, config.DefaultSteps)
	phaseCmd.Flags().StringVar(&svgOut, "svg", "", "write the portrait as SVG")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [model]",
		Short: "sweep a parameter and plot the settled values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  bifurcationDiagram,
	}
	addModelFlags(bifurcationCmd, "set")
	bifurcationCmd.Flags().String("param", "r", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&sweepMin, "min", 2.5, "sweep start")
	bifurcationCmd.Flags().Float64Var(&sweepMax, "max", 4.0, "sweep end")
	bifurcationCmd.Flags().Int("points", config.DefaultPoints, "number of parameter values")
	bifurcationCmd.Flags().Int("steps", config.DefaultSweepRuns, "steps per run")
	bifurcationCmd.Flags().IntVar(&tail, "tail", config.DefaultTail, "trailing states kept per run")
	bifurcationCmd.Flags().IntVar(&component, "component", 0, "state component to record")
	bifurcationCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	bifurcationCmd.Flags().StringVar(&csvOut, "csv", "", "write points as CSV")
	bifurcationCmd.Flags().StringVar(&svgOut, "svg", "", "write the diagram as SVG")

	gridCmd := &cobra.Command{
		Use:   "grid [model]",
		Short: "scan combinations of several parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  gridScan,
	}
	addModelFlags(gridCmd, "set")
	gridCmd.Flags().StringArrayVar(&axes, "axis", nil, "swept parameter as name=min:max:n (repeatable)")
	gridCmd.Flags().Int("steps", config.DefaultSweepRuns, "steps per run")
	gridCmd.Flags().IntVar(&tail, "tail", config.DefaultTail, "trailing states kept per run")
	gridCmd.Flags().IntVar(&component, "component", 0, "state component to summarise")
	gridCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	gridCmd.Flags().StringVar(&csvOut, "csv", "", "write cells as CSV")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lyapunovExponent,
	}
	addModelFlags(lyapunovCmd, "param")
	lyapunovCmd.Flags().Int("steps", analysis.DefaultLyapunovConfig().Steps, "averaged steps")
	lyapunovCmd.Flags().Int("transient", analysis.DefaultLyapunovConfig().Transient, "discarded steps")
	lyapunovCmd.Flags().String("sweep", "", "parameter to sweep instead of a single estimate")
	lyapunovCmd.Flags().Float64Var(&sweepMin, "min", 2.5, "sweep start")
	lyapunovCmd.Flags().Float64Var(&sweepMax, "max", 4.0, "sweep end")
	lyapunovCmd.Flags().Int("points", 60, "number of parameter values")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [model]",
		Short: "Fourier spectrum of one component",
		Args:  cobra.MaximumNArgs(1),
		RunE:  spectrumPlot,
	}
	addRunFlags(spectrumCmd, 256)
	spectrumCmd.Flags().Int("transient", 0, "leading states dropped before the transform")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "classify runs from perturbed initial states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	addRunFlags(monteCarloCmd, config.DefaultSweepRuns)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of runs")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.05, "uniform perturbation of every component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = clock)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore [model]",
		Short: "interactive terminal explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) > 0 {
				model = args[0]
			}
			return viz.RunExplore(experiment.NewRegistry(), model)
		},
	}

	rootCmd.AddCommand(runCmd, phaseCmd, bifurcationCmd, gridCmd, lyapunovCmd, spectrumCmd,
		monteCarloCmd, scenarioCmd, modelsCmd, presetsCmd, exploreCmd)
	return rootCmd
}

// Flags whose defaults differ between commands are read back with these
// rather than bound to shared variables.
func intFlag(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// addModelFlags registers the flags that pick a model configuration. paramFlag
// names the repeatable k=v flag, which sweeps call --set to free up --param.
func addModelFlags(cmd *cobra.Command, paramFlag string) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringArrayVar(&paramFlags, paramFlag, nil, "model parameter as k=v (repeatable)")
	cmd.Flags().StringVar(&x0Flag, "x0", "", "initial state, e.g. 0.5 or 10,1")
}

func addRunFlags(cmd *cobra.Command, defaultSteps int) {
	addModelFlags(cmd, "param")
	cmd.Flags().Int("steps", defaultSteps, "number of steps")
	cmd.Flags().IntVar(&tail, "tail", config.DefaultTail, "trailing states used for period detection")
	cmd.Flags().IntVar(&component, "component", 0, "state component to analyse")
}
