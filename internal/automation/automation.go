package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/experiment"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Overlay     bool           `yaml:"overlay"` // plot all steps in one chart
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Title     string             `yaml:"title"`
	Model     string             `yaml:"model"`
	Params    map[string]float64 `yaml:"params"`
	InitState any                `yaml:"init_state"`
	Steps     int                `yaml:"steps"`
}

// StepResult pairs a scenario step with the run it produced.
type StepResult struct {
	Index  int
	Title  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Results of the steps that completed are returned alongside the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1,
			"of", len(scenario.Steps), "model", step.Model)

		result, err := runStep(registry, step, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		title := step.Title
		if title == "" {
			title = fmt.Sprintf("%s (%s)", result.Model, result.Params)
		}
		results = append(results, StepResult{Index: i + 1, Title: title, Result: result})
	}

	return results, nil
}

func runStep(registry *experiment.Registry, step ScenarioStep, logger *slog.Logger) (*experiment.Result, error) {
	var x0 dynamo.State
	if step.InitState != nil {
		s, err := dynamo.Coerce(step.InitState)
		if err != nil {
			return nil, err
		}
		x0 = s
	}

	exp := experiment.New(experiment.Config{
		Model:     step.Model,
		Params:    step.Params,
		InitState: x0,
		Steps:     step.Steps,
	}).WithLogger(logger)
	if err := exp.Setup(registry, nil); err != nil {
		return nil, err
	}
	return exp.Run()
}
