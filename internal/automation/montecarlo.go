package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/experiment"
)

type Outcome int

const (
	Bounded Outcome = iota
	Extinct
	Diverged
)

func (o Outcome) String() string {
	switch o {
	case Bounded:
		return "bounded"
	case Extinct:
		return "extinct"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type MonteCarloConfig struct {
	Model        string
	Params       dynamo.Params
	BaseState    dynamo.State // nil selects the model's default state
	Perturbation float64
	NumTrials    int
	Steps        int
	Seed         int64 // 0 seeds from the clock
}

type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Outcome    Outcome
}

// RunMonteCarlo perturbs every component of the base state uniformly within
// +/- Perturbation and classifies each run by its default metrics.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", cfg.NumTrials)
	}

	entry, err := registry.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	base := cfg.BaseState
	if base == nil {
		base = entry.DefaultState
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		initState := make(dynamo.State, len(base))
		for i, v := range base {
			initState[i] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		exp := experiment.New(experiment.Config{
			Model:     cfg.Model,
			Params:    cfg.Params,
			InitState: initState,
			Steps:     cfg.Steps,
		}).WithLogger(logger)
		if err := exp.Setup(registry, nil); err != nil {
			return nil, err
		}
		result, err := exp.Run()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID:    trial,
			InitState:  initState,
			FinalState: result.Trajectory.Last(),
			Outcome:    classify(result.Metrics),
		})

		if (trial+1)%100 == 0 {
			logger.Debug("monte carlo progress", "done", trial+1, "trials", cfg.NumTrials)
		}
	}

	return results, nil
}

func classify(m map[string]float64) Outcome {
	if m["non_finite"] > 0 || m["bounded"] < 1 {
		return Diverged
	}
	if m["extinction_step"] >= 0 {
		return Extinct
	}
	return Bounded
}

// MonteCarloStats counts the trials per outcome.
func MonteCarloStats(results []MonteCarloResult) map[Outcome]int {
	counts := map[Outcome]int{Bounded: 0, Extinct: 0, Diverged: 0}
	for _, r := range results {
		counts[r.Outcome]++
	}
	return counts
}
