package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/popdyn/internal/dynamo"
)

// LyapunovConfig controls the orbit-separation estimate.
type LyapunovConfig struct {
	Steps        int     // averaged steps
	Transient    int     // steps discarded before averaging
	Perturbation float64 // initial separation on component 0
}

func DefaultLyapunovConfig() LyapunovConfig {
	return LyapunovConfig{Steps: 2000, Transient: 200, Perturbation: 1e-8}
}

// Lyapunov estimates the largest Lyapunov exponent of a map, per step.
//
// Algorithm:
// 1. Run two orbits started Perturbation apart
// 2. Each step, accumulate ln(|d|/d0) and pull the second orbit back to distance d0
// 3. λ ≈ mean of the accumulated logs
//
// The estimate stops early if an orbit becomes non-finite.
func Lyapunov(m dynamo.Map, p dynamo.Params, x0 dynamo.State, cfg LyapunovConfig) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("%w: empty initial state", dynamo.ErrInvalidState)
	}
	if cfg.Perturbation <= 0 {
		cfg.Perturbation = DefaultLyapunovConfig().Perturbation
	}
	model := dynamo.New(m, p)

	x := x0.Clone()
	for i := 0; i < cfg.Transient; i++ {
		next, err := model.Step(x)
		if err != nil {
			return 0, err
		}
		x = next
	}

	d0 := cfg.Perturbation
	xp := x.Clone()
	xp[0] += d0

	sumLog := 0.0
	count := 0

	for i := 0; i < cfg.Steps; i++ {
		next, err := model.Step(x)
		if err != nil {
			return 0, err
		}
		nextP, err := model.Step(xp)
		if err != nil {
			return 0, err
		}
		x, xp = next, nextP
		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := 0.0
		for j := range x {
			diff := xp[j] - x[j]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)

		if sep == 0 {
			// orbits merged; restart the separation along component 0
			xp = x.Clone()
			xp[0] += d0
			continue
		}

		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / float64(count), nil
}
