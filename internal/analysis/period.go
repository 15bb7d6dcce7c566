package analysis

import "math"

// Default settings for cycle detection.
const (
	DefaultTolerance = 1e-6
	DefaultMaxPeriod = 32
)

// DetectPeriod returns the smallest p <= maxPeriod such that the series repeats
// with lag p to within tol, or -1 when no such cycle exists (chaos, divergence,
// or too few values to see two full cycles).
func DetectPeriod(values []float64, tol float64, maxPeriod int) int {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if maxPeriod <= 0 {
		maxPeriod = DefaultMaxPeriod
	}

	for period := 1; period <= maxPeriod; period++ {
		if len(values) < 2*period {
			break
		}
		periodic := true
		for i := 0; i+period < len(values); i++ {
			if !(math.Abs(values[i]-values[i+period]) <= tol) {
				periodic = false
				break
			}
		}
		if periodic {
			return period
		}
	}

	return -1
}
