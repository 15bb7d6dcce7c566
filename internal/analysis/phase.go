package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/popdyn/internal/dynamo"
)

// Point is one sample of a phase portrait.
type Point struct {
	X, Y float64
}

// PhasePortrait pairs components xIdx and yIdx of every finite state, in time order.
func PhasePortrait(traj dynamo.Trajectory, xIdx, yIdx int) ([]Point, error) {
	if traj.Dim() <= xIdx || traj.Dim() <= yIdx || xIdx < 0 || yIdx < 0 {
		return nil, fmt.Errorf("%w: phase axes (%d, %d) on %d-dimensional trajectory",
			dynamo.ErrDimensionMismatch, xIdx, yIdx, traj.Dim())
	}

	points := make([]Point, 0, len(traj))
	for _, x := range traj {
		px, py := x[xIdx], x[yIdx]
		if math.IsNaN(px) || math.IsInf(px, 0) || math.IsNaN(py) || math.IsInf(py, 0) {
			continue
		}
		points = append(points, Point{X: px, Y: py})
	}
	return points, nil
}

// ReturnMap pairs x(t) with x(t+1) for a scalar series, the phase portrait of a 1-D map.
func ReturnMap(values []float64) []Point {
	if len(values) < 2 {
		return nil
	}
	points := make([]Point, 0, len(values)-1)
	for i := 0; i+1 < len(values); i++ {
		a, b := values[i], values[i+1]
		if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
			continue
		}
		points = append(points, Point{X: a, Y: b})
	}
	return points
}
