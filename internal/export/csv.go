package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/dynamo"
)

type populationRow struct {
	Step int     `csv:"step"`
	X    float64 `csv:"x"`
}

type speciesRow struct {
	Step int     `csv:"step"`
	X0   float64 `csv:"x0"`
	X1   float64 `csv:"x1"`
}

type bifurcationRow struct {
	Param  float64 `csv:"param"`
	Value  float64 `csv:"value"`
	Period int     `csv:"period"`
}

type gridRow struct {
	Params string  `csv:"params"`
	Period int     `csv:"period"`
	Count  int     `csv:"count"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"stddev"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
}

// WriteTrajectoryCSV writes one row per step. Non-finite values are written as NaN or +Inf/-Inf.
func WriteTrajectoryCSV(w io.Writer, traj dynamo.Trajectory) error {
	switch traj.Dim() {
	case 0:
		return fmt.Errorf("empty trajectory")
	case 1:
		rows := make([]populationRow, len(traj))
		for t, x := range traj {
			rows[t] = populationRow{Step: t, X: x[0]}
		}
		return gocsv.Marshal(rows, w)
	case 2:
		rows := make([]speciesRow, len(traj))
		for t, x := range traj {
			rows[t] = speciesRow{Step: t, X0: x[0], X1: x[1]}
		}
		return gocsv.Marshal(rows, w)
	}
	return fmt.Errorf("%w: csv export supports 1 or 2 components, got %d",
		dynamo.ErrDimensionMismatch, traj.Dim())
}

// WriteBifurcationCSV writes one row per settled value.
func WriteBifurcationCSV(w io.Writer, points []analysis.BifurcationPoint) error {
	rows := make([]bifurcationRow, 0, len(points))
	for _, p := range points {
		for _, v := range p.Values {
			rows = append(rows, bifurcationRow{Param: p.Param, Value: v, Period: p.Period})
		}
	}
	return gocsv.Marshal(rows, w)
}

func WriteGridCSV(w io.Writer, cells []analysis.GridCell) error {
	rows := make([]gridRow, len(cells))
	for i, c := range cells {
		rows[i] = gridRow{
			Params: c.Params.String(),
			Period: c.Period,
			Count:  c.Summary.Finite,
			Mean:   c.Summary.Mean,
			StdDev: c.Summary.StdDev,
			Min:    c.Summary.Min,
			Max:    c.Summary.Max,
		}
	}
	return gocsv.Marshal(rows, w)
}
