package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the finite values of a series.
type Summary struct {
	Count  int     `json:"count"`
	Finite int     `json:"finite"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

func Summarize(values []float64) Summary {
	s := Summary{Count: len(values)}

	clean := FiniteValues(values)
	s.Finite = len(clean)
	if s.Finite == 0 {
		s.Mean, s.StdDev, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}

	s.Min = floats.Min(clean)
	s.Max = floats.Max(clean)
	if s.Finite == 1 {
		s.Mean = clean[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(clean, nil)
	return s
}

// FiniteValues drops NaN and Inf, keeping order.
func FiniteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
