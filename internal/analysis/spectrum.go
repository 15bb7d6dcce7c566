package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the magnitudes of the real FFT of values after removing the
// mean, so index k is the strength of a cycle of length len(values)/k.
// Non-finite input yields nil.
func Spectrum(values []float64) []float64 {
	if len(values) < 2 || len(FiniteValues(values)) != len(values) {
		return nil
	}

	mean := stat.Mean(values, nil)
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// DominantPeriod is the cycle length of the strongest non-zero frequency,
// or 0 when the series is constant or unusable.
func DominantPeriod(values []float64) float64 {
	mags := Spectrum(values)
	if len(mags) < 2 {
		return 0
	}

	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	if mags[best] < 1e-12 {
		return 0
	}
	return float64(len(values)) / float64(best)
}
