// Package analysis provides long-run and chaos analysis for population maps.
//
//   - [Bifurcation]: parameter sweep recording the attractor tail of each run
//   - [GridScan]: multi-parameter sweep summarised by period and tail statistics
//   - [DetectPeriod]: cycle length of a settled orbit
//   - [Lyapunov]: largest Lyapunov exponent by orbit separation
//   - [Spectrum]: magnitude spectrum of a component series
//   - [Summarize]: finite-value statistics of a series
//   - [PhasePortrait]: (x, y) points of a two-species trajectory
//
// Sweeps build a fresh model for every parameter value and run them in
// parallel; models are never shared between goroutines.
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, _ := analysis.Lyapunov(models.Logistic{}, dynamo.Params{"r": 4}, dynamo.Scalar(0.3), cfg)
//	if lambda > 0 {
//	    // orbit is chaotic
//	}
package analysis
