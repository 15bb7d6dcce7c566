// Package viz renders population trajectories in the terminal.
//
// Static renderers return strings: [TimeSeries] plots components over time with
// asciigraph, [PhasePortrait] and [BifurcationScatter] draw onto a braille
// [Canvas]. [Explorer] is a Bubble Tea program that iterates a registered
// model live while its parameters are tuned.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step
//	R     - Restart from the default state
//	Tab   - Cycle parameters
//	J/K   - Tune the selected parameter
//	Esc   - Back to the model list
package viz
