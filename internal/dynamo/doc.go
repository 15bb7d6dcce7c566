// Package dynamo provides the core primitives for discrete-time dynamical systems.
//
// A discrete system evolves by repeated application of a transition function,
// x(t+1) = f(x(t)). The package defines:
//
//   - [State]: population vector (length 1 for single-species maps)
//   - [Params]: named model parameters
//   - [Map]: the transition function of a concrete model
//   - [Model]: a map bound to a parameter set, with the simulation driver
//   - [Trajectory]: ordered states produced by a run
//
// # Example
//
//	m := models.NewLogistic(dynamo.Params{"r": 2.5})
//	traj, err := m.Simulate(dynamo.Scalar(0.5), 100)
//
// # Thread Safety
//
// A Model keeps its most recent trajectory and is NOT safe for concurrent
// Simulate calls. Parameter sweeps build one Model per goroutine.
package dynamo
