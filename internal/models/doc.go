// Package models provides the population maps simulated by popdyn.
//
// Each map implements [dynamo.Map]:
//
//   - [Exponential]: x' = r*x
//   - [Logistic]: x' = r*x*(1-x)
//   - [Moran]: x' = x*exp(r*(1-x)) (Ricker map)
//   - [HostParasite]: Nicholson-Bailey host-parasitoid map on [hosts, parasitoids]
//
// Constructors such as [NewLogistic] bind a map to a parameter set:
//
//	m := models.NewHostParasite(dynamo.Params{"b": 2, "a": 0.1, "c": 1})
//	traj, err := m.Simulate(dynamo.Vec(10, 1), 50)
package models
