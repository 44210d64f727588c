// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed step numerical integrator
//   - [AdaptiveIntegrator]: error controlled integrator that may reject a step
//   - [Simulator]: integrates a System and samples it on a fixed time grid
//
// # Example
//
//	dyn := &physics.Needle{Magnetic: -80, Viscous: -5}
//	sim := dynamo.New(dyn, integrators.NewRK45())
//	result, err := sim.Run(ctx, dynamo.State{0, math.Pi / 2}, dynamo.DefaultConfig())
//
// Samples are taken exactly at k*Dt: the simulator shortens the step that
// would overshoot a sample time instead of interpolating.
//
// # Failures
//
// A run that cannot complete returns a [*NumericalFailure] describing the
// requested span, the failure time and the last valid state. No partial
// result is returned with it.
//
// # Thread Safety
//
// Simulator and integrator instances are NOT thread-safe. Use one of each
// per goroutine; see [ParallelFor] for splitting independent work.
package dynamo
