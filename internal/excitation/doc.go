// Package excitation provides external torques applied to the needle.
//
// A [Source] returns the angular acceleration it imposes at time t:
//
//   - [Gait]: sinusoidal forcing from a walking or running orienteer
//   - [None]: no forcing, for free decay runs
//
// The needle model multiplies the source value by cos(angle) in the
// nonlinear equation, so sources only describe the time dependence.
//
// Sources implementing [dynamo.Configurable] can be tuned by name from
// sweeps and scenarios.
package excitation
