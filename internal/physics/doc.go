// Package physics provides the needle equation of motion.
//
// [Needle] implements [dynamo.System], [dynamo.Configurable] and
// [dynamo.Hamiltonian], so energy drift can be monitored on free runs:
//
//	n := physics.NewNeedle(coeffs.Magnetic, coeffs.Viscous, nil)
//	e := n.Energy(state)
package physics
