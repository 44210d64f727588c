package integrators

import "github.com/san-kum/compassim/internal/dynamo"

// Euler is the explicit first order method. It is only useful as a
// baseline for the other integrators.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}
