package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/compassim/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

// stiffDecay is x' = -1000 x, unstable for explicit steps above ~3.3e-3.
type stiffDecay struct{}

func (s *stiffDecay) StateDim() int { return 1 }

func (s *stiffDecay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-1000 * x[0]}
}

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-8 {
		t.Errorf("x(10) = %.12f, want %.12f", x[0], math.Cos(10))
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveAccept(t *testing.T) {
	integrator := NewRK45()
	x0 := dynamo.State{1.0, 0.0}

	x, newDt, err := integrator.StepAdaptive(&harmonicOscillator{}, x0, 0, 0.01, dynamo.Tolerance{Abs: 1e-8, Rel: 1e-8})
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0.01 {
		t.Errorf("accepted easy step should grow dt, got %g", newDt)
	}
}

func TestRK45_AdaptiveReject(t *testing.T) {
	integrator := NewRK45()
	x0 := dynamo.State{1.0}

	x, newDt, err := integrator.StepAdaptive(&stiffDecay{}, x0, 0, 0.1, dynamo.Tolerance{Abs: 1e-9, Rel: 1e-7})
	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("got err %v, want ErrStepRejected", err)
	}
	if x[0] != x0[0] {
		t.Errorf("rejected step changed state: got %v, want %v", x, x0)
	}
	if newDt >= 0.1 || newDt < 0.1*0.2 {
		t.Errorf("rejected step proposed dt %g, want in [0.02, 0.1)", newDt)
	}
}

func TestErrorNorm(t *testing.T) {
	tol := dynamo.Tolerance{Abs: 1, Rel: 0}
	got := ErrorNorm(dynamo.State{0, 0}, dynamo.State{0, 0}, dynamo.State{3, 4}, tol)
	want := math.Sqrt(12.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("ErrorNorm got %v, want %v", got, want)
	}

	tol = dynamo.Tolerance{Abs: 0, Rel: 0.5}
	got = ErrorNorm(dynamo.State{2}, dynamo.State{4}, dynamo.State{1}, tol)
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("ErrorNorm uses max(|x|,|xNew|): got %v, want 0.5", got)
	}
}

func TestRK45_VsRK4_Accuracy(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	dyn := &harmonicOscillator{}
	x4 := dynamo.State{1.0, 0.0}
	x45 := x4.Clone()
	dt := 0.1

	for i := 0; i < 100; i++ {
		x4 = rk4.Step(dyn, x4, float64(i)*dt, dt)
		x45 = rk45.Step(dyn, x45, float64(i)*dt, dt)
	}

	e4 := math.Abs(dyn.Energy(x4) - 0.5)
	e45 := math.Abs(dyn.Energy(x45) - 0.5)
	if e45 > e4 {
		t.Errorf("RK45 energy error %e larger than RK4 %e", e45, e4)
	}
}
