package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is a first order ODE dX/dt = Derive(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator attempts one step of size dt. On success it returns the
// new state and a suggested next step. When the error estimate is too large
// it returns x unchanged, a smaller step and ErrStepRejected.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Tolerance bounds the local error per component: Abs + Rel*|x|.
type Tolerance struct {
	Abs float64
	Rel float64
}

type Config struct {
	Dt            float64 // sample interval
	Duration      float64
	InitialDt     float64 // first solver step, Dt when zero
	AbsTol        float64
	RelTol        float64
	MaxDt         float64
	MinDt         float64
	MaxSteps      int
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		AbsTol:        1e-9,
		RelTol:        1e-7,
		MaxDt:         0.1,
		MinDt:         1e-12,
		MaxSteps:      2_000_000,
		Adaptive:      true,
		ValidateState: true,
	}
}

func (c Config) Tolerance() Tolerance {
	return Tolerance{Abs: c.AbsTol, Rel: c.RelTol}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if !(c.MaxDt > 0) {
		return fmt.Errorf("%w: max dt must be positive, got %g", ErrInvalidConfig, c.MaxDt)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if c.Adaptive && (c.AbsTol < 0 || c.RelTol < 0 || c.AbsTol+c.RelTol <= 0) {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	return nil
}

// SampleTimes returns k*dt for every k with k*dt in [0, duration).
func SampleTimes(duration, dt float64) []float64 {
	n := int(math.Ceil(duration / dt))
	if n < 0 {
		n = 0
	}
	times := make([]float64, n)
	for k := range times {
		times[k] = float64(k) * dt
	}
	return times
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}

// Component extracts one state component over the whole run.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}
