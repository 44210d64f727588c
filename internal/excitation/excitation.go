package excitation

import (
	"fmt"
	"math"
)

type Source interface {
	At(t float64) float64
}

type None struct{}

func (None) At(float64) float64 { return 0 }

// Gait is the forcing produced by a runner: Amplitude*sin(pi*f*t/30), with
// f the step frequency in steps per minute. The body sways once every two
// steps, so the forcing has angular frequency pi*f/30.
type Gait struct {
	Amplitude     float64 // rad/s²
	StepFrequency float64 // steps/min
}

func NewGait(amplitude, stepFrequency float64) *Gait {
	return &Gait{Amplitude: amplitude, StepFrequency: stepFrequency}
}

func (g *Gait) At(t float64) float64 {
	return g.Amplitude * math.Sin(g.AngularFrequency()*t)
}

// AngularFrequency is the forcing angular frequency in rad/s.
func (g *Gait) AngularFrequency() float64 {
	return math.Pi * g.StepFrequency / 30
}

// Period is the forcing period in seconds, +Inf when standing still.
func (g *Gait) Period() float64 {
	w := g.AngularFrequency()
	if w == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / math.Abs(w)
}

func (g *Gait) GetParams() map[string]float64 {
	return map[string]float64{
		"amplitude":      g.Amplitude,
		"step_frequency": g.StepFrequency,
	}
}

func (g *Gait) SetParam(name string, value float64) error {
	switch name {
	case "amplitude":
		g.Amplitude = value
	case "step_frequency", "f":
		g.StepFrequency = value
	default:
		return fmt.Errorf("excitation: unknown gait parameter %q", name)
	}
	return nil
}
