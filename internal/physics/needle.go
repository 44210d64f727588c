package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/excitation"
)

// Needle is the compass needle turning in its fluid:
//
//	alpha'' = M sin(alpha) + V alpha' + F(t) cos(alpha)
//
// with M the magnetic term, V the viscous term and F the excitation. Both
// M and V are negative for a restoring, damped needle. With SmallAngle
// set, sin(alpha) becomes alpha and the cos(alpha) factor is dropped.
//
// The state is {omega, alpha} in rad/s and rad.
type Needle struct {
	Magnetic   float64
	Viscous    float64
	Excitation excitation.Source
	SmallAngle bool
}

// NewNeedle builds a free needle when src is nil.
func NewNeedle(magnetic, viscous float64, src excitation.Source) *Needle {
	if src == nil {
		src = excitation.None{}
	}
	return &Needle{
		Magnetic:   magnetic,
		Viscous:    viscous,
		Excitation: src,
	}
}

func (n *Needle) StateDim() int {
	return 2
}

func (n *Needle) Derive(x dynamo.State, t float64) dynamo.State {
	omega := x[0]
	alpha := x[1]

	restoring := math.Sin(alpha)
	if n.SmallAngle {
		restoring = alpha
	}
	acc := n.Magnetic*restoring + n.Viscous*omega

	if n.Excitation != nil {
		forcing := n.Excitation.At(t)
		if !n.SmallAngle {
			forcing *= math.Cos(alpha)
		}
		acc += forcing
	}

	return dynamo.State{acc, omega}
}

// Energy is the mechanical energy per unit inertia, zero at rest on the
// field line.
func (n *Needle) Energy(x dynamo.State) float64 {
	omega, alpha := x[0], x[1]
	ke := 0.5 * omega * omega
	if n.SmallAngle {
		return ke - 0.5*n.Magnetic*alpha*alpha
	}
	return ke - n.Magnetic*(1.0-math.Cos(alpha))
}

// NaturalFrequency is sqrt(-M), the undamped small angle frequency in rad/s.
// It is zero when the magnetic term does not restore.
func (n *Needle) NaturalFrequency() float64 {
	if n.Magnetic >= 0 {
		return 0
	}
	return math.Sqrt(-n.Magnetic)
}

// DampingRatio is -V / (2 sqrt(-M)), +Inf without a restoring term.
func (n *Needle) DampingRatio() float64 {
	w0 := n.NaturalFrequency()
	if w0 == 0 {
		return math.Inf(1)
	}
	return -n.Viscous / (2 * w0)
}

func (n *Needle) GetParams() map[string]float64 {
	return map[string]float64{
		"magnetic": n.Magnetic,
		"viscous":  n.Viscous,
	}
}

func (n *Needle) SetParam(name string, value float64) error {
	switch name {
	case "magnetic":
		n.Magnetic = value
	case "viscous":
		n.Viscous = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
