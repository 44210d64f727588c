package physics

import (
	"math"
	"testing"

	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/excitation"
)

func TestNeedleDerive(t *testing.T) {
	tests := []struct {
		name   string
		needle *Needle
		x      dynamo.State
		t      float64
		want   dynamo.State
	}{
		{
			name:   "at rest on field line",
			needle: NewNeedle(-80, -5, nil),
			x:      dynamo.State{0, 0},
			want:   dynamo.State{0, 0},
		},
		{
			name:   "quarter turn",
			needle: NewNeedle(-80, -5, nil),
			x:      dynamo.State{2, math.Pi / 2},
			want:   dynamo.State{-80 - 10, 2},
		},
		{
			name:   "small angle is linear",
			needle: &Needle{Magnetic: -80, Viscous: -5, SmallAngle: true},
			x:      dynamo.State{0, math.Pi / 2},
			want:   dynamo.State{-80 * math.Pi / 2, 0},
		},
		{
			name:   "forcing scaled by cos",
			needle: NewNeedle(0, 0, excitation.NewGait(3, 15)),
			x:      dynamo.State{0, math.Pi / 3},
			t:      1,
			want:   dynamo.State{1.5, 0},
		},
		{
			name:   "small angle forcing unscaled",
			needle: &Needle{Excitation: excitation.NewGait(3, 15), SmallAngle: true},
			x:      dynamo.State{0, math.Pi / 3},
			t:      1,
			want:   dynamo.State{3, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.needle.Derive(tt.x, tt.t)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("component %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNeedleEnergy(t *testing.T) {
	n := NewNeedle(-4, 0, nil)
	if got := n.Energy(dynamo.State{0, 0}); got != 0 {
		t.Errorf("energy at rest got %v, want 0", got)
	}
	if got := n.Energy(dynamo.State{0, math.Pi}); math.Abs(got-8) > 1e-12 {
		t.Errorf("energy upside down got %v, want 8", got)
	}
	n.SmallAngle = true
	if got := n.Energy(dynamo.State{2, 1}); math.Abs(got-4) > 1e-12 {
		t.Errorf("linear energy got %v, want 4", got)
	}
}

func TestNeedleDamping(t *testing.T) {
	n := NewNeedle(-100, -10, nil)
	if got := n.NaturalFrequency(); got != 10 {
		t.Errorf("natural frequency got %v, want 10", got)
	}
	if got := n.DampingRatio(); got != 0.5 {
		t.Errorf("damping ratio got %v, want 0.5", got)
	}
	n.Magnetic = 0
	if !math.IsInf(n.DampingRatio(), 1) {
		t.Errorf("damping ratio without field got %v, want +Inf", n.DampingRatio())
	}
}

func TestNeedleParams(t *testing.T) {
	n := NewNeedle(-1, -2, nil)
	if err := n.SetParam("viscous", -3); err != nil {
		t.Fatal(err)
	}
	if n.GetParams()["viscous"] != -3 {
		t.Errorf("viscous got %v, want -3", n.Viscous)
	}
	if err := n.SetParam("gravity", 1); err == nil {
		t.Error("unknown param accepted")
	}
}

func TestNewNeedleWithoutSource(t *testing.T) {
	n := NewNeedle(-80, -5, nil)
	if _, ok := n.Excitation.(excitation.None); !ok {
		t.Fatalf("excitation got %T, want excitation.None", n.Excitation)
	}
	// no torque at any time on the field line
	for _, tt := range []float64{0, 0.1, 1.7} {
		if got := n.Derive(dynamo.State{0, 0}, tt); got[0] != 0 {
			t.Errorf("Derive at t=%g got acceleration %v, want 0", tt, got[0])
		}
	}
}
