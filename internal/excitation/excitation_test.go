package excitation

import (
	"math"
	"testing"
)

func TestGaitAt(t *testing.T) {
	g := NewGait(2, 70)
	w := math.Pi * 70 / 30

	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{math.Pi / (2 * w), 2},
		{math.Pi / w, 0},
		{3 * math.Pi / (2 * w), -2},
	}
	for _, tt := range tests {
		if got := g.At(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("At(%g) got %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestGaitPeriod(t *testing.T) {
	g := NewGait(1, 60)
	if got := g.Period(); math.Abs(got-1) > 1e-12 {
		t.Errorf("Period at 60 steps/min got %v, want 1", got)
	}
	g.StepFrequency = 0
	if !math.IsInf(g.Period(), 1) {
		t.Errorf("Period with no steps got %v, want +Inf", g.Period())
	}
}

func TestNone(t *testing.T) {
	var s Source = None{}
	if s.At(12.3) != 0 {
		t.Error("None produced a torque")
	}
}

func TestGaitSetParam(t *testing.T) {
	g := NewGait(1, 70)
	if err := g.SetParam("f", 90); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if g.GetParams()["step_frequency"] != 90 {
		t.Errorf("step_frequency got %v, want 90", g.GetParams()["step_frequency"])
	}
	if err := g.SetParam("mass", 1); err == nil {
		t.Error("unknown parameter accepted")
	}
}
