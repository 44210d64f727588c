package metrics

import (
	"math"

	"github.com/san-kum/compassim/internal/dynamo"
)

// WithinLimit is the fraction of samples where |x[component]*scale| stays
// at or below the threshold.
type WithinLimit struct {
	name       string
	component  int
	scale      float64
	threshold  float64
	violations int
	samples    int
}

func NewWithinLimit(component int, scale, threshold float64) *WithinLimit {
	return &WithinLimit{
		name:      "within_limit",
		component: component,
		scale:     scale,
		threshold: threshold,
	}
}

func (s *WithinLimit) Name() string {
	return s.name
}

func (s *WithinLimit) Observe(x dynamo.State, t float64) {
	if s.component >= len(x) {
		return
	}
	s.samples++
	if math.Abs(x[s.component]*s.scale) > s.threshold {
		s.violations++
	}
}

func (s *WithinLimit) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *WithinLimit) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakAbs is the largest |x[component]*scale| seen.
type PeakAbs struct {
	name      string
	component int
	scale     float64
	peak      float64
}

func NewPeakAbs(name string, component int, scale float64) *PeakAbs {
	return &PeakAbs{name: name, component: component, scale: scale}
}

func (p *PeakAbs) Name() string { return p.name }

func (p *PeakAbs) Observe(x dynamo.State, t float64) {
	if p.component < len(x) {
		p.peak = math.Max(p.peak, math.Abs(x[p.component]*p.scale))
	}
}

func (p *PeakAbs) Value() float64 { return p.peak }

func (p *PeakAbs) Reset() { p.peak = 0 }
