package dynamic

import (
	"math"

	"github.com/san-kum/compassim/internal/compass"
)

// Params are the test conditions. Durations and intervals are in seconds.
type Params struct {
	InitialDeflectionDeg float64 `yaml:"initial_deflection_deg" json:"initial_deflection_deg"`
	RapidityDuration     float64 `yaml:"rapidity_duration" json:"rapidity_duration"`
	StabilityDuration    float64 `yaml:"stability_duration" json:"stability_duration"`
	SampleInterval       float64 `yaml:"sample_interval" json:"sample_interval"`
	WalkAmplitude        float64 `yaml:"walk_amplitude" json:"walk_amplitude"` // Y, m
	StepFrequency        float64 `yaml:"step_frequency" json:"step_frequency"` // f, steps/min
	MagneticFit          float64 `yaml:"magnetic_fit" json:"magnetic_fit"`     // k_m
	ViscousFit           float64 `yaml:"viscous_fit" json:"viscous_fit"`       // k_v
	SettlingLimitDeg     float64 `yaml:"settling_limit_deg" json:"settling_limit_deg"`
}

func DefaultParams() Params {
	return Params{
		InitialDeflectionDeg: 90,
		RapidityDuration:     3,
		StabilityDuration:    5,
		SampleInterval:       0.01,
		WalkAmplitude:        0.093,
		StepFrequency:        70,
		MagneticFit:          1,
		ViscousFit:           1,
		SettlingLimitDeg:     5,
	}
}

func (p Params) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"initial_deflection_deg", p.InitialDeflectionDeg, true},
		{"rapidity_duration", p.RapidityDuration, p.RapidityDuration > 0},
		{"stability_duration", p.StabilityDuration, p.StabilityDuration > 0},
		{"sample_interval", p.SampleInterval, p.SampleInterval > 0},
		{"walk_amplitude", p.WalkAmplitude, true},
		{"step_frequency", p.StepFrequency, p.StepFrequency >= 0},
		{"magnetic_fit", p.MagneticFit, true},
		{"viscous_fit", p.ViscousFit, true},
		{"settling_limit_deg", p.SettlingLimitDeg, p.SettlingLimitDeg >= 0},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return &compass.InvalidParameterError{Owner: "params", Field: c.name, Value: c.v, Reason: "must be finite"}
		}
		if !c.ok {
			return &compass.InvalidParameterError{Owner: "params", Field: c.name, Value: c.v, Reason: "out of range"}
		}
	}
	return nil
}

func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"initial_deflection_deg": p.InitialDeflectionDeg,
		"rapidity_duration":      p.RapidityDuration,
		"stability_duration":     p.StabilityDuration,
		"sample_interval":        p.SampleInterval,
		"walk_amplitude":         p.WalkAmplitude,
		"step_frequency":         p.StepFrequency,
		"magnetic_fit":           p.MagneticFit,
		"viscous_fit":            p.ViscousFit,
		"settling_limit_deg":     p.SettlingLimitDeg,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	f, ok := p.field(name)
	if !ok {
		return &compass.InvalidParameterError{Owner: "params", Field: name, Value: value, Reason: "unknown parameter"}
	}
	*f = value
	return nil
}

// Param reads one condition by name or alias.
func (p *Params) Param(name string) (float64, bool) {
	f, ok := p.field(name)
	if !ok {
		return 0, false
	}
	return *f, true
}

func (p *Params) field(name string) (*float64, bool) {
	switch name {
	case "initial_deflection_deg", "alpha_init_deg":
		return &p.InitialDeflectionDeg, true
	case "rapidity_duration", "tf_rap":
		return &p.RapidityDuration, true
	case "stability_duration", "tf_stab":
		return &p.StabilityDuration, true
	case "sample_interval", "dt":
		return &p.SampleInterval, true
	case "walk_amplitude", "Y":
		return &p.WalkAmplitude, true
	case "step_frequency", "f":
		return &p.StepFrequency, true
	case "magnetic_fit", "k_m":
		return &p.MagneticFit, true
	case "viscous_fit", "k_v":
		return &p.ViscousFit, true
	case "settling_limit_deg", "tho_lim":
		return &p.SettlingLimitDeg, true
	}
	return nil, false
}
