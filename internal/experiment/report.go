package experiment

import "github.com/san-kum/compassim/internal/dynamic"

// Report is the outcome of an experiment. Pointers are nil for results the
// experiment did not produce, or that are absent such as an unsettled Tho.
type Report struct {
	Compass              string                `json:"compass"`
	Location             string                `json:"location"`
	Integrator           string                `json:"integrator"`
	Params               dynamic.Params        `json:"params"`
	MomentOfInertia      float64               `json:"moment_of_inertia"`
	ViscousCoef          float64               `json:"viscous_coefficient"`
	Coefficients         dynamic.Coefficients  `json:"coefficients"`
	NaturalFrequency     float64               `json:"natural_frequency"`
	DampingRatio         float64               `json:"damping_ratio"`
	SteadyAmplitude      float64               `json:"steady_amplitude_deg"`
	Phase                float64               `json:"phase"`
	Tho                  *float64              `json:"tho,omitempty"`
	StabAmp              *float64              `json:"stab_amp,omitempty"`
	ExperimentalCrossing *float64              `json:"experimental_crossing,omitempty"`
	ExperimentalSettling *float64              `json:"experimental_settling,omitempty"`
	Runs                 map[string]RunSummary `json:"runs"`
}

type RunSummary struct {
	Samples     int                `json:"samples"`
	Unit        string             `json:"unit"`
	Steps       int                `json:"steps"`
	Rejected    int                `json:"rejected"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}
