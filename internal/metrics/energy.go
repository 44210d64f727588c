package metrics

import (
	"math"

	"github.com/san-kum/compassim/internal/dynamo"
)

// EnergyDrift is the largest rise of the energy above its value at the
// first sample, relative to that value. A free damped needle only loses
// energy, so any rise is integration error. Runs starting with zero energy,
// and systems without an Energy method, report zero.
type EnergyDrift struct {
	ham   dynamo.Hamiltonian
	start float64
	seen  bool
	rise  float64
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	ham, _ := dyn.(dynamo.Hamiltonian)
	return &EnergyDrift{ham: ham}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	if e.ham == nil {
		return
	}
	energy := e.ham.Energy(x)
	if !e.seen {
		e.start, e.seen = energy, true
		return
	}
	if e.start != 0 {
		e.rise = math.Max(e.rise, (energy-e.start)/math.Abs(e.start))
	}
}

func (e *EnergyDrift) Value() float64 { return e.rise }

func (e *EnergyDrift) Reset() {
	*e = EnergyDrift{ham: e.ham}
}
