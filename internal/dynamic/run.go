package dynamic

type Kind int

const (
	Rapidity Kind = iota
	Stability
)

func (k Kind) String() string {
	switch k {
	case Rapidity:
		return "rapidity"
	case Stability:
		return "stability"
	default:
		return "unknown"
	}
}

type Unit int

const (
	Degrees Unit = iota
	Radians
)

func (u Unit) String() string {
	if u == Radians {
		return "rad"
	}
	return "deg"
}

// Run is one sampled trajectory. Accessors return copies.
type Run struct {
	kind        Kind
	smallAngle  bool
	unit        Unit
	coeffs      Coefficients
	times       []float64
	angles      []float64
	omegas      []float64
	steps       int
	rejected    int
	energyDrift float64
	metrics     map[string]float64
}

func (r *Run) Name() string {
	name := r.kind.String()
	if r.smallAngle {
		name += "_small_angle"
	}
	return name
}

func (r *Run) Kind() Kind                 { return r.kind }
func (r *Run) SmallAngle() bool           { return r.smallAngle }
func (r *Run) Unit() Unit                 { return r.unit }
func (r *Run) Coefficients() Coefficients { return r.coeffs }
func (r *Run) Len() int                   { return len(r.times) }
func (r *Run) Steps() int                 { return r.steps }
func (r *Run) Rejected() int              { return r.rejected }
func (r *Run) EnergyDrift() float64       { return r.energyDrift }

// Metrics holds the final value of every streaming metric of the run.
func (r *Run) Metrics() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for k, v := range r.metrics {
		out[k] = v
	}
	return out
}

func (r *Run) Times() []float64 { return clone(r.times) }

// Angles are in Unit().
func (r *Run) Angles() []float64 { return clone(r.angles) }

// AngularVelocity is always in rad/s.
func (r *Run) AngularVelocity() []float64 { return clone(r.omegas) }

func clone(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
