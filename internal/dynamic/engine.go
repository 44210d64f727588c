package dynamic

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/excitation"
	"github.com/san-kum/compassim/internal/integrators"
	"github.com/san-kum/compassim/internal/metrics"
	"github.com/san-kum/compassim/internal/physics"
)

// Coefficients of alpha” = Magnetic sin(alpha) + Viscous alpha' +
// Excitation cos(alpha) sin(pi f t / 30).
type Coefficients struct {
	Magnetic   float64 `json:"magnetic"`   // 1/s²
	Viscous    float64 `json:"viscous"`    // 1/s
	Excitation float64 `json:"excitation"` // rad/s²
}

const degPerRad = 180 / math.Pi

type Option func(*Engine)

// WithIntegrator replaces the default Dormand-Prince integrator. Fixed step
// integrators take steps of the solver InitialDt, or of the sample interval
// when it is unset.
func WithIntegrator(integ dynamo.Integrator) Option {
	return func(e *Engine) { e.integrator = integ }
}

// WithSolverConfig sets tolerances, step limits and the step budget. Dt and
// Duration are overwritten for every run.
func WithSolverConfig(cfg dynamo.Config) Option {
	return func(e *Engine) { e.solver = cfg }
}

// WithMetrics attaches streaming metrics to every run. They observe the raw
// state, angle in radians, at each sample.
func WithMetrics(m ...dynamo.Metric) Option {
	return func(e *Engine) { e.metrics = append(e.metrics, m...) }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

type Engine struct {
	compass    *compass.Compass
	field      *compass.Field
	params     Params
	integrator dynamo.Integrator
	solver     dynamo.Config
	logger     *log.Logger
	metrics    []dynamo.Metric

	runs map[runKey]*Run

	tho        float64
	thoSet     bool
	stabAmp    float64
	stabAmpSet bool

	experimental *Series
	expCrossing  float64
	expCrossSet  bool
	expSettling  float64
	expSettleSet bool
}

type runKey struct {
	kind       Kind
	smallAngle bool
}

// New builds an engine around c and f. Both are kept by reference.
func New(c *compass.Compass, f *compass.Field, p Params, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, &compass.InvalidParameterError{Owner: "engine", Field: "compass", Reason: "missing"}
	}
	if f == nil {
		return nil, &compass.InvalidParameterError{Owner: "engine", Field: "field", Reason: "missing"}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		compass:    c,
		field:      f,
		params:     p,
		integrator: integrators.NewRK45(),
		solver:     dynamo.DefaultConfig(),
		logger:     log.New(io.Discard),
		runs:       make(map[runKey]*Run),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Compass() *compass.Compass { return e.compass }
func (e *Engine) Field() *compass.Field     { return e.field }
func (e *Engine) Params() Params            { return e.params }

// SetParams replaces the test conditions. Stored runs are kept until the
// matching test is run again.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

// Coefficients validates the compass and derives the three equation
// coefficients. Nothing is cached.
func (e *Engine) Coefficients() (Coefficients, error) {
	if err := e.compass.Validate(); err != nil {
		return Coefficients{}, err
	}
	c, f, p := e.compass, e.field, e.params
	inertia := c.MomentOfInertia()
	forcing := math.Pi * p.StepFrequency / 30

	coeffs := Coefficients{
		Magnetic: -p.MagneticFit * c.MagRemanence * c.MagnetVolume * f.Intensity() *
			math.Cos(f.Inclination()) / (compass.MagneticPermeability * inertia),
		Viscous:    -p.ViscousFit * c.ViscousCoefficient() / inertia,
		Excitation: c.MagnetMass * c.Offset * p.WalkAmplitude * forcing * forcing / inertia,
	}
	return coeffs, nil
}

func (e *Engine) MagneticTerm() (float64, error) {
	c, err := e.Coefficients()
	return c.Magnetic, err
}

func (e *Engine) ViscousTerm() (float64, error) {
	c, err := e.Coefficients()
	return c.Viscous, err
}

func (e *Engine) ExcitationTerm() (float64, error) {
	c, err := e.Coefficients()
	return c.Excitation, err
}

// Rapidity releases the needle from the initial deflection and records the
// angle in degrees, then updates Tho.
func (e *Engine) Rapidity(ctx context.Context) (*Run, error) {
	run, err := e.simulate(ctx, Rapidity, false)
	if err != nil {
		return nil, err
	}
	idx, ok := metrics.SettlingIndex(run.angles, e.params.SettlingLimitDeg)
	e.thoSet = ok
	e.tho = 0
	if ok {
		e.tho = run.times[idx]
	}
	e.logger.Debug("settling", "tho", e.tho, "settled", ok)
	return run, nil
}

// Stability shakes the needle from rest and records the angle in degrees,
// then updates StabAmp.
func (e *Engine) Stability(ctx context.Context) (*Run, error) {
	run, err := e.simulate(ctx, Stability, false)
	if err != nil {
		return nil, err
	}
	amp, err := metrics.SecondHalfSpan(run.angles)
	e.stabAmpSet = err == nil
	e.stabAmp = amp
	e.logger.Debug("stability amplitude", "stab_amp", amp)
	return run, nil
}

// RapiditySmallAngle is Rapidity on the linearized equation, in radians.
func (e *Engine) RapiditySmallAngle(ctx context.Context) (*Run, error) {
	return e.simulate(ctx, Rapidity, true)
}

// StabilitySmallAngle is Stability on the linearized equation, in radians.
func (e *Engine) StabilitySmallAngle(ctx context.Context) (*Run, error) {
	return e.simulate(ctx, Stability, true)
}

// Result returns the last stored run of a test.
func (e *Engine) Result(kind Kind, smallAngle bool) (*Run, bool) {
	run, ok := e.runs[runKey{kind, smallAngle}]
	return run, ok
}

// Tho is the settling time of the last rapidity run. ok is false when the
// needle never crossed the limit inside the sampled window.
func (e *Engine) Tho() (float64, bool) {
	return e.tho, e.thoSet
}

// StabAmp is the peak to peak amplitude, in degrees, of the second half of
// the last stability run.
func (e *Engine) StabAmp() (float64, bool) {
	return e.stabAmp, e.stabAmpSet
}

func (e *Engine) simulate(ctx context.Context, kind Kind, smallAngle bool) (*Run, error) {
	coeffs, err := e.Coefficients()
	if err != nil {
		return nil, err
	}

	needle := physics.NewNeedle(coeffs.Magnetic, coeffs.Viscous, nil)
	needle.SmallAngle = smallAngle

	cfg := e.solver
	cfg.Dt = e.params.SampleInterval

	var x0 dynamo.State
	switch kind {
	case Rapidity:
		x0 = dynamo.State{0, e.params.InitialDeflectionDeg * math.Pi / 180}
		cfg.Duration = e.params.RapidityDuration
	case Stability:
		x0 = dynamo.State{0, 0}
		needle.Excitation = excitation.NewGait(coeffs.Excitation, e.params.StepFrequency)
		cfg.Duration = e.params.StabilityDuration
	default:
		return nil, fmt.Errorf("dynamic: unknown test %d", kind)
	}

	run := &Run{kind: kind, smallAngle: smallAngle, unit: Degrees, coeffs: coeffs}
	if smallAngle {
		run.unit = Radians
	}

	logger := e.logger.With("compass", e.compass.Name, "run", run.Name())
	logger.Debug("integrating", "magnetic", coeffs.Magnetic, "viscous", coeffs.Viscous,
		"excitation", coeffs.Excitation, "duration", cfg.Duration)

	sim := dynamo.New(needle, e.integrator)
	for _, m := range e.metrics {
		sim.AddMetric(m)
	}
	sim.AddMetric(metrics.NewEnergyDrift(needle))
	sim.AddObserver(newProgress(logger, len(dynamo.SampleTimes(cfg.Duration, cfg.Dt))))
	result, err := sim.Run(ctx, x0, cfg)
	if err != nil {
		logger.Error("integration failed", "err", err)
		return nil, fmt.Errorf("dynamic: %s: %w", run.Name(), err)
	}

	run.times = result.Times
	run.omegas = result.Component(0)
	run.angles = result.Component(1)
	if !smallAngle {
		for i, a := range run.angles {
			run.angles[i] = a * degPerRad
		}
	}
	run.steps = result.StepsTaken
	run.rejected = result.Rejected
	run.energyDrift = result.Metrics["energy_drift"]
	run.metrics = result.Metrics

	logger.Info("run complete", "samples", run.Len(), "steps", run.steps, "rejected", run.rejected)

	e.runs[runKey{kind, smallAngle}] = run
	return run, nil
}

// progress logs the needle state at every tenth of a run.
type progress struct {
	logger *log.Logger
	every  int
	seen   int
}

func newProgress(logger *log.Logger, samples int) *progress {
	return &progress{logger: logger, every: max(1, samples/10)}
}

func (p *progress) OnStep(x dynamo.State, t float64) {
	p.seen++
	if p.seen%p.every == 0 {
		p.logger.Debug("progress", "t", t, "omega", x[0], "alpha", x[1])
	}
}
