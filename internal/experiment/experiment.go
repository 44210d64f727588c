package experiment

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/physics"
)

type Test string

const (
	TestRapidity       Test = "rapidity"
	TestStability      Test = "stability"
	TestRapiditySmall  Test = "rapidity_small_angle"
	TestStabilitySmall Test = "stability_small_angle"
)

func AllTests() []Test {
	return []Test{TestRapidity, TestStability, TestRapiditySmall, TestStabilitySmall}
}

func ParseTest(name string) (Test, error) {
	for _, t := range AllTests() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown test: %s", name)
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *log.Logger

	compass *compass.Compass
	field   *compass.Field
	engine  *dynamic.Engine
}

// New prepares an experiment. A nil logger discards output.
func New(cfg *config.Config, logger *log.Logger) *Experiment {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

func (e *Experiment) Setup() error {
	c, err := e.cfg.BuildCompass()
	if err != nil {
		return err
	}
	f, err := e.cfg.BuildField()
	if err != nil {
		return err
	}
	return e.SetupWith(c, f)
}

// SetupWith builds the engine around an explicit compass and field, e.g.
// one read from a catalog.
func (e *Experiment) SetupWith(c *compass.Compass, f *compass.Field) error {
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	engine, err := dynamic.New(c, f, e.cfg.Params,
		dynamic.WithIntegrator(integ),
		dynamic.WithSolverConfig(e.cfg.Solver.Dynamo()),
		dynamic.WithMetrics(e.registry.DefaultMetrics(e.cfg.Params.SettlingLimitDeg)...),
		dynamic.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	e.compass, e.field, e.engine = c, f, engine
	e.logger.Debug("experiment ready", "compass", c.Name, "location", f.Name(), "integrator", e.cfg.Integrator)
	return nil
}

// Engine is nil until Setup succeeds.
func (e *Experiment) Engine() *dynamic.Engine {
	return e.engine
}

// Run executes the tests in order, all four when none are given.
func (e *Experiment) Run(ctx context.Context, tests ...Test) (*Report, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if len(tests) == 0 {
		tests = AllTests()
	}

	for _, t := range tests {
		var err error
		switch t {
		case TestRapidity:
			_, err = e.engine.Rapidity(ctx)
		case TestStability:
			_, err = e.engine.Stability(ctx)
		case TestRapiditySmall:
			_, err = e.engine.RapiditySmallAngle(ctx)
		case TestStabilitySmall:
			_, err = e.engine.StabilitySmallAngle(ctx)
		default:
			err = fmt.Errorf("unknown test: %s", t)
		}
		if err != nil {
			return nil, err
		}
	}

	return e.Report()
}

// Report summarizes the engine state.
func (e *Experiment) Report() (*Report, error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	coeffs, err := e.engine.Coefficients()
	if err != nil {
		return nil, err
	}
	resp, err := e.engine.Response()
	if err != nil {
		return nil, err
	}
	needle := physics.NewNeedle(coeffs.Magnetic, coeffs.Viscous, nil)

	r := &Report{
		Compass:          e.compass.Name,
		Location:         e.field.Name(),
		Integrator:       e.cfg.Integrator,
		Params:           e.engine.Params(),
		MomentOfInertia:  e.compass.MomentOfInertia(),
		ViscousCoef:      e.compass.ViscousCoefficient(),
		Coefficients:     coeffs,
		NaturalFrequency: needle.NaturalFrequency(),
		DampingRatio:     needle.DampingRatio(),
		SteadyAmplitude:  resp.Amplitude() * 180 / math.Pi,
		Phase:            resp.Phase,
		Runs:             make(map[string]RunSummary),
	}
	if v, ok := e.engine.Tho(); ok {
		r.Tho = &v
	}
	if v, ok := e.engine.StabAmp(); ok {
		r.StabAmp = &v
	}
	if v, ok := e.engine.ExperimentalCrossing(); ok {
		r.ExperimentalCrossing = &v
	}
	if v, ok := e.engine.ExperimentalSettling(); ok {
		r.ExperimentalSettling = &v
	}
	for _, t := range AllTests() {
		run, ok := e.run(t)
		if !ok {
			continue
		}
		r.Runs[string(t)] = RunSummary{
			Samples:     run.Len(),
			Unit:        run.Unit().String(),
			Steps:       run.Steps(),
			Rejected:    run.Rejected(),
			EnergyDrift: run.EnergyDrift(),
			Metrics:     run.Metrics(),
		}
	}
	return r, nil
}

func (e *Experiment) run(t Test) (*dynamic.Run, bool) {
	switch t {
	case TestRapidity:
		return e.engine.Result(dynamic.Rapidity, false)
	case TestStability:
		return e.engine.Result(dynamic.Stability, false)
	case TestRapiditySmall:
		return e.engine.Result(dynamic.Rapidity, true)
	case TestStabilitySmall:
		return e.engine.Result(dynamic.Stability, true)
	}
	return nil, false
}

// Result returns the stored run of a test.
func (e *Experiment) Result(t Test) (*dynamic.Run, bool) {
	if e.engine == nil {
		return nil, false
	}
	return e.run(t)
}

// Runs returns every stored run keyed by test.
func (e *Experiment) Runs() map[Test]*dynamic.Run {
	out := make(map[Test]*dynamic.Run)
	if e.engine == nil {
		return out
	}
	for _, t := range AllTests() {
		if run, ok := e.run(t); ok {
			out[t] = run
		}
	}
	return out
}
