package dynamic_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/integrators"
	"github.com/san-kum/compassim/internal/metrics"
)

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		c      *compass.Compass
		field  *compass.Field
		params dynamic.Params
	)

	BeforeEach(func() {
		ctx = context.Background()
		c = compass.R500()
		field = compass.Lille()
		params = dynamic.DefaultParams()
	})

	newEngine := func(opts ...dynamic.Option) *dynamic.Engine {
		e, err := dynamic.New(c, field, params, opts...)
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	Describe("construction", func() {
		It("rejects an invalid compass", func() {
			c.MagnetMass = -1
			_, err := dynamic.New(c, field, params)
			Expect(err).To(MatchError(compass.ErrInvalidParameter))
		})

		It("rejects a missing field", func() {
			_, err := dynamic.New(c, nil, params)
			Expect(err).To(MatchError(compass.ErrInvalidParameter))
		})

		It("rejects a non-positive sample interval", func() {
			params.SampleInterval = 0
			_, err := dynamic.New(c, field, params)
			var pe *compass.InvalidParameterError
			Expect(err).To(BeAssignableToTypeOf(pe))
			Expect(err.(*compass.InvalidParameterError).Field).To(Equal("sample_interval"))
		})
	})

	Describe("coefficients", func() {
		It("derives the R500 terms in Lille", func() {
			coeffs, err := newEngine().Coefficients()
			Expect(err).NotTo(HaveOccurred())
			Expect(coeffs.Magnetic).To(BeNumerically("~", -80.0155473330411, 1e-9))
			Expect(coeffs.Viscous).To(BeNumerically("~", -1205.2000047221225, 1e-7))
			Expect(coeffs.Excitation).To(BeNumerically("~", -72.67052809507186, 1e-9))
		})

		It("scales with the fit factors", func() {
			params.MagneticFit = 2
			params.ViscousFit = 0.5
			m, err := newEngine().MagneticTerm()
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(BeNumerically("~", -160.0310946660822, 1e-9))

			v, err := newEngine().ViscousTerm()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", -602.6000023610612, 1e-7))
		})

		It("sees later edits of the shared compass", func() {
			e := newEngine()
			before, _ := e.ExcitationTerm()
			c.Offset = 0
			after, err := e.ExcitationTerm()
			Expect(err).NotTo(HaveOccurred())
			Expect(before).NotTo(BeZero())
			Expect(after).To(BeZero())
		})

		It("fails fast once the shared compass becomes invalid", func() {
			e := newEngine()
			c.GapAbove = 0
			_, err := e.Coefficients()
			Expect(err).To(MatchError(compass.ErrInvalidParameter))
			_, err = e.Rapidity(ctx)
			Expect(err).To(MatchError(compass.ErrInvalidParameter))
		})
	})

	Describe("rapidity", func() {
		It("samples every interval below the duration", func() {
			run, err := newEngine().Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(300))
			Expect(run.Unit()).To(Equal(dynamic.Degrees))
			times := run.Times()
			Expect(times[0]).To(BeZero())
			Expect(times[299]).To(BeNumerically("~", 2.99, 1e-12))
			Expect(run.Angles()[0]).To(BeNumerically("~", 90, 1e-12))
		})

		It("keeps the needle still without magnetic and viscous terms", func() {
			params.MagneticFit = 0
			params.ViscousFit = 0
			run, err := newEngine().Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, a := range run.Angles() {
				Expect(a).To(BeNumerically("~", 90, 1e-9))
			}
		})

		It("is bit for bit repeatable", func() {
			e := newEngine()
			first, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Angles()).To(Equal(first.Angles()))
			Expect(second.Times()).To(Equal(first.Times()))
		})

		It("decays monotonically and never settles when overdamped", func() {
			e := newEngine()
			run, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			angles := run.Angles()
			for i := 1; i < len(angles); i++ {
				Expect(angles[i]).To(BeNumerically("<=", angles[i-1]))
			}
			Expect(angles[len(angles)-1]).To(BeNumerically(">", 5))
			_, ok := e.Tho()
			Expect(ok).To(BeFalse())
		})

		It("reports the last crossing when underdamped", func() {
			params.ViscousFit = 0.005
			e := newEngine()
			run, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())

			tho, ok := e.Tho()
			Expect(ok).To(BeTrue())
			Expect(tho).To(BeNumerically(">", 0.5))
			Expect(tho).To(BeNumerically("<", 3))

			idx, _ := metrics.SettlingIndex(run.Angles(), params.SettlingLimitDeg)
			Expect(run.Times()[idx]).To(Equal(tho))
		})

		It("feeds streaming metrics with every sample", func() {
			params.ViscousFit = 0.005
			settling := metrics.NewSettling(1, 180/math.Pi, params.SettlingLimitDeg)
			e := newEngine(dynamic.WithMetrics(settling))
			run, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())

			tho, ok := e.Tho()
			Expect(ok).To(BeTrue())
			Expect(run.Metrics()).To(HaveKeyWithValue("settling_time", tho))
		})

		It("tracks energy gained by the integration", func() {
			params.ViscousFit = 0.005
			run, err := newEngine().Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Metrics()).To(HaveKey("energy_drift"))
			Expect(run.EnergyDrift()).To(Equal(run.Metrics()["energy_drift"]))
			Expect(run.EnergyDrift()).To(And(BeNumerically(">=", 0), BeNumerically("<", 1e-3)))
		})

		It("logs progress every tenth of the run", func() {
			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
			run, err := newEngine(dynamic.WithLogger(logger)).Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(300))
			Expect(strings.Count(buf.String(), "progress")).To(Equal(10))
		})

		It("stores the small angle run in radians", func() {
			run, err := newEngine().RapiditySmallAngle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Unit()).To(Equal(dynamic.Radians))
			Expect(run.SmallAngle()).To(BeTrue())
			Expect(run.Angles()[0]).To(BeNumerically("~", math.Pi/2, 1e-15))
		})

		It("agrees between integrators", func() {
			params.ViscousFit = 0.005
			adaptive, err := newEngine().Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())

			cfg := dynamo.DefaultConfig()
			cfg.Adaptive = false
			cfg.InitialDt = 0.0005
			fixed, err := newEngine(dynamic.WithIntegrator(integrators.NewRK4()), dynamic.WithSolverConfig(cfg)).Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(floats.EqualApprox(adaptive.Angles(), fixed.Angles(), 1e-3)).To(BeTrue())
		})
	})

	Describe("stability", func() {
		It("starts at rest and computes the second half span", func() {
			e := newEngine()
			run, err := e.Stability(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(500))
			Expect(run.Angles()[0]).To(BeZero())

			amp, ok := e.StabAmp()
			Expect(ok).To(BeTrue())
			want, _ := metrics.SecondHalfSpan(run.Angles())
			Expect(amp).To(Equal(want))
			Expect(amp).To(BeNumerically(">", 0))
		})

		It("does not move without an offset magnet", func() {
			c.Offset = 0
			e := newEngine()
			_, err := e.Stability(ctx)
			Expect(err).NotTo(HaveOccurred())
			amp, ok := e.StabAmp()
			Expect(ok).To(BeTrue())
			Expect(amp).To(BeZero())
		})

		It("converges to the closed form steady state", func() {
			params.ViscousFit = 0.005
			params.StabilityDuration = 20
			e := newEngine()

			run, err := e.StabilitySmallAngle(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Unit()).To(Equal(dynamic.Radians))

			resp, err := e.Response()
			Expect(err).NotTo(HaveOccurred())
			want, err := e.SteadyStateAmplitude()
			Expect(err).NotTo(HaveOccurred())
			Expect(want).To(Equal(resp.Amplitude()))

			angles := run.Angles()
			times := run.Times()
			tail := angles[len(angles)-200:]
			got := (floats.Max(tail) - floats.Min(tail)) / 2
			Expect(got).To(BeNumerically("~", want, 0.01*want))

			for i := len(angles) - 200; i < len(angles); i++ {
				predicted, err := e.SteadyStateAngle(times[i])
				Expect(err).NotTo(HaveOccurred())
				Expect(angles[i]).To(BeNumerically("~", predicted, 0.01*want))
			}
		})
	})

	Describe("analytic response", func() {
		It("uses the sway frequency and its double", func() {
			e := newEngine()
			Expect(e.AngularFrequency()).To(BeNumerically("~", math.Pi*70/60, 1e-15))
			resp, err := e.Response()
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Omega).To(BeNumerically("~", math.Pi*70/30, 1e-15))
		})

		It("reduces to the static deflection without forcing frequency", func() {
			params.StepFrequency = 0
			e := newEngine()
			amp, err := e.Amplification()
			Expect(err).NotTo(HaveOccurred())
			resp, _ := e.Response()
			Expect(amp).To(BeNumerically("~", 1/resp.Stiffness, 1e-9/resp.Stiffness))
			phase, err := e.Phase()
			Expect(err).NotTo(HaveOccurred())
			Expect(phase).To(BeZero())
		})
	})

	Describe("numerical failure", func() {
		It("surfaces an exhausted step budget without storing a run", func() {
			cfg := dynamo.DefaultConfig()
			cfg.MaxSteps = 10
			e := newEngine(dynamic.WithSolverConfig(cfg))

			run, err := e.Rapidity(ctx)
			Expect(run).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrStepBudget))

			var nf *dynamo.NumericalFailure
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.From).To(BeZero())
			Expect(nf.To).To(Equal(params.RapidityDuration))
			Expect(nf.State).To(HaveLen(2))

			_, stored := e.Result(dynamic.Rapidity, false)
			Expect(stored).To(BeFalse())
			_, ok := e.Tho()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("experimental overlay", func() {
		It("records the first and last exceedance without touching tho", func() {
			params.ViscousFit = 0.005
			e := newEngine()
			_, err := e.Rapidity(ctx)
			Expect(err).NotTo(HaveOccurred())
			tho, _ := e.Tho()

			err = e.LoadExperimental(dynamic.Series{
				Time:  []float64{0, 0.1, 0.2, 0.3, 0.4},
				Angle: []float64{2, 60, 4, -7, 1},
			})
			Expect(err).NotTo(HaveOccurred())

			first, ok := e.ExperimentalCrossing()
			Expect(ok).To(BeTrue())
			Expect(first).To(Equal(0.1))
			last, ok := e.ExperimentalSettling()
			Expect(ok).To(BeTrue())
			Expect(last).To(Equal(0.3))

			after, ok := e.Tho()
			Expect(ok).To(BeTrue())
			Expect(after).To(Equal(tho))
		})

		DescribeTable("rejects unusable series",
			func(s dynamic.Series) {
				e := newEngine()
				Expect(e.LoadExperimental(s)).To(MatchError(dynamic.ErrInvalidSeries))
				_, loaded := e.Experimental()
				Expect(loaded).To(BeFalse())
			},
			Entry("empty", dynamic.Series{}),
			Entry("ragged", dynamic.Series{Time: []float64{0, 1}, Angle: []float64{1}}),
			Entry("NaN", dynamic.Series{Time: []float64{0, 1}, Angle: []float64{1, math.NaN()}}),
			Entry("time going back", dynamic.Series{Time: []float64{0, 1, 0.5}, Angle: []float64{1, 2, 3}}),
		)
	})
})
