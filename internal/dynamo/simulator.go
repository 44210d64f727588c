package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
	}
}

func (s *Simulator) AddMetric(m Metric) {
	s.metrics = append(s.metrics, m)
}

func (s *Simulator) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Run integrates from x0 at t=0 and records the state at every time of
// SampleTimes(cfg.Duration, cfg.Dt). Metrics and observers see the samples,
// not the internal solver steps.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	times := SampleTimes(cfg.Duration, cfg.Dt)
	result := &Result{
		States:  make([]State, 0, len(times)),
		Times:   make([]float64, 0, len(times)),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	adaptive, ok := s.integrator.(AdaptiveIntegrator)
	useAdaptive := cfg.Adaptive && ok
	tol := cfg.Tolerance()

	h := cfg.InitialDt
	if h <= 0 {
		h = cfg.Dt
	}
	h = math.Min(h, cfg.MaxDt)

	x := x0.Clone()
	t := 0.0

	fail := func(err error) (*Result, error) {
		return nil, &NumericalFailure{
			From:    0,
			To:      cfg.Duration,
			Time:    t,
			Step:    result.StepsTaken,
			State:   x.Clone(),
			Wrapped: err,
		}
	}

	for _, target := range times {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for t < target {
			if result.StepsTaken+result.Rejected >= cfg.MaxSteps {
				return fail(ErrStepBudget)
			}

			remaining := target - t
			step := math.Min(h, remaining)
			clipped := step == remaining

			var next State
			if useAdaptive {
				candidate, hNext, err := adaptive.StepAdaptive(s.dyn, x, t, step, tol)
				if errors.Is(err, ErrStepRejected) {
					result.Rejected++
					h = hNext
					if h < cfg.MinDt {
						return fail(ErrStepTooSmall)
					}
					continue
				}
				if err != nil {
					return fail(err)
				}
				next = candidate
				// a step shortened to hit a sample says little about the
				// step size the solution can afford
				if clipped && step < h {
					h = math.Max(h, hNext)
				} else {
					h = hNext
				}
				h = math.Min(h, cfg.MaxDt)
			} else {
				next = s.integrator.Step(s.dyn, x, t, step)
			}

			if cfg.ValidateState && !next.IsValid() {
				return fail(ErrInvalidState)
			}

			x = next
			if clipped {
				t = target
			} else {
				t += step
			}
			result.StepsTaken++
		}

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, target)

		for _, m := range s.metrics {
			m.Observe(x, target)
		}
		for _, o := range s.observers {
			o.OnStep(x, target)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
