package dynamo_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/integrators"
)

type decay struct{ rate float64 }

func (d *decay) StateDim() int { return 1 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.rate * x[0]}
}

type blowup struct{}

func (b *blowup) StateDim() int { return 1 }

func (b *blowup) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                      { return "count" }
func (c *countingMetric) Observe(x dynamo.State, t float64) { c.n++ }
func (c *countingMetric) Value() float64                    { return float64(c.n) }
func (c *countingMetric) Reset()                            { c.n = 0 }

type recorder struct{ times []float64 }

func (r *recorder) OnStep(x dynamo.State, t float64) { r.times = append(r.times, t) }

func TestSampleTimes(t *testing.T) {
	tests := []struct {
		duration, dt float64
		want         int
	}{
		{3, 0.01, 300},
		{5, 0.01, 500},
		{0.3, 0.1, 3},
		{0.25, 0.1, 3},
	}
	for _, tt := range tests {
		times := dynamo.SampleTimes(tt.duration, tt.dt)
		if len(times) != tt.want {
			t.Errorf("SampleTimes(%g, %g) has %d samples, want %d", tt.duration, tt.dt, len(times), tt.want)
			continue
		}
		if times[0] != 0 {
			t.Errorf("first sample %g, want 0", times[0])
		}
		if last := times[len(times)-1]; last >= tt.duration {
			t.Errorf("last sample %g not below duration %g", last, tt.duration)
		}
	}
}

func TestRunSamplesExactly(t *testing.T) {
	sim := dynamo.New(&decay{rate: 2}, integrators.NewRK45())
	metric := &countingMetric{}
	sim.AddMetric(metric)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 2
	cfg.Dt = 0.05

	result, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.States) != 40 {
		t.Fatalf("got %d samples, want 40", len(result.States))
	}
	if result.Metrics["count"] != 40 {
		t.Errorf("metric saw %v samples, want 40", result.Metrics["count"])
	}
	for k, tk := range result.Times {
		if tk != float64(k)*cfg.Dt {
			t.Fatalf("sample %d at t=%v, want %v", k, tk, float64(k)*cfg.Dt)
		}
		want := math.Exp(-2 * tk)
		if math.Abs(result.States[k][0]-want) > 1e-6 {
			t.Errorf("x(%g) = %v, want %v", tk, result.States[k][0], want)
		}
	}
}

func TestRunFixedStep(t *testing.T) {
	sim := dynamo.New(&decay{rate: 1}, integrators.NewRK4())
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 1
	cfg.Dt = 0.1
	cfg.InitialDt = 0.01
	cfg.Adaptive = false

	result, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.StepsTaken < 90 {
		t.Errorf("fixed step run took %d steps, want about 90", result.StepsTaken)
	}
	last := result.States[len(result.States)-1][0]
	if math.Abs(last-math.Exp(-0.9)) > 1e-8 {
		t.Errorf("x(0.9) = %v, want %v", last, math.Exp(-0.9))
	}
}

func TestRunStiffRejectsSteps(t *testing.T) {
	sim := dynamo.New(&decay{rate: 1000}, integrators.NewRK45())
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 0.5
	cfg.Dt = 0.1

	result, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Rejected == 0 {
		t.Error("expected rejected steps on a stiff decay with dt=0.1")
	}
	for _, s := range result.States[1:] {
		if math.Abs(s[0]) > 1e-6 {
			t.Errorf("stiff decay not damped: %v", s[0])
		}
	}
}

func TestRunBudgetExhausted(t *testing.T) {
	sim := dynamo.New(&decay{rate: 1}, integrators.NewRK45())
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 1
	cfg.MaxSteps = 3

	result, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	if result != nil {
		t.Error("failed run returned a partial result")
	}
	var nf *dynamo.NumericalFailure
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want *NumericalFailure", err)
	}
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Errorf("got %v, want ErrStepBudget", err)
	}
	if nf.From != 0 || nf.To != 1 {
		t.Errorf("failure span [%g, %g], want [0, 1]", nf.From, nf.To)
	}
	if len(nf.State) != 1 || !nf.State.IsValid() {
		t.Errorf("failure state %v, want last valid state", nf.State)
	}
}

func TestRunNotifiesObservers(t *testing.T) {
	sim := dynamo.New(&decay{rate: 1}, integrators.NewRK45())
	rec := &recorder{}
	sim.AddObserver(rec)

	cfg := dynamo.DefaultConfig()
	cfg.Duration = 1
	cfg.Dt = 0.1

	result, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.times) != len(result.Times) {
		t.Fatalf("observer saw %d samples, want %d", len(rec.times), len(result.Times))
	}
	for k := range rec.times {
		if rec.times[k] != result.Times[k] {
			t.Errorf("observer sample %d at t=%v, want %v", k, rec.times[k], result.Times[k])
		}
	}
}

func TestRunBlowupFails(t *testing.T) {
	sim := dynamo.New(&blowup{}, integrators.NewRK45())
	cfg := dynamo.DefaultConfig()
	cfg.Duration = 2

	_, err := sim.Run(context.Background(), dynamo.State{1}, cfg)
	var nf *dynamo.NumericalFailure
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want *NumericalFailure", err)
	}
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Errorf("got %v, want ErrStepTooSmall", err)
	}
	// the step size collapses at the pole of x' = x², within solver error of t=1
	if math.Abs(nf.Time-1) > 1e-6 {
		t.Errorf("blowup at t=1 reported at t=%g", nf.Time)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	sim := dynamo.New(&decay{rate: 1}, integrators.NewRK45())

	if _, err := sim.Run(context.Background(), dynamo.State{1, 2}, dynamo.DefaultConfig()); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}

	cfg := dynamo.DefaultConfig()
	cfg.Dt = 0
	if _, err := sim.Run(context.Background(), dynamo.State{1}, cfg); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := dynamo.New(&decay{rate: 1}, integrators.NewRK45())
	if _, err := sim.Run(ctx, dynamo.State{1}, dynamo.DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestParallelFor(t *testing.T) {
	seen := make([]int, 1000)
	dynamo.ParallelFor(len(seen), 10, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d visited %d times", i, n)
		}
	}
}
