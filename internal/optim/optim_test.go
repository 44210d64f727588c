package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/dynamo"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{Linspace(-2, 2, 5), Linspace(0, 3, 4)})
	calls := 0
	best, val, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		return (p["a"]-1)*(p["a"]-1) + (p["b"]-2)*(p["b"]-2), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 20 {
		t.Errorf("objective called %d times, want 20", calls)
	}
	if best["a"] != 1 || best["b"] != 2 || val != 0 {
		t.Errorf("best = %v (%v)", best, val)
	}
}

func TestGridSearchSkipsNumericalFailures(t *testing.T) {
	g := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3}})
	best, val, err := g.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 1 {
			return 0, &dynamo.NumericalFailure{Wrapped: dynamo.ErrStepBudget}
		}
		return p["a"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best["a"] != 2 || val != 2 {
		t.Errorf("best = %v (%v)", best, val)
	}

	boom := errors.New("boom")
	if _, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Errorf("got %v, want boom", err)
	}
}

func TestGridSearchAll(t *testing.T) {
	g := NewGridSearch([]string{"a"}, [][]float64{{3, 1, 2}})
	all, err := g.All(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		return p["a"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Score != 1 || all[2].Score != 3 {
		t.Errorf("got %+v", all)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"a"}, [][]float64{{1}})
	if _, _, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("single point")
	}
}

func TestFitRapidityRecoversFactors(t *testing.T) {
	c, f := compass.R500(), compass.Lille()
	p := dynamic.DefaultParams()
	p.MagneticFit = 1.5
	p.ViscousFit = 0.01

	e, err := dynamic.New(c.Clone(), f, p)
	if err != nil {
		t.Fatal(err)
	}
	run, err := e.Rapidity(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var measured dynamic.Series
	times, angles := run.Times(), run.Angles()
	for i := 0; i < len(times); i += 5 {
		measured.Time = append(measured.Time, times[i])
		measured.Angle = append(measured.Angle, angles[i])
	}

	p.MagneticFit, p.ViscousFit = 1, 1
	fit, err := FitRapidity(context.Background(), c, f, p, measured,
		[]float64{1, 1.5, 2}, []float64{0.005, 0.01, 0.02})
	if err != nil {
		t.Fatal(err)
	}
	if fit.MagneticFit != 1.5 || fit.ViscousFit != 0.01 {
		t.Errorf("fit = %+v, want k_m=1.5 k_v=0.01", fit)
	}
	if fit.RMS > 1e-9 {
		t.Errorf("rms = %v, want 0", fit.RMS)
	}
}

func TestFitRapidityRejectsBadSeries(t *testing.T) {
	_, err := FitRapidity(context.Background(), compass.R500(), compass.Lille(), dynamic.DefaultParams(),
		dynamic.Series{}, []float64{1}, []float64{1})
	if !errors.Is(err, dynamic.ErrInvalidSeries) {
		t.Errorf("got %v, want ErrInvalidSeries", err)
	}
}

func TestTraceRMSNoOverlap(t *testing.T) {
	e, err := dynamic.New(compass.R500(), compass.Lille(), dynamic.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	run, err := e.Rapidity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	_, err = TraceRMS(run, dynamic.Series{Time: []float64{100, 101}, Angle: []float64{1, 2}})
	if !errors.Is(err, ErrNoOverlap) {
		t.Errorf("got %v, want ErrNoOverlap", err)
	}
}
