package optim

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
)

var ErrNoOverlap = errors.New("optim: measurement and simulation do not overlap in time")

// Fit is the outcome of fitting the correction factors to a measured
// rapidity trace.
type Fit struct {
	MagneticFit float64
	ViscousFit  float64
	RMS         float64 // degrees
}

// TraceRMS is the root mean square difference, in degrees, between a
// nonlinear rapidity run and a measured series at the measurement times
// covered by the run.
func TraceRMS(run *dynamic.Run, measured dynamic.Series) (float64, error) {
	var pl interp.PiecewiseLinear
	times := run.Times()
	if err := pl.Fit(times, run.Angles()); err != nil {
		return 0, err
	}
	end := times[len(times)-1]

	var sum float64
	var n int
	for i, t := range measured.Time {
		if t < times[0] || t > end {
			continue
		}
		d := pl.Predict(t) - measured.Angle[i]
		sum += d * d
		n++
	}
	if n == 0 {
		return 0, ErrNoOverlap
	}
	return math.Sqrt(sum / float64(n)), nil
}

// FitRapidity searches the k_m by k_v grid for the factors that make the
// simulated rapidity test track the measurement best. The compass is cloned
// for every point.
func FitRapidity(
	ctx context.Context,
	c *compass.Compass,
	f *compass.Field,
	p dynamic.Params,
	measured dynamic.Series,
	magnetic, viscous []float64,
	opts ...dynamic.Option,
) (Fit, error) {
	if err := measured.Validate(); err != nil {
		return Fit{}, err
	}

	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		q := p
		q.MagneticFit = params["k_m"]
		q.ViscousFit = params["k_v"]
		e, err := dynamic.New(c.Clone(), f, q, opts...)
		if err != nil {
			return 0, err
		}
		run, err := e.Rapidity(ctx)
		if err != nil {
			return 0, err
		}
		return TraceRMS(run, measured)
	}

	g := NewGridSearch([]string{"k_m", "k_v"}, [][]float64{magnetic, viscous})
	best, rms, err := g.Search(ctx, objective)
	if err != nil {
		return Fit{}, err
	}
	return Fit{MagneticFit: best["k_m"], ViscousFit: best["k_v"], RMS: rms}, nil
}
