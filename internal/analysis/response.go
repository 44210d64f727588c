package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/dynamo"
)

// ResponsePoint compares the simulated peak-to-peak stability amplitude at
// one step frequency with twice the small-angle steady-state amplitude.
// Both are in degrees.
type ResponsePoint struct {
	StepFrequency float64
	Simulated     float64
	Predicted     float64
}

// FrequencyResponse runs the stability test at every step frequency. Each
// point works on its own compass copy, so the sweep runs in parallel.
func FrequencyResponse(
	ctx context.Context,
	c *compass.Compass,
	f *compass.Field,
	p dynamic.Params,
	freqs []float64,
	opts ...dynamic.Option,
) ([]ResponsePoint, error) {
	out := make([]ResponsePoint, len(freqs))
	errs := make([]error, len(freqs))

	dynamo.ParallelFor(len(freqs), 1, func(start, end int) {
		for i := start; i < end; i++ {
			out[i], errs[i] = responseAt(ctx, c.Clone(), f, p, freqs[i], opts)
		}
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func responseAt(ctx context.Context, c *compass.Compass, f *compass.Field, p dynamic.Params, freq float64, opts []dynamic.Option) (ResponsePoint, error) {
	p.StepFrequency = freq
	e, err := dynamic.New(c, f, p, opts...)
	if err != nil {
		return ResponsePoint{}, err
	}
	if _, err := e.Stability(ctx); err != nil {
		return ResponsePoint{}, fmt.Errorf("f=%g: %w", freq, err)
	}
	amp, _ := e.StabAmp()
	ss, err := e.SteadyStateAmplitude()
	if err != nil {
		return ResponsePoint{}, err
	}
	return ResponsePoint{
		StepFrequency: freq,
		Simulated:     amp,
		Predicted:     2 * ss * 180 / math.Pi,
	}, nil
}

// ResponseToASCII plots simulated and predicted amplitude over the sweep.
func ResponseToASCII(points []ResponsePoint, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	sim := make([]float64, len(points))
	pred := make([]float64, len(points))
	for i, pt := range points {
		sim[i] = pt.Simulated
		pred[i] = pt.Predicted
	}
	return asciigraph.PlotMany([][]float64{sim, pred},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.Caption(fmt.Sprintf("stab_amp vs f (%g..%g steps/min)", points[0].StepFrequency, points[len(points)-1].StepFrequency)),
	)
}
