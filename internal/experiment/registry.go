package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/integrators"
	"github.com/san-kum/compassim/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics watch the needle angle in degrees.
func (r *Registry) DefaultMetrics(limitDeg float64) []dynamo.Metric {
	deg := 180 / math.Pi
	return []dynamo.Metric{
		metrics.NewSettling(1, deg, limitDeg),
		metrics.NewWithinLimit(1, deg, limitDeg),
		metrics.NewPeakAbs("peak_angle", 1, deg),
		metrics.NewPeakAbs("peak_rate", 0, 1),
	}
}
