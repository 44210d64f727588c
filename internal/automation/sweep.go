package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/experiment"
)

// ParameterSweep varies one test condition or compass quantity over an
// evenly spaced range.
type ParameterSweep struct {
	Param   string
	Min     float64
	Max     float64
	Steps   int
	Tests   []experiment.Test
	Workers int // 0 means GOMAXPROCS
}

type SweepResult struct {
	Value  float64
	Report *experiment.Report
}

// RunSweep runs one experiment per value. Each one builds its own compass
// so they run concurrently; results come back in sweep order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, logger *log.Logger) ([]SweepResult, error) {
	logger = orDiscard(logger)
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep: steps must be positive")
	}
	values := floats.Span(make([]float64, max(sweep.Steps, 2)), sweep.Min, sweep.Max)
	if sweep.Steps == 1 {
		values = values[:1]
	}

	results := make([]SweepResult, len(values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(sweep.Workers))

	for i, v := range values {
		g.Go(func() error {
			_, report, err := runOne(ctx, base, map[string]float64{sweep.Param: v}, sweep.Tests, logger)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			results[i] = SweepResult{Value: v, Report: report}
			logger.Debug("sweep point", "param", sweep.Param, "value", v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("sweep complete", "param", sweep.Param, "points", len(results))
	return results, nil
}

// MonteCarloConfig perturbs each named quantity by a uniform relative
// factor in [1-Spread, 1+Spread], the way manufacturing tolerances would.
type MonteCarloConfig struct {
	Params  []string
	Spread  float64
	Trials  int
	Seed    int64
	Tests   []experiment.Test
	Workers int
}

type MonteCarloResult struct {
	Trial  int
	Values map[string]float64
	Report *experiment.Report
}

// RunMonteCarlo draws every trial from its own seeded source, so results do
// not depend on scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, base *config.Config, logger *log.Logger) ([]MonteCarloResult, error) {
	logger = orDiscard(logger)
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("montecarlo: trials must be positive")
	}
	if cfg.Spread < 0 || cfg.Spread >= 1 {
		return nil, fmt.Errorf("montecarlo: spread %g outside [0, 1)", cfg.Spread)
	}

	c, err := base.BuildCompass()
	if err != nil {
		return nil, err
	}
	params := base.Params
	nominal := make(map[string]float64, len(cfg.Params))
	for _, name := range cfg.Params {
		v, err := lookup(&params, c, name)
		if err != nil {
			return nil, err
		}
		nominal[name] = v
	}
	names := append([]string(nil), cfg.Params...)
	sort.Strings(names)

	results := make([]MonteCarloResult, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(cfg.Workers))

	for trial := 0; trial < cfg.Trials; trial++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(trial)))
			values := make(map[string]float64, len(names))
			for _, name := range names {
				values[name] = nominal[name] * (1 + (2*rng.Float64()-1)*cfg.Spread)
			}
			_, report, err := runOne(ctx, base, values, cfg.Tests, logger)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}
			results[trial] = MonteCarloResult{Trial: trial, Values: values, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("monte carlo complete", "trials", cfg.Trials)
	return results, nil
}

// Summary describes one reported quantity over a set of trials. Missing
// counts trials where it was absent, e.g. a needle that never crossed the
// settling limit.
type Summary struct {
	Name    string
	Count   int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

func MonteCarloStats(results []MonteCarloResult) []Summary {
	pick := []struct {
		name string
		get  func(*experiment.Report) *float64
	}{
		{"tho", func(r *experiment.Report) *float64 { return r.Tho }},
		{"stab_amp", func(r *experiment.Report) *float64 { return r.StabAmp }},
	}

	out := make([]Summary, 0, len(pick))
	for _, p := range pick {
		s := Summary{Name: p.name, Min: math.NaN(), Max: math.NaN(), Mean: math.NaN(), StdDev: math.NaN()}
		var xs []float64
		for _, r := range results {
			if v := p.get(r.Report); v != nil {
				xs = append(xs, *v)
			} else {
				s.Missing++
			}
		}
		s.Count = len(xs)
		if len(xs) > 0 {
			s.Min, s.Max = floats.Min(xs), floats.Max(xs)
			s.Mean = stat.Mean(xs, nil)
			s.StdDev = 0
		}
		if len(xs) > 1 {
			s.StdDev = stat.StdDev(xs, nil)
		}
		out = append(out, s)
	}
	return out
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
