package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
)

// Scenario is a scripted sequence of experiments.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one experiment. Params
// may name test conditions or compass quantities.
type ScenarioStep struct {
	Compass    string             `yaml:"compass"`
	Location   string             `yaml:"location"`
	Integrator string             `yaml:"integrator"`
	Tests      []string           `yaml:"tests"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult pairs a report with the step's save name.
type StepResult struct {
	Name   string
	Report *experiment.Report
	Exp    *experiment.Experiment
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario: %s: no steps", path)
	}

	return &scenario, nil
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger *log.Logger) ([]StepResult, error) {
	logger = orDiscard(logger)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg := *base
		if step.Compass != "" {
			cfg.Compass = step.Compass
			cfg.CompassSpec = nil
		}
		if step.Location != "" {
			cfg.Location = step.Location
			cfg.Field = nil
		}
		if step.Integrator != "" {
			cfg.Integrator = step.Integrator
		}

		tests, err := parseTests(step.Tests)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "compass", cfg.Compass, "location", cfg.Location)

		exp, report, err := runOne(ctx, &cfg, step.Params, tests, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("%s-step%d", scenario.Name, i+1)
		}
		results = append(results, StepResult{Name: name, Report: report, Exp: exp})
	}

	return results, nil
}

func parseTests(names []string) ([]experiment.Test, error) {
	tests := make([]experiment.Test, 0, len(names))
	for _, n := range names {
		t, err := experiment.ParseTest(n)
		if err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, nil
}

// runOne builds a fresh compass from cfg, applies the overrides and runs the
// tests. cfg itself is not modified.
func runOne(ctx context.Context, cfg *config.Config, overrides map[string]float64, tests []experiment.Test, logger *log.Logger) (*experiment.Experiment, *experiment.Report, error) {
	c, err := cfg.BuildCompass()
	if err != nil {
		return nil, nil, err
	}
	f, err := cfg.BuildField()
	if err != nil {
		return nil, nil, err
	}

	local := *cfg
	for name, v := range overrides {
		if err := apply(&local.Params, c, name, v); err != nil {
			return nil, nil, err
		}
	}

	exp := experiment.New(&local, logger)
	if err := exp.SetupWith(c, f); err != nil {
		return nil, nil, err
	}
	report, err := exp.Run(ctx, tests...)
	if err != nil {
		return nil, nil, err
	}
	return exp, report, nil
}

// apply sets a test condition when the name is one, a compass quantity
// otherwise.
func apply(p *dynamic.Params, c *compass.Compass, name string, v float64) error {
	if _, ok := p.Param(name); ok {
		return p.SetParam(name, v)
	}
	return c.SetParam(name, v)
}

func lookup(p *dynamic.Params, c *compass.Compass, name string) (float64, error) {
	if v, ok := p.Param(name); ok {
		return v, nil
	}
	return c.Param(name)
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
