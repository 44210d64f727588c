package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/dynamo"
)

const (
	DefaultCompass    = "r500"
	DefaultLocation   = "lille"
	DefaultIntegrator = "rk45"
	DefaultDataDir    = "runs"
	DefaultLogLevel   = "info"
)

type Config struct {
	Compass     string           `yaml:"compass"`
	CompassSpec *compass.Compass `yaml:"compass_spec,omitempty"`
	Location    string           `yaml:"location"`
	Field       *FieldConfig     `yaml:"field,omitempty"`
	Integrator  string           `yaml:"integrator"`
	Params      dynamic.Params   `yaml:"params"`
	Solver      SolverConfig     `yaml:"solver"`
	DataDir     string           `yaml:"data_dir"`
	LogLevel    string           `yaml:"log_level"`
}

// FieldConfig describes a measured field inline.
type FieldConfig struct {
	Name           string   `yaml:"name"`
	Intensity      float64  `yaml:"intensity"`
	InclinationDeg float64  `yaml:"inclination_deg"`
	Lat            *float64 `yaml:"lat,omitempty"`
	Lon            *float64 `yaml:"lon,omitempty"`
}

type SolverConfig struct {
	AbsTol    float64 `yaml:"abs_tol"`
	RelTol    float64 `yaml:"rel_tol"`
	InitialDt float64 `yaml:"initial_dt"`
	MinDt     float64 `yaml:"min_dt"`
	MaxDt     float64 `yaml:"max_dt"`
	MaxSteps  int     `yaml:"max_steps"`
	Adaptive  bool    `yaml:"adaptive"`
}

func DefaultSolver() SolverConfig {
	d := dynamo.DefaultConfig()
	return SolverConfig{
		AbsTol:   d.AbsTol,
		RelTol:   d.RelTol,
		MinDt:    d.MinDt,
		MaxDt:    d.MaxDt,
		MaxSteps: d.MaxSteps,
		Adaptive: d.Adaptive,
	}
}

// Dynamo converts the solver settings. Dt and Duration are set per run by
// the engine.
func (s SolverConfig) Dynamo() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.AbsTol = s.AbsTol
	cfg.RelTol = s.RelTol
	cfg.InitialDt = s.InitialDt
	cfg.MinDt = s.MinDt
	cfg.MaxDt = s.MaxDt
	cfg.MaxSteps = s.MaxSteps
	cfg.Adaptive = s.Adaptive
	return cfg
}

func DefaultConfig() *Config {
	return &Config{
		Compass:    DefaultCompass,
		Location:   DefaultLocation,
		Integrator: DefaultIntegrator,
		Params:     dynamic.DefaultParams(),
		Solver:     DefaultSolver(),
		DataDir:    DefaultDataDir,
		LogLevel:   DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildCompass returns a fresh compass: the inline compass when present,
// otherwise the named preset.
func (c *Config) BuildCompass() (*compass.Compass, error) {
	var out *compass.Compass
	if c.CompassSpec != nil {
		out = c.CompassSpec.Clone()
	} else {
		p, err := CompassPreset(c.Compass)
		if err != nil {
			return nil, err
		}
		out = p
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildField returns the inline field when present, otherwise the named
// location.
func (c *Config) BuildField() (*compass.Field, error) {
	if c.Field == nil {
		return LocationPreset(c.Location)
	}
	var opts []compass.FieldOption
	if c.Field.Lat != nil && c.Field.Lon != nil {
		opts = append(opts, compass.WithLocation(*c.Field.Lat, *c.Field.Lon))
	}
	name := c.Field.Name
	if name == "" {
		name = "custom"
	}
	return compass.NewField(name, c.Field.Intensity, c.Field.InclinationDeg, opts...)
}
