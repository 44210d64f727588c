package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
	"github.com/san-kum/compassim/internal/sheet"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	compassName string
	location    string
	catalog     string
	integrator  string

	deflection float64
	tfRap      float64
	tfStab     float64
	sampleDt   float64
	walk       float64
	freq       float64
	km         float64
	kv         float64
	limit      float64

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "compassim",
		Short:         "orienteering compass needle lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{Level: lvl, Prefix: "compassim"})
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "run store directory (default from config)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "campaign preset")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	pf.StringVar(&compassName, "compass", config.DefaultCompass, "compass preset, or name in --catalog")
	pf.StringVar(&location, "location", config.DefaultLocation, "location preset")
	pf.StringVar(&catalog, "catalog", "", "xlsx compass catalog")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "euler, rk4 or rk45")

	d := dynamic.DefaultParams()
	pf.Float64Var(&deflection, "deflection", d.InitialDeflectionDeg, "rapidity initial deflection (deg)")
	pf.Float64Var(&tfRap, "tf-rap", d.RapidityDuration, "rapidity duration (s)")
	pf.Float64Var(&tfStab, "tf-stab", d.StabilityDuration, "stability duration (s)")
	pf.Float64Var(&sampleDt, "dt", d.SampleInterval, "sample interval (s)")
	pf.Float64Var(&walk, "walk", d.WalkAmplitude, "walking half-amplitude Y (m)")
	pf.Float64Var(&freq, "freq", d.StepFrequency, "step frequency (steps/min)")
	pf.Float64Var(&km, "km", d.MagneticFit, "magnetic fit factor")
	pf.Float64Var(&kv, "kv", d.ViscousFit, "viscous fit factor")
	pf.Float64Var(&limit, "limit", d.SettlingLimitDeg, "settling limit (deg)")

	rootCmd.AddCommand(
		runCommand(),
		rapidityCommand(),
		stabilityCommand(),
		replayCommand(),
		balanceCommand(),
		mapCommand(),
		fitCommand(),
		sweepCommand(),
		monteCarloCommand(),
		scenarioCommand(),
		listCommand(),
		plotCommand(),
		pngCommand(),
		analyzeCommand(),
		exportJSONCommand(),
		exportCSVCommand(),
		presetsCommand(),
		magnetCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers preset, config file and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("compass") {
		cfg.Compass, cfg.CompassSpec = compassName, nil
	}
	if flags.Changed("location") {
		cfg.Location, cfg.Field = location, nil
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}

	overrides := []struct {
		flag string
		dst  *float64
		val  float64
	}{
		{"deflection", &cfg.Params.InitialDeflectionDeg, deflection},
		{"tf-rap", &cfg.Params.RapidityDuration, tfRap},
		{"tf-stab", &cfg.Params.StabilityDuration, tfStab},
		{"dt", &cfg.Params.SampleInterval, sampleDt},
		{"walk", &cfg.Params.WalkAmplitude, walk},
		{"freq", &cfg.Params.StepFrequency, freq},
		{"km", &cfg.Params.MagneticFit, km},
		{"kv", &cfg.Params.ViscousFit, kv},
		{"limit", &cfg.Params.SettlingLimitDeg, limit},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.dst = o.val
		}
	}

	if catalog != "" {
		c, err := fromCatalog(catalog, cfg.Compass)
		if err != nil {
			return nil, err
		}
		cfg.CompassSpec = c
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromCatalog(path, name string) (*compass.Compass, error) {
	compasses, err := sheet.Compasses(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(compasses))
	for _, c := range compasses {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
		names = append(names, c.Name)
	}
	return nil, fmt.Errorf("compass %q not in %s (have %v)", name, path, names)
}

func newExperiment(cmd *cobra.Command) (*config.Config, *experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	exp := experiment.New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	return cfg, exp, nil
}

// loadSeries reads a measured series from xlsx or csv.
func loadSeries(path string) (dynamic.Series, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sheet.SeriesXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return dynamic.Series{}, err
	}
	defer f.Close()
	return sheet.SeriesCSV(f)
}
