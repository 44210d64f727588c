package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/geomag"
)

var compassPresets = map[string]func() *compass.Compass{
	"r500": compass.R500,
	"r900": func() *compass.Compass {
		c := compass.R500().WithMagnet(compass.DefaultDoubleCylinderMagnet())
		c.Name = "R900"
		return c
	},
	"prism": func() *compass.Compass {
		c := compass.R500().WithMagnet(compass.DefaultPrismMagnet())
		c.Name = "prism"
		return c
	},
}

type place struct {
	name     string
	lat, lon float64
}

// Only Lille carries a measured field; the other places use the dipole
// model.
var locationPresets = map[string]place{
	"paris":   {"Paris", 48.8566, 2.3522},
	"oslo":    {"Oslo", 59.9139, 10.7522},
	"nairobi": {"Nairobi", -1.2921, 36.8219},
	"sydney":  {"Sydney", -33.8688, 151.2093},
}

func CompassPreset(name string) (*compass.Compass, error) {
	build, ok := compassPresets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown compass preset %q", name)
	}
	return build(), nil
}

func LocationPreset(name string) (*compass.Field, error) {
	if name == "lille" {
		return compass.Lille(), nil
	}
	p, ok := locationPresets[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown location preset %q", name)
	}
	return geomag.WMM2025().Field(p.name, p.lat, p.lon)
}

func ListCompasses() []string {
	return sortedKeys(compassPresets)
}

func ListLocations() []string {
	names := append(sortedKeys(locationPresets), "lille")
	sort.Strings(names)
	return names
}

// Presets are ready made test campaigns.
var Presets = map[string]func() *Config{
	"walk": DefaultConfig,
	"run": func() *Config {
		cfg := DefaultConfig()
		cfg.Params.StepFrequency = 170
		return cfg
	},
	"long": func() *Config {
		cfg := DefaultConfig()
		cfg.Params.RapidityDuration = 60
		cfg.Params.StabilityDuration = 20
		return cfg
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	return sortedKeys(Presets)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
