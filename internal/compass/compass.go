package compass

import (
	"fmt"
	"math"
)

const (
	// MagneticPermeability of vacuum as used by the compass model, H/m.
	MagneticPermeability = 1.25664e-06
	// Gravity acceleration, m/s².
	Gravity = 9.81
)

// Compass describes the rotating assembly of an orienteering compass.
// All quantities are SI. Offset is the signed distance between the magnet
// mass center and the pivot.
type Compass struct {
	Name              string  `yaml:"name" json:"name"`
	NeedleLength      float64 `yaml:"needle_length" json:"needle_length"`
	NeedleWidth       float64 `yaml:"needle_width" json:"needle_width"`
	NeedleThickness   float64 `yaml:"needle_thickness" json:"needle_thickness"`
	NeedleDiskDensity float64 `yaml:"needle_disk_density" json:"needle_disk_density"`
	DiskRadius        float64 `yaml:"disk_radius" json:"disk_radius"`
	DiskThickness     float64 `yaml:"disk_thickness" json:"disk_thickness"`
	MagRemanence      float64 `yaml:"mag_rem" json:"mag_rem"`
	MagnetVolume      float64 `yaml:"magnet_volume" json:"magnet_volume"`
	MagnetMass        float64 `yaml:"magnet_mass" json:"magnet_mass"`
	MagnetInertia     float64 `yaml:"magnet_inertia" json:"magnet_inertia"`
	Offset            float64 `yaml:"offset" json:"offset"`
	FluidDensity      float64 `yaml:"fluid_density" json:"fluid_density"`
	Viscosity         float64 `yaml:"viscosity" json:"viscosity"`
	GapAbove          float64 `yaml:"gap_above" json:"gap_above"`
	GapBelow          float64 `yaml:"gap_below" json:"gap_below"`
}

// R500 returns the reference compass the model was calibrated on.
func R500() *Compass {
	return &Compass{
		Name:              "R500",
		NeedleLength:      0.032,
		NeedleWidth:       0.008,
		NeedleThickness:   0.00025,
		NeedleDiskDensity: 1200,
		DiskRadius:        0.0115,
		DiskThickness:     0.0001,
		MagRemanence:      1.3,
		MagnetVolume:      6e-8,
		MagnetMass:        0.00045,
		MagnetInertia:     5.1e-09,
		Offset:            -0.0005,
		FluidDensity:      700,
		Viscosity:         1.08,
		GapAbove:          0.004,
		GapBelow:          0.004,
	}
}

// Clone returns an independent copy.
func (c *Compass) Clone() *Compass {
	cp := *c
	return &cp
}

// WithMagnet copies the magnet's volume, mass and inertia into the compass.
func (c *Compass) WithMagnet(m Magnet) *Compass {
	c.MagnetVolume = m.Volume
	c.MagnetMass = m.Mass
	c.MagnetInertia = m.Inertia
	return c
}

// MomentOfInertia of the needle assembly around the pivot axis: friction
// disk, needle plate, magnet and the parallel-axis term of the offset magnet.
func (c *Compass) MomentOfInertia() float64 {
	disk := math.Pi * math.Pow(c.DiskRadius, 4) * c.DiskThickness * c.NeedleDiskDensity / 2

	needle := c.NeedleLength * c.NeedleWidth * c.NeedleThickness * c.NeedleDiskDensity *
		(c.NeedleLength*c.NeedleLength + c.NeedleWidth*c.NeedleWidth) / 12

	return disk + needle + c.MagnetInertia + c.MagnetMass*c.Offset*c.Offset
}

// ViscousCoefficient of the fluid film above and below the disk and needle.
func (c *Compass) ViscousCoefficient() float64 {
	r, l, w := c.DiskRadius, c.NeedleLength, c.NeedleWidth
	area := math.Pi*math.Pow(r, 4)/2 +
		(math.Pow(l, 3)/8-math.Pow(r, 3))*w/3 +
		(l/2-r)*math.Pow(w, 3)/12
	return c.Viscosity * (1/c.GapAbove + 1/c.GapBelow) * area
}

// Validate fails fast on parameters that would turn into NaN or Inf
// downstream.
func (c *Compass) Validate() error {
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"needle_length", c.NeedleLength},
		{"needle_width", c.NeedleWidth},
		{"needle_thickness", c.NeedleThickness},
		{"needle_disk_density", c.NeedleDiskDensity},
		{"disk_radius", c.DiskRadius},
		{"disk_thickness", c.DiskThickness},
		{"mag_rem", c.MagRemanence},
		{"magnet_volume", c.MagnetVolume},
		{"magnet_mass", c.MagnetMass},
		{"magnet_inertia", c.MagnetInertia},
		{"fluid_density", c.FluidDensity},
		{"viscosity", c.Viscosity},
	}
	for _, p := range nonNegative {
		if err := c.check(p.name, p.value, p.value < 0, "must be non-negative"); err != nil {
			return err
		}
	}
	if err := c.check("offset", c.Offset, false, ""); err != nil {
		return err
	}
	if err := c.check("gap_above", c.GapAbove, c.GapAbove <= 0, "must be positive"); err != nil {
		return err
	}
	if err := c.check("gap_below", c.GapBelow, c.GapBelow <= 0, "must be positive"); err != nil {
		return err
	}

	if mom := c.MomentOfInertia(); !(mom > 0) || math.IsInf(mom, 0) {
		return c.invalid("moment_of_inertia", mom, "must be strictly positive")
	}
	if visc := c.ViscousCoefficient(); !(visc > 0) || math.IsInf(visc, 0) {
		return c.invalid("viscous_coefficient", visc, "must be strictly positive")
	}
	return nil
}

func (c *Compass) check(name string, v float64, bad bool, reason string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return c.invalid(name, v, "must be finite")
	}
	if bad {
		return c.invalid(name, v, reason)
	}
	return nil
}

func (c *Compass) invalid(name string, v float64, reason string) error {
	return &InvalidParameterError{Owner: c.label(), Field: name, Value: v, Reason: reason}
}

func (c *Compass) label() string {
	if c.Name == "" {
		return "compass"
	}
	return c.Name
}

// GetParams exposes the tunable quantities by their yaml names.
func (c *Compass) GetParams() map[string]float64 {
	return map[string]float64{
		"needle_length":       c.NeedleLength,
		"needle_width":        c.NeedleWidth,
		"needle_thickness":    c.NeedleThickness,
		"needle_disk_density": c.NeedleDiskDensity,
		"disk_radius":         c.DiskRadius,
		"disk_thickness":      c.DiskThickness,
		"mag_rem":             c.MagRemanence,
		"magnet_volume":       c.MagnetVolume,
		"magnet_mass":         c.MagnetMass,
		"magnet_inertia":      c.MagnetInertia,
		"offset":              c.Offset,
		"fluid_density":       c.FluidDensity,
		"viscosity":           c.Viscosity,
		"gap_above":           c.GapAbove,
		"gap_below":           c.GapBelow,
	}
}

// SetParam sets one quantity by its yaml name.
func (c *Compass) SetParam(name string, value float64) error {
	p, ok := c.param(name)
	if !ok {
		return fmt.Errorf("compass: unknown param: %s", name)
	}
	*p = value
	return nil
}

// Param reads one quantity by its yaml name or alias.
func (c *Compass) Param(name string) (float64, error) {
	p, ok := c.param(name)
	if !ok {
		return 0, fmt.Errorf("compass: unknown param: %s", name)
	}
	return *p, nil
}

func (c *Compass) param(name string) (*float64, bool) {
	switch name {
	case "needle_length":
		return &c.NeedleLength, true
	case "needle_width":
		return &c.NeedleWidth, true
	case "needle_thickness":
		return &c.NeedleThickness, true
	case "needle_disk_density":
		return &c.NeedleDiskDensity, true
	case "disk_radius":
		return &c.DiskRadius, true
	case "disk_thickness":
		return &c.DiskThickness, true
	case "mag_rem":
		return &c.MagRemanence, true
	case "magnet_volume", "V":
		return &c.MagnetVolume, true
	case "magnet_mass", "m":
		return &c.MagnetMass, true
	case "magnet_inertia", "magnet_mom_z":
		return &c.MagnetInertia, true
	case "offset", "x":
		return &c.Offset, true
	case "fluid_density", "rho":
		return &c.FluidDensity, true
	case "viscosity":
		return &c.Viscosity, true
	case "gap_above", "z_h":
		return &c.GapAbove, true
	case "gap_below", "z_b":
		return &c.GapBelow, true
	}
	return nil, false
}
