// Package balance computes the static balance of a compass needle: the
// magnet offset that keeps the needle level under a given field
// inclination, and the heading error when the compass is tilted.
package balance

import (
	"math"

	"github.com/san-kum/compassim/internal/compass"
)

// DefaultTiltDeg is the lateral tilt a runner's compass is checked at.
const DefaultTiltDeg = 40.0

// OptimalOffset is the magnet offset, in metres, at which the gravity torque
// of the magnet cancels the vertical field torque:
//
//	x = -mag V B sin(i) / (mu0 (m - rho V) g)
func OptimalOffset(c *compass.Compass, f *compass.Field) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	weight := (c.MagnetMass - c.FluidDensity*c.MagnetVolume) * compass.Gravity
	if weight == 0 {
		return 0, &compass.InvalidParameterError{
			Owner: c.Name, Field: "magnet_mass", Value: c.MagnetMass,
			Reason: "magnet is neutrally buoyant, no offset can balance it",
		}
	}
	return -c.MagRemanence * c.MagnetVolume * f.Intensity() * math.Sin(f.Inclination()) /
		(compass.MagneticPermeability * weight), nil
}

// InclinationError is the angle, in radians, between the needle and
// magnetic north when the compass is tilted sideways by tiltDeg degrees.
// It is zero at the optimal offset. A vertical or zero field, or a magnet
// without moment, is rejected.
func InclinationError(c *compass.Compass, f *compass.Field, tiltDeg float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if math.Abs(f.InclinationDeg()) == 90 {
		return 0, &compass.InvalidParameterError{
			Owner: f.Name(), Field: "inclination", Value: f.InclinationDeg(),
			Reason: "vertical field has no horizontal component to align the needle",
		}
	}
	for _, q := range []struct {
		owner, field string
		v            float64
	}{
		{c.Name, "mag_rem", c.MagRemanence},
		{c.Name, "magnet_volume", c.MagnetVolume},
		{f.Name(), "intensity", f.Intensity()},
	} {
		if q.v == 0 {
			return 0, &compass.InvalidParameterError{
				Owner: q.owner, Field: q.field, Value: 0,
				Reason: "no magnetic torque on the needle",
			}
		}
	}

	i := f.Inclination()
	gravity := (c.FluidDensity*c.MagnetVolume - c.MagnetMass) * compass.Gravity * c.Offset *
		compass.MagneticPermeability / (c.MagRemanence * c.MagnetVolume * f.Intensity() * math.Cos(i))
	return math.Atan((gravity - math.Tan(i)) * math.Sin(tiltDeg*math.Pi/180)), nil
}
