// Package geomag approximates the Earth's main field by a centered dipole
// built from the degree one Gauss coefficients of the World Magnetic Model.
//
// The dipole is good to a few degrees of inclination away from the magnetic
// anomalies, which is enough for compass balance maps. Locations with a
// measured field should use compass.NewField directly.
package geomag

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/compassim/internal/compass"
)

const (
	wmmEpoch = 2025.0
	g10Base  = -29351.8
	g11Base  = -1410.8
	h11Base  = 4545.4
	g10Dot   = 12.0
	g11Dot   = 9.7
	h11Dot   = -21.5
)

// Dipole holds degree one Gauss coefficients in nT.
type Dipole struct {
	G10, G11, H11 float64
}

// WMM2025 is the dipole at the model epoch.
func WMM2025() Dipole {
	return Dipole{G10: g10Base, G11: g11Base, H11: h11Base}
}

// At applies the secular variation of WMM2025 to the given date.
func At(t time.Time) Dipole {
	delta := decimalYear(t.UTC()) - wmmEpoch
	return Dipole{
		G10: g10Base + g10Dot*delta,
		G11: g11Base + g11Dot*delta,
		H11: h11Base + h11Dot*delta,
	}
}

func decimalYear(t time.Time) float64 {
	y := t.Year()
	start := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return float64(y) + float64(t.Sub(start))/float64(end.Sub(start))
}

// EquatorialIntensity is B0, the surface intensity on the magnetic equator,
// in nT.
func (d Dipole) EquatorialIntensity() float64 {
	return math.Sqrt(d.G10*d.G10 + d.G11*d.G11 + d.H11*d.H11)
}

// Axis is the unit vector, Earth-centered Earth-fixed, towards the
// geomagnetic north pole.
func (d Dipole) Axis() (x, y, z float64) {
	n := d.EquatorialIntensity()
	return -d.G11 / n, -d.H11 / n, -d.G10 / n
}

// NorthPole returns the geographic coordinates of the geomagnetic north
// pole in degrees.
func (d Dipole) NorthPole() (lat, lon float64) {
	x, y, z := d.Axis()
	return math.Asin(z) * 180 / math.Pi, math.Atan2(y, x) * 180 / math.Pi
}

// MagneticLatitude of a geographic position, in degrees.
func (d Dipole) MagneticLatitude(lat, lon float64) float64 {
	la, lo := lat*math.Pi/180, lon*math.Pi/180
	ax, ay, az := d.Axis()
	s := math.Cos(la)*math.Cos(lo)*ax + math.Cos(la)*math.Sin(lo)*ay + math.Sin(la)*az
	s = math.Max(-1, math.Min(1, s))
	return math.Asin(s) * 180 / math.Pi
}

// Inclination in degrees, positive downward: tan I = 2 tan(magnetic latitude).
func (d Dipole) Inclination(lat, lon float64) float64 {
	phi := d.MagneticLatitude(lat, lon) * math.Pi / 180
	return math.Atan2(2*math.Sin(phi), math.Cos(phi)) * 180 / math.Pi
}

// Intensity in tesla: B0 sqrt(1 + 3 sin² of the magnetic latitude).
func (d Dipole) Intensity(lat, lon float64) float64 {
	s := math.Sin(d.MagneticLatitude(lat, lon) * math.Pi / 180)
	return d.EquatorialIntensity() * math.Sqrt(1+3*s*s) * 1e-9
}

// Field builds a compass.Field for the position.
func (d Dipole) Field(name string, lat, lon float64) (*compass.Field, error) {
	if math.Abs(lat) > 90 || math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil, fmt.Errorf("geomag: invalid position (%g, %g)", lat, lon)
	}
	incl := d.Inclination(lat, lon)
	// rounding can push the pole a hair past 90
	incl = math.Max(-90, math.Min(90, incl))
	return compass.NewField(name, d.Intensity(lat, lon), incl, compass.WithLocation(lat, lon))
}
