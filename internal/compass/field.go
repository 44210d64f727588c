package compass

import (
	"fmt"
	"math"
)

// Field is the Earth magnetic field at one place. It cannot be modified once
// built.
type Field struct {
	name           string
	intensity      float64
	inclinationDeg float64
	lat, lon       float64
	located        bool
}

// FieldOption configures optional Field attributes.
type FieldOption func(*Field)

// WithLocation records the geographic position the field was measured at.
func WithLocation(lat, lon float64) FieldOption {
	return func(f *Field) {
		f.lat, f.lon, f.located = lat, lon, true
	}
}

// NewField builds a field of the given intensity (tesla) and inclination
// (degrees, positive when pointing down).
func NewField(name string, intensity, inclinationDeg float64, opts ...FieldOption) (*Field, error) {
	if math.IsNaN(intensity) || math.IsInf(intensity, 0) || intensity < 0 {
		return nil, &InvalidParameterError{Owner: name, Field: "intensity", Value: intensity, Reason: "must be finite and non-negative"}
	}
	if math.IsNaN(inclinationDeg) || math.Abs(inclinationDeg) > 90 {
		return nil, &InvalidParameterError{Owner: name, Field: "inclination", Value: inclinationDeg, Reason: "must lie in [-90, 90] degrees"}
	}
	f := &Field{name: name, intensity: intensity, inclinationDeg: inclinationDeg}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// MustField is NewField for literal values known to be valid.
func MustField(name string, intensity, inclinationDeg float64, opts ...FieldOption) *Field {
	f, err := NewField(name, intensity, inclinationDeg, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Lille is the reference location of the model.
func Lille() *Field {
	return MustField("Lille", 4.8699e-5, 65.822, WithLocation(50.6333, 3.0667))
}

func (f *Field) Name() string            { return f.name }
func (f *Field) Intensity() float64      { return f.intensity }
func (f *Field) InclinationDeg() float64 { return f.inclinationDeg }

// Inclination in radians, positive when pointing down.
func (f *Field) Inclination() float64 {
	return f.inclinationDeg * math.Pi / 180
}

// Location returns latitude and longitude in degrees, ok is false when the
// field was built without one.
func (f *Field) Location() (lat, lon float64, ok bool) {
	return f.lat, f.lon, f.located
}

func (f *Field) String() string {
	return fmt.Sprintf("%s (%.4g T, %.3f°)", f.name, f.intensity, f.inclinationDeg)
}
