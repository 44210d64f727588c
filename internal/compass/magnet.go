package compass

import "math"

// Magnet holds the quantities a magnet shape contributes to a Compass.
type Magnet struct {
	Volume  float64 `json:"V"`
	Mass    float64 `json:"m"`
	Inertia float64 `json:"mom_z"`
}

// DoubleCylinderMagnet models two parallel cylinders of the given radius and
// length whose axes sit centerDistance away from the pivot.
func DoubleCylinderMagnet(radius, length, centerDistance, density float64) Magnet {
	v := 2 * math.Pow(radius, 2) * math.Pi * length
	m := v * density
	mom := m * (math.Pow(radius, 2)/4 + math.Pow(length, 2)/12 + math.Pow(centerDistance, 2))
	return Magnet{Volume: v, Mass: m, Inertia: mom}
}

// DefaultDoubleCylinderMagnet is the R900 magnet.
func DefaultDoubleCylinderMagnet() Magnet {
	return DoubleCylinderMagnet(0.00075, 0.01, 0.0015, 7500)
}

// PrismMagnet models a rectangular bar centred on the pivot. The axis hole
// is ignored.
func PrismMagnet(length, width, thickness, density float64) Magnet {
	v := length * width * thickness
	m := v * density
	mom := m * (math.Pow(length, 2) + math.Pow(width, 2)) / 12
	return Magnet{Volume: v, Mass: m, Inertia: mom}
}

// DefaultPrismMagnet is the R500 magnet.
func DefaultPrismMagnet() Magnet {
	return PrismMagnet(0.01, 0.006, 0.001, 7500)
}
