// Package compass holds the physical description of an orienteering compass
// and of the magnetic field it is used in.
//
//   - [Compass]: needle, friction disk, magnet and damping fluid geometry
//   - [Field]: local field intensity and inclination, immutable
//   - [Magnet]: volume, mass and inertia of common magnet shapes
//
// Derived quantities ([Compass.MomentOfInertia], [Compass.ViscousCoefficient])
// are recomputed from the stored fields on every call, so editing a Compass
// is always reflected by the next read.
package compass
