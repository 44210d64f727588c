package balance

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamo"
	"github.com/san-kum/compassim/internal/geomag"
)

// MapConfig describes the longitude grid and limits of a balance map.
// Latitudes are always scanned from -90 to 90 in one degree steps.
type MapConfig struct {
	TiltDeg     float64 // compass tilt the error is measured at
	MaxErrorDeg float64 // largest acceptable needle error
	LonStart    float64
	LonEnd      float64 // inclusive
	LonStep     float64
	Model       geomag.Dipole
}

func DefaultMapConfig() MapConfig {
	return MapConfig{
		TiltDeg:     DefaultTiltDeg,
		MaxErrorDeg: 5,
		LonStart:    -180,
		LonEnd:      180,
		LonStep:     10,
		Model:       geomag.WMM2025(),
	}
}

func (m MapConfig) longitudes() ([]float64, error) {
	if !(m.LonStep > 0) || m.LonEnd < m.LonStart {
		return nil, fmt.Errorf("balance: invalid longitude grid %g:%g:%g", m.LonStart, m.LonStep, m.LonEnd)
	}
	n := int(math.Floor((m.LonEnd-m.LonStart)/m.LonStep+1e-9)) + 1
	lons := make([]float64, n)
	for i := range lons {
		lons[i] = m.LonStart + float64(i)*m.LonStep
	}
	return lons, nil
}

// Limits are the latitudes, along one meridian scanned from the south, where
// the needle error first drops below the limit (Lower), first rises above it
// again (Upper), and where it stops decreasing (Optimum). Missing latitudes
// are NaN.
type Limits struct {
	Lon     float64
	Lower   float64
	Optimum float64
	Upper   float64
}

// AcceptabilityMap scans every meridian of the grid for the band of
// latitudes where the compass, as built, keeps its needle error within
// MaxErrorDeg at TiltDeg of tilt.
func AcceptabilityMap(ctx context.Context, c *compass.Compass, cfg MapConfig) ([]Limits, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	lons, err := cfg.longitudes()
	if err != nil {
		return nil, err
	}
	limit := cfg.MaxErrorDeg * math.Pi / 180

	out := make([]Limits, len(lons))
	errs := make([]error, len(lons))
	dynamo.ParallelFor(len(lons), 4, func(start, end int) {
		for k := start; k < end; k++ {
			if ctx.Err() != nil {
				errs[k] = ctx.Err()
				return
			}
			out[k], errs[k] = scanMeridian(c, cfg, lons[k], limit)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanMeridian(c *compass.Compass, cfg MapConfig, lon, limit float64) (Limits, error) {
	l := Limits{Lon: lon, Lower: math.NaN(), Optimum: math.NaN(), Upper: math.NaN()}
	prev := 4.0
	for lat := -90; lat <= 90; lat++ {
		f, err := cfg.Model.Field("map", float64(lat), lon)
		if err != nil {
			return l, err
		}
		a, err := InclinationError(c, f, cfg.TiltDeg)
		if err != nil {
			return l, err
		}
		a = math.Abs(a)
		if math.IsNaN(l.Lower) && prev > limit && a < limit {
			l.Lower = float64(lat)
		}
		if math.IsNaN(l.Upper) && prev < limit && a > limit {
			l.Upper = float64(lat)
		}
		if math.IsNaN(l.Optimum) && a > prev {
			l.Optimum = float64(lat)
		}
		if !math.IsNaN(l.Lower) && !math.IsNaN(l.Upper) && !math.IsNaN(l.Optimum) {
			break
		}
		prev = a
	}
	return l, nil
}

// IsoCurve is the set of points where the optimal offset crosses Offset.
type IsoCurve struct {
	Offset float64
	Lon    []float64
	Lat    []float64
}

// DefaultIsoOffsets are 0.8 mm down to -0.8 mm every 0.1 mm.
func DefaultIsoOffsets() []float64 {
	levels := make([]float64, 17)
	for i := range levels {
		levels[i] = float64(8-i) * 1e-4
	}
	return levels
}

// IsoOffsetMap traces, for decreasing offset levels, the latitude on each
// meridian where the optimal offset falls through the level. Along a
// meridian each latitude step consumes at most one level, and levels must be
// given in decreasing order.
func IsoOffsetMap(ctx context.Context, c *compass.Compass, cfg MapConfig, levels []float64) ([]IsoCurve, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	lons, err := cfg.longitudes()
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] >= levels[i-1] {
			return nil, fmt.Errorf("balance: iso levels must decrease, got %g after %g", levels[i], levels[i-1])
		}
	}

	hits := make([][]float64, len(lons))
	errs := make([]error, len(lons))
	dynamo.ParallelFor(len(lons), 4, func(start, end int) {
		for k := start; k < end; k++ {
			if ctx.Err() != nil {
				errs[k] = ctx.Err()
				return
			}
			hits[k], errs[k] = scanIso(c, cfg.Model, lons[k], levels)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	curves := make([]IsoCurve, len(levels))
	for i, level := range levels {
		curves[i].Offset = level
		for k, lon := range lons {
			if i < len(hits[k]) {
				curves[i].Lon = append(curves[i].Lon, lon)
				curves[i].Lat = append(curves[i].Lat, hits[k][i])
			}
		}
	}
	return curves, nil
}

func scanIso(c *compass.Compass, model geomag.Dipole, lon float64, levels []float64) ([]float64, error) {
	var lats []float64
	prev := 0.001
	for lat := -90; lat <= 90 && len(lats) < len(levels); lat++ {
		f, err := model.Field("map", float64(lat), lon)
		if err != nil {
			return nil, err
		}
		x, err := OptimalOffset(c, f)
		if err != nil {
			return nil, err
		}
		level := levels[len(lats)]
		if level < prev && level > x {
			lats = append(lats, float64(lat))
		}
		prev = x
	}
	return lats, nil
}
