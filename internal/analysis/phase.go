package analysis

import (
	"errors"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/compassim/internal/dynamic"
)

type Point struct{ X, Y float64 }

// Portrait is a trajectory in the (angle, angular velocity) plane. Angles
// keep the unit of the run they come from, rates are rad/s.
type Portrait struct {
	Unit   dynamic.Unit
	Points []Point
}

func PortraitOf(run *dynamic.Run) *Portrait {
	angles, rates := run.Angles(), run.AngularVelocity()
	p := &Portrait{Unit: run.Unit(), Points: make([]Point, len(angles))}
	for i := range angles {
		p.Points[i] = Point{X: angles[i], Y: rates[i]}
	}
	return p
}

// Stroboscopic samples a stability run once per gait period, starting at
// skip seconds so the transient can be left out. Once the needle is locked
// to the gait the points collapse onto one.
func Stroboscopic(run *dynamic.Run, period, skip float64) (*Portrait, error) {
	if !(period > 0) {
		return nil, errors.New("analysis: period must be positive")
	}
	times, angles, rates := run.Times(), run.Angles(), run.AngularVelocity()
	p := &Portrait{Unit: run.Unit()}

	next := skip
	for i, t := range times {
		if t+1e-9 < next {
			continue
		}
		p.Points = append(p.Points, Point{X: angles[i], Y: rates[i]})
		next += period
	}
	return p, nil
}

// Spread is the largest distance of a point from the centroid.
func (p *Portrait) Spread() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	var cx, cy float64
	for _, pt := range p.Points {
		cx += pt.X
		cy += pt.Y
	}
	cx /= float64(len(p.Points))
	cy /= float64(len(p.Points))

	d := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		d[i] = math.Hypot(pt.X-cx, pt.Y-cy)
	}
	return floats.Max(d)
}

// ASCII renders the portrait with axes through the origin when visible.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
