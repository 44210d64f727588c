// Package plot renders runs and balance maps with gonum/plot. Output format
// follows the file extension (png, svg, pdf, eps).
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/compassim/internal/balance"
	"github.com/san-kum/compassim/internal/dynamic"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// xys keeps the finite pairs only.
func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) || math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func addLine(p *plot.Plot, name string, i int, pts plotter.XYs) error {
	if len(pts) == 0 {
		return nil
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = plotutil.Color(i)
	l.Dashes = plotutil.Dashes(i)
	l.Width = vg.Points(1.5)
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

func addHLine(p *plot.Plot, name string, i int, y, x0, x1 float64) error {
	return addLine(p, name, i, plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
}

func angleLabel(u dynamic.Unit) string {
	if u == dynamic.Radians {
		return "angle (rad)"
	}
	return "angle (deg)"
}

func span(ts []float64) (float64, float64) {
	if len(ts) == 0 {
		return 0, 1
	}
	return ts[0], ts[len(ts)-1]
}

// Run plots the angle of a run. Nonlinear rapidity runs get the settling
// band and, when it exists, a marker at tho.
func Run(run *dynamic.Run, limitDeg float64, tho *float64) (*plot.Plot, error) {
	band := run.Kind() == dynamic.Rapidity && run.Unit() == dynamic.Degrees
	if !band {
		tho = nil
		limitDeg = 0
	}
	return Trace(run.Name(), run.Unit(), run.Times(), run.Angles(), limitDeg, tho)
}

// Trace plots an angle series. A positive limit draws the settling band.
func Trace(title string, unit dynamic.Unit, times, angles []float64, limitDeg float64, tho *float64) (*plot.Plot, error) {
	p := newPlot(title, "time (s)", angleLabel(unit))
	if err := addLine(p, "simulated", 0, xys(times, angles)); err != nil {
		return nil, err
	}
	if limitDeg > 0 {
		t0, t1 := span(times)
		if err := addHLine(p, fmt.Sprintf("±%g°", limitDeg), 1, limitDeg, t0, t1); err != nil {
			return nil, err
		}
		if err := addHLine(p, "", 1, -limitDeg, t0, t1); err != nil {
			return nil, err
		}
	}
	if tho != nil {
		s, err := plotter.NewScatter(plotter.XYs{{X: *tho, Y: 0}})
		if err != nil {
			return nil, err
		}
		s.Color = plotutil.Color(2)
		s.Shape = plotutil.Shape(2)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("tho = %.3f s", *tho), s)
	}
	return p, nil
}

// Overlay plots a nonlinear rapidity run against a measured series.
func Overlay(run *dynamic.Run, measured dynamic.Series) (*plot.Plot, error) {
	p := newPlot("rapidity vs measurement", "time (s)", angleLabel(run.Unit()))
	if err := addLine(p, "simulated", 0, xys(run.Times(), run.Angles())); err != nil {
		return nil, err
	}
	pts := xys(measured.Time, measured.Angle)
	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.Color = plotutil.Color(1)
		s.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add("measured", s)
	}
	return p, nil
}

// SteadyState plots a small-angle stability run with the analytic
// steady-state response.
func SteadyState(run *dynamic.Run, ss dynamic.SteadyState) (*plot.Plot, error) {
	p := newPlot(run.Name(), "time (s)", angleLabel(run.Unit()))
	times := run.Times()
	if err := addLine(p, "simulated", 0, xys(times, run.Angles())); err != nil {
		return nil, err
	}
	scale := 1.0
	if run.Unit() == dynamic.Degrees {
		scale = 180 / math.Pi
	}
	pred := make([]float64, len(times))
	for i, t := range times {
		pred[i] = ss.Angle(t) * scale
	}
	if err := addLine(p, "steady state", 1, xys(times, pred)); err != nil {
		return nil, err
	}
	return p, nil
}

// Acceptability plots the latitude band, per longitude, where the compass
// stays within its error limit.
func Acceptability(limits []balance.Limits) (*plot.Plot, error) {
	p := newPlot("acceptable latitudes", "longitude (deg)", "latitude (deg)")
	lon := make([]float64, len(limits))
	lower := make([]float64, len(limits))
	opt := make([]float64, len(limits))
	upper := make([]float64, len(limits))
	for i, l := range limits {
		lon[i], lower[i], opt[i], upper[i] = l.Lon, l.Lower, l.Optimum, l.Upper
	}
	for i, s := range []struct {
		name string
		lat  []float64
	}{{"lower", lower}, {"optimum", opt}, {"upper", upper}} {
		if err := addLine(p, s.name, i, xys(lon, s.lat)); err != nil {
			return nil, err
		}
	}
	p.Y.Min, p.Y.Max = -90, 90
	return p, nil
}

// Iso plots the latitude where each optimal offset level is crossed.
func Iso(curves []balance.IsoCurve) (*plot.Plot, error) {
	p := newPlot("optimal offset", "longitude (deg)", "latitude (deg)")
	for i, c := range curves {
		if err := addLine(p, fmt.Sprintf("%.1f mm", c.Offset*1e3), i, xys(c.Lon, c.Lat)); err != nil {
			return nil, err
		}
	}
	p.Y.Min, p.Y.Max = -90, 90
	return p, nil
}

// Save writes p to path in the format named by its extension.
func Save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(DefaultWidth, DefaultHeight, path)
}

// Write renders p to w in the given format.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
