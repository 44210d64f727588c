package viz

import "math"

// Dial draws a compass capsule seen from above, north up.
type Dial struct {
	canvas *Canvas
}

func NewDial(w, h int) *Dial {
	return &Dial{canvas: NewCanvas(w, h)}
}

// Draw renders the bezel, the settling band and the needle deflected by
// angleDeg, clockwise positive.
func (d *Dial) Draw(angleDeg, limitDeg float64) string {
	c := d.canvas
	c.Clear()
	w, h := c.Dots()
	cx, cy := w/2, h/2
	r := min(cx, cy) - 1

	c.DrawCircle(cx, cy, r)
	for _, a := range []float64{-limitDeg, limitDeg} {
		x0, y0 := polar(cx, cy, float64(r)*0.85, a)
		x1, y1 := polar(cx, cy, float64(r), a)
		c.DrawLine(x0, y0, x1, y1)
	}

	// north end long, south end short
	nx, ny := polar(cx, cy, float64(r)*0.8, angleDeg)
	sx, sy := polar(cx, cy, float64(r)*0.45, angleDeg+180)
	c.DrawLine(sx, sy, nx, ny)
	return c.String()
}

func polar(cx, cy int, r, deg float64) (int, int) {
	a := deg * math.Pi / 180
	return cx + int(math.Round(r*math.Sin(a))), cy - int(math.Round(r*math.Cos(a)))
}
