package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/compassim/internal/dynamo"
)

var ErrEmptySeries = errors.New("metrics: empty series")

// crossed reports whether |prev| and |cur| sit on opposite sides of limit.
// Values equal to the limit never count.
func crossed(prev, cur, limit float64) bool {
	a, b := math.Abs(prev), math.Abs(cur)
	return (a > limit && b < limit) || (a < limit && b > limit)
}

// SettlingIndex returns the last index i in [1, n-2] where the magnitude of
// the series crosses limit between i-1 and i. The final sample is never
// examined. ok is false when there is no crossing.
func SettlingIndex(series []float64, limit float64) (idx int, ok bool) {
	for i := 1; i < len(series)-1; i++ {
		if crossed(series[i-1], series[i], limit) {
			idx, ok = i, true
		}
	}
	return idx, ok
}

// FirstExceed returns the first index whose magnitude is above limit.
func FirstExceed(series []float64, limit float64) (int, bool) {
	for i, v := range series {
		if math.Abs(v) > limit {
			return i, true
		}
	}
	return 0, false
}

// LastExceed returns the last index whose magnitude is above limit.
func LastExceed(series []float64, limit float64) (int, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if math.Abs(series[i]) > limit {
			return i, true
		}
	}
	return 0, false
}

// SecondHalfSpan is max - min over the last round(n/2) samples, rounding
// half to even. A single sample series uses all of it.
func SecondHalfSpan(series []float64) (float64, error) {
	n := len(series)
	if n == 0 {
		return 0, ErrEmptySeries
	}
	k := int(math.RoundToEven(float64(n) / 2))
	tail := series
	if k > 0 {
		tail = series[n-k:]
	}
	return floats.Max(tail) - floats.Min(tail), nil
}

// Settling tracks SettlingIndex on a stream of samples. Value is the time
// of the last crossing, or -1 when there is none. The newest sample is
// treated as the final one, so a crossing onto it is held back until
// another sample arrives.
type Settling struct {
	name      string
	component int
	scale     float64
	limit     float64

	samples   int
	prev      float64
	confirmed float64
	pending   float64
	hasPend   bool
}

// NewSettling watches x[component]*scale against limit.
func NewSettling(component int, scale, limit float64) *Settling {
	s := &Settling{
		name:      "settling_time",
		component: component,
		scale:     scale,
		limit:     limit,
	}
	s.Reset()
	return s
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(x dynamo.State, t float64) {
	if s.component >= len(x) {
		return
	}
	v := x[s.component] * s.scale
	if s.hasPend {
		s.confirmed = s.pending
		s.hasPend = false
	}
	if s.samples > 0 && crossed(s.prev, v, s.limit) {
		s.pending = t
		s.hasPend = true
	}
	s.prev = v
	s.samples++
}

func (s *Settling) Value() float64 {
	return s.confirmed
}

func (s *Settling) Reset() {
	s.samples = 0
	s.prev = 0
	s.confirmed = -1
	s.pending = 0
	s.hasPend = false
}
