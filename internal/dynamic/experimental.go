package dynamic

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/compassim/internal/metrics"
)

var ErrInvalidSeries = errors.New("dynamic: invalid experimental series")

// Series is a measured rapidity test: time in seconds, angle in degrees.
type Series struct {
	Time  []float64
	Angle []float64
}

func (s Series) Len() int { return len(s.Time) }

func (s Series) Validate() error {
	if len(s.Time) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSeries)
	}
	if len(s.Time) != len(s.Angle) {
		return fmt.Errorf("%w: %d times for %d angles", ErrInvalidSeries, len(s.Time), len(s.Angle))
	}
	for i := range s.Time {
		if math.IsNaN(s.Time[i]) || math.IsInf(s.Time[i], 0) ||
			math.IsNaN(s.Angle[i]) || math.IsInf(s.Angle[i], 0) {
			return fmt.Errorf("%w: non-finite value at row %d", ErrInvalidSeries, i)
		}
		if i > 0 && s.Time[i] <= s.Time[i-1] {
			return fmt.Errorf("%w: time not increasing at row %d", ErrInvalidSeries, i)
		}
	}
	return nil
}

func (s Series) clone() Series {
	return Series{Time: clone(s.Time), Angle: clone(s.Angle)}
}

// LoadExperimental stores a measured series for comparison with the
// simulated rapidity run. Simulated runs and Tho are left untouched. On
// error the previously loaded series is kept.
func (e *Engine) LoadExperimental(s Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	series := s.clone()
	limit := e.params.SettlingLimitDeg

	e.experimental = &series
	e.expCrossing, e.expCrossSet = 0, false
	e.expSettling, e.expSettleSet = 0, false
	if i, ok := metrics.FirstExceed(series.Angle, limit); ok {
		e.expCrossing, e.expCrossSet = series.Time[i], true
	}
	if i, ok := metrics.LastExceed(series.Angle, limit); ok {
		e.expSettling, e.expSettleSet = series.Time[i], true
	}
	e.logger.Info("experimental series loaded", "samples", series.Len(),
		"crossing", e.expCrossing, "settling", e.expSettling)
	return nil
}

func (e *Engine) Experimental() (Series, bool) {
	if e.experimental == nil {
		return Series{}, false
	}
	return e.experimental.clone(), true
}

// ExperimentalCrossing is the first measured time the angle magnitude
// exceeds the settling limit.
func (e *Engine) ExperimentalCrossing() (float64, bool) {
	return e.expCrossing, e.expCrossSet
}

// ExperimentalSettling is the last measured time the angle magnitude
// exceeds the settling limit, comparable to Tho.
func (e *Engine) ExperimentalSettling() (float64, bool) {
	return e.expSettling, e.expSettleSet
}
