package metrics

import (
	"errors"
	"testing"

	"github.com/san-kum/compassim/internal/dynamo"
)

func TestSettlingIndex(t *testing.T) {
	tests := []struct {
		name    string
		series  []float64
		limit   float64
		wantIdx int
		wantOK  bool
	}{
		{"last crossing wins", []float64{10, 6, 4, -6, 3}, 5, 3, true},
		{"no crossing", []float64{10, 9, 8, 7}, 5, 0, false},
		{"equal to limit does not count", []float64{10, 5, 4, 3}, 5, 0, false},
		{"final sample ignored", []float64{10, 9, 8, 4}, 5, 0, false},
		{"too short", []float64{10, 1}, 5, 0, false},
		{"empty", nil, 5, 0, false},
		{"rising crossing", []float64{1, 2, 7, 8}, 5, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := SettlingIndex(tt.series, tt.limit)
			if ok != tt.wantOK || idx != tt.wantIdx {
				t.Errorf("SettlingIndex got (%d, %v), want (%d, %v)", idx, ok, tt.wantIdx, tt.wantOK)
			}
		})
	}
}

func TestExceed(t *testing.T) {
	series := []float64{1, -7, 2, 8, 3}
	if i, ok := FirstExceed(series, 5); !ok || i != 1 {
		t.Errorf("FirstExceed got (%d, %v), want (1, true)", i, ok)
	}
	if i, ok := LastExceed(series, 5); !ok || i != 3 {
		t.Errorf("LastExceed got (%d, %v), want (3, true)", i, ok)
	}
	if _, ok := FirstExceed(series, 10); ok {
		t.Error("FirstExceed found a sample above 10")
	}
	if _, ok := LastExceed(nil, 0); ok {
		t.Error("LastExceed on empty series")
	}
}

func TestSecondHalfSpan(t *testing.T) {
	tests := []struct {
		series []float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4, 5, 6, 7, 8}, 3},
		{[]float64{100, -100, 1, 2, 3, 4, 5, 6, 7}, 3}, // k = round(4.5) = 4
		{[]float64{4}, 0},
		{[]float64{9, 1, 3}, 2}, // k = round(1.5) = 2
	}
	for _, tt := range tests {
		got, err := SecondHalfSpan(tt.series)
		if err != nil {
			t.Fatalf("SecondHalfSpan(%v): %v", tt.series, err)
		}
		if got != tt.want {
			t.Errorf("SecondHalfSpan(%v) got %v, want %v", tt.series, got, tt.want)
		}
	}

	if _, err := SecondHalfSpan(nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("empty series got %v, want ErrEmptySeries", err)
	}
}

func TestSettlingStreamMatchesBatch(t *testing.T) {
	series := []float64{10, 6, 4, -6, 3}
	m := NewSettling(1, 1, 5)
	for i, v := range series {
		m.Observe(dynamo.State{0, v}, float64(i)*0.5)
	}
	if got := m.Value(); got != 1.5 {
		t.Errorf("streaming settling time got %v, want 1.5", got)
	}

	m.Reset()
	for i, v := range []float64{10, 9, 8, 4} {
		m.Observe(dynamo.State{0, v}, float64(i))
	}
	if got := m.Value(); got != -1 {
		t.Errorf("crossing on the final sample got %v, want -1", got)
	}
}

func TestWithinLimit(t *testing.T) {
	m := NewWithinLimit(0, 2, 5)
	for _, v := range []float64{1, 2, 3, 4} {
		m.Observe(dynamo.State{v}, 0)
	}
	if got := m.Value(); got != 0.5 {
		t.Errorf("WithinLimit got %v, want 0.5", got)
	}
}

func TestPeakAbs(t *testing.T) {
	m := NewPeakAbs("peak", 0, 1)
	for _, v := range []float64{1, -4, 3} {
		m.Observe(dynamo.State{v}, 0)
	}
	if m.Value() != 4 {
		t.Errorf("PeakAbs got %v, want 4", m.Value())
	}
}
