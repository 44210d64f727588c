package analysis

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled
// series with its mean removed. Freqs are in Hz.
type Spectrum struct {
	Freqs     []float64
	Amplitude []float64
}

func NewSpectrum(data []float64, dt float64) (*Spectrum, error) {
	n := len(data)
	if n < 4 {
		return nil, ErrShortSeries
	}
	if !(dt > 0) {
		return nil, errors.New("analysis: sample interval must be positive")
	}

	centered := make([]float64, n)
	copy(centered, data)
	floats.AddConst(-stat.Mean(data, nil), centered)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	s := &Spectrum{
		Freqs:     make([]float64, len(coeffs)),
		Amplitude: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Amplitude[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return s, nil
}

// Peak returns the strongest non-DC line.
func (s *Spectrum) Peak() (freq, amp float64) {
	if len(s.Amplitude) < 2 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Amplitude[1:]) + 1
	return s.Freqs[i], s.Amplitude[i]
}

// DominantFrequency of the series in Hz.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	s, err := NewSpectrum(data, dt)
	if err != nil {
		return 0, err
	}
	f, _ := s.Peak()
	return f, nil
}
