package dynamic

import "math"

// SteadyState is the closed form response of the small angle stability
// equation
//
//	I alpha'' + C alpha' + K alpha = E I sin(Omega t)
//
// with K = -M I, C = -V I and Omega = pi f / 30.
type SteadyState struct {
	Inertia       float64 // I
	Stiffness     float64 // K
	Damping       float64 // C
	Forcing       float64 // E I
	Omega         float64
	Amplification float64
	Phase         float64
}

// Amplitude of the steady oscillation, in radians.
func (s SteadyState) Amplitude() float64 {
	return math.Abs(s.Forcing) * s.Amplification
}

// Angle at time t, in radians.
func (s SteadyState) Angle(t float64) float64 {
	return s.Forcing * s.Amplification * math.Sin(s.Omega*t-s.Phase)
}

// AngularFrequency is w = pi f / 60, the sway frequency of the runner's
// body. The gait forcing oscillates at twice this.
func (e *Engine) AngularFrequency() float64 {
	return math.Pi * e.params.StepFrequency / 60
}

func (e *Engine) Response() (SteadyState, error) {
	coeffs, err := e.Coefficients()
	if err != nil {
		return SteadyState{}, err
	}
	inertia := e.compass.MomentOfInertia()
	omega := 2 * e.AngularFrequency()

	s := SteadyState{
		Inertia:   inertia,
		Stiffness: -coeffs.Magnetic * inertia,
		Damping:   -coeffs.Viscous * inertia,
		Forcing:   coeffs.Excitation * inertia,
		Omega:     omega,
	}
	reactive := s.Stiffness - inertia*omega*omega
	resistive := s.Damping * omega
	s.Amplification = 1 / math.Hypot(reactive, resistive)
	s.Phase = math.Atan2(resistive, reactive)
	return s, nil
}

func (e *Engine) Amplification() (float64, error) {
	s, err := e.Response()
	return s.Amplification, err
}

func (e *Engine) Phase() (float64, error) {
	s, err := e.Response()
	return s.Phase, err
}

func (e *Engine) SteadyStateAmplitude() (float64, error) {
	s, err := e.Response()
	return s.Amplitude(), err
}

func (e *Engine) SteadyStateAngle(t float64) (float64, error) {
	s, err := e.Response()
	return s.Angle(t), err
}
