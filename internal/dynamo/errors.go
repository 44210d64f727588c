package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates unusable timing or tolerance settings.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the solver used up its step allowance.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrStepRejected is returned by adaptive integrators when the local
	// error estimate exceeds the tolerance. The step must be retried.
	ErrStepRejected = errors.New("dynamo: step rejected")

	// ErrDimensionMismatch indicates mismatched state and system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// NumericalFailure reports a run that could not be integrated over its
// requested span.
type NumericalFailure struct {
	From, To float64
	Time     float64
	Step     int
	State    State
	Wrapped  error
}

func (e *NumericalFailure) Error() string {
	return fmt.Sprintf("dynamo: integration over [%g, %g] failed at t=%.6g (step %d): %v",
		e.From, e.To, e.Time, e.Step, e.Wrapped)
}

func (e *NumericalFailure) Unwrap() error {
	return e.Wrapped
}
