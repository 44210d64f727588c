package compass

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is matched by every *InvalidParameterError.
var ErrInvalidParameter = errors.New("compass: invalid parameter")

// InvalidParameterError names the offending quantity.
type InvalidParameterError struct {
	Owner  string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("compass: %s.%s = %g: %s", e.Owner, e.Field, e.Value, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
