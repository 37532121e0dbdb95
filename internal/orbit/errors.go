package orbit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidElements indicates orbital elements that do not describe a
	// closed orbit this package can convert.
	ErrInvalidElements = errors.New("orbit: invalid orbital elements")

	// ErrUnboundOrbit indicates a state vector on a parabolic or hyperbolic
	// trajectory, which has no elliptical elements.
	ErrUnboundOrbit = errors.New("orbit: state vector is not on a closed orbit")
)

// ElementsError names the offending field of a rejected conversion.
type ElementsError struct {
	Field   string
	Value   float64
	Reason  string
	Wrapped error
}

func (e *ElementsError) Error() string {
	return fmt.Sprintf("%v: %s = %g: %s", e.Wrapped, e.Field, e.Value, e.Reason)
}

func (e *ElementsError) Unwrap() error {
	return e.Wrapped
}
