// Package engineerr names the error taxonomy of the projection engine as
// sentinel values, so callers can classify a failure with errors.Is instead
// of parsing a message.
package engineerr

import "errors"

var (
	// ErrDimensionMismatch marks a query, slice, or clone whose size disagrees
	// with the underlying provider or state model.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexOutOfRange marks a rate lookup whose adjusted index falls
	// outside a provider's shape.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrCapacityExceeded marks a slice_into call that needs more elements
	// than the target provider's pre-allocated buffer holds.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidState marks a policy whose initial_state is not in [0, n).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidConfiguration marks missing or inconsistent run configuration:
	// unset be_assumptions, an n mismatch, a missing portfolio date, or a
	// missing required builder field.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrPaymentReinjection marks a payment_type_index submitted twice for
	// the same category.
	ErrPaymentReinjection = errors.New("payment type index used multiple times")
)
