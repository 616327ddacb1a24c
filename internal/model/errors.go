package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrArithmeticBoundary matches validation errors raised because a formula
	// would be undefined for the given input (zero rate, zero divisor).
	ErrArithmeticBoundary = errors.New("arithmetic boundary condition")
)

// ValidationError reports malformed or out-of-domain calculator input.
// It is local to one invocation and never retried.
type ValidationError struct {
	Field    string
	Reason   string
	Boundary bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match the package sentinels.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrArithmeticBoundary:
		return e.Boundary
	}
	return false
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Boundary builds a ValidationError for a formula that cannot be evaluated.
func Boundary(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Boundary: true}
}
