package anim

import (
	"errors"
	"fmt"
)

// Domain errors for animation operations.
var (
	// ErrDisposedCell indicates an operation was requested on a torn-down cell.
	ErrDisposedCell = errors.New("anim: cell disposed")

	// ErrInvalidOperation indicates a malformed operation tree.
	ErrInvalidOperation = errors.New("anim: invalid operation")

	// ErrNonConvergentSpring indicates a spring hit the maximum duration bound
	// and was forced to its target.
	ErrNonConvergentSpring = errors.New("anim: spring did not converge")

	// ErrInvalidRange indicates interpolation ranges that cannot be mapped.
	ErrInvalidRange = errors.New("anim: invalid interpolation range")
)

// OperationError wraps ErrInvalidOperation with the location of the offending node.
type OperationError struct {
	Path   string
	Reason string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrInvalidOperation, e.Path, e.Reason)
}

func (e *OperationError) Unwrap() error {
	return ErrInvalidOperation
}

// CellError wraps an error with the cell it concerns.
type CellError struct {
	Cell    CellID
	Wrapped error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %d: %v", e.Cell, e.Wrapped)
}

func (e *CellError) Unwrap() error {
	return e.Wrapped
}
