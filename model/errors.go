package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates an invalid metric, engine or data type selection.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedOperation indicates an operation the component never supports.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrIllegalState indicates use of an accessor outside its valid state.
	ErrIllegalState = errors.New("illegal state")

	// ErrExternalProvider indicates the cluster-state provider failed.
	ErrExternalProvider = errors.New("external provider error")
)

// DimensionMismatchError indicates two vectors of different length were compared.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports ErrConfiguration so callers can treat mismatches uniformly.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrConfiguration
}

// CheckDimensions returns a *DimensionMismatchError if a and b differ.
func CheckDimensions(a, b int) error {
	if a != b {
		return &DimensionMismatchError{Expected: a, Actual: b}
	}
	return nil
}
