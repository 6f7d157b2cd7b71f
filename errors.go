package knnspace

import (
	"fmt"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/params"
)

var (
	// ErrConfiguration indicates an invalid metric, engine or data type selection.
	ErrConfiguration = model.ErrConfiguration

	// ErrUnsupportedOperation indicates an operation that is never supported.
	ErrUnsupportedOperation = model.ErrUnsupportedOperation

	// ErrIllegalState indicates use of an accessor outside its valid state.
	ErrIllegalState = model.ErrIllegalState

	// ErrExternalProvider indicates the cluster-state provider failed.
	ErrExternalProvider = model.ErrExternalProvider

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", model.ErrConfiguration)
)

// DimensionMismatchError indicates a vector/query dimensionality mismatch.
type DimensionMismatchError = model.DimensionMismatchError

// ConfigurationError reports a field configuration the resolver rejects.
type ConfigurationError = params.ConfigurationError
