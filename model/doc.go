// Package model defines the value types shared across knnspace.
//
// # Data Types
//
//   - VectorDataType: float, byte or binary element encoding of a field
//   - Vector: a decoded vector carrying exactly one payload for its type
//
// # Errors
//
// The error kinds every package wraps:
//
//   - ErrConfiguration: invalid metric, engine or data type combination
//   - ErrUnsupportedOperation: valid call shape the component does not support
//   - ErrIllegalState: accessor used in the wrong lifecycle state
//   - ErrExternalProvider: failure reported by the cluster-state provider
package model
