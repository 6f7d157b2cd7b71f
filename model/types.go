package model

import (
	"fmt"
	"strings"
)

// VectorDataType is the element encoding of a vector field.
type VectorDataType uint8

const (
	// Float stores IEEE-754 float32 components.
	Float VectorDataType = iota
	// Byte stores signed int8 components, one byte per dimension.
	Byte
	// Binary stores packed bits, eight dimensions per byte.
	Binary
)

// DefaultDataType is used when a field declares no data type.
const DefaultDataType = Float

// DataTypes lists every data type in declaration order.
var DataTypes = []VectorDataType{Float, Byte, Binary}

func (t VectorDataType) String() string {
	switch t {
	case Float:
		return "float"
	case Byte:
		return "byte"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is a member of the closed set.
func (t VectorDataType) Valid() bool { return t <= Binary }

// ParseVectorDataType parses a data type name case-insensitively.
// An empty name yields DefaultDataType.
func ParseVectorDataType(s string) (VectorDataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDataType, nil
	case "float":
		return Float, nil
	case "byte":
		return Byte, nil
	case "binary":
		return Binary, nil
	default:
		return 0, fmt.Errorf("%w: invalid vector data type %q, expected one of float, byte, binary", ErrConfiguration, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t VectorDataType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: invalid vector data type %d", ErrConfiguration, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *VectorDataType) UnmarshalText(b []byte) error {
	v, err := ParseVectorDataType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Vector is a decoded vector value. Floats is set for Float, Bytes for Byte
// and Binary.
type Vector struct {
	Type   VectorDataType
	Floats []float32
	Bytes  []byte
}

// FloatVector wraps a float32 slice.
func FloatVector(v []float32) Vector { return Vector{Type: Float, Floats: v} }

// ByteVector wraps int8 components stored as bytes.
func ByteVector(v []byte) Vector { return Vector{Type: Byte, Bytes: v} }

// BinaryVector wraps packed bits.
func BinaryVector(v []byte) Vector { return Vector{Type: Binary, Bytes: v} }

// Dimension returns the logical dimension. Binary vectors count bits.
func (v Vector) Dimension() int {
	switch v.Type {
	case Float:
		return len(v.Floats)
	case Binary:
		return len(v.Bytes) * 8
	default:
		return len(v.Bytes)
	}
}

// AsFloat32 widens the vector to float32 components. Byte components are
// interpreted as signed int8; binary bytes are widened by their unsigned value.
func (v Vector) AsFloat32() []float32 {
	switch v.Type {
	case Float:
		return v.Floats
	case Byte:
		out := make([]float32, len(v.Bytes))
		for i, b := range v.Bytes {
			out[i] = float32(int8(b))
		}
		return out
	default:
		out := make([]float32, len(v.Bytes))
		for i, b := range v.Bytes {
			out[i] = float32(b)
		}
		return out
	}
}
