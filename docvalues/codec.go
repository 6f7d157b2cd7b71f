package docvalues

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/knnspace/model"
)

// EncodeFloats encodes v as little-endian float32 values.
func EncodeFloats(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// DecodeFloats decodes little-endian float32 values.
func DecodeFloats(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: float vector of %d bytes is not a multiple of 4", model.ErrIllegalState, len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

// Encode encodes v according to its data type.
func Encode(v model.Vector) ([]byte, error) {
	switch v.Type {
	case model.Float:
		return EncodeFloats(v.Floats), nil
	case model.Byte, model.Binary:
		return append([]byte(nil), v.Bytes...), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector data type %d", model.ErrConfiguration, v.Type)
	}
}

// Decode decodes raw as a vector of type dt. The result never aliases raw.
func Decode(raw []byte, dt model.VectorDataType) (model.Vector, error) {
	switch dt {
	case model.Float:
		f, err := DecodeFloats(raw)
		if err != nil {
			return model.Vector{}, err
		}
		return model.FloatVector(f), nil
	case model.Byte:
		return model.ByteVector(append([]byte(nil), raw...)), nil
	case model.Binary:
		return model.BinaryVector(append([]byte(nil), raw...)), nil
	default:
		return model.Vector{}, fmt.Errorf("%w: unknown vector data type %d", model.ErrConfiguration, dt)
	}
}
