package docvalues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/model"
)

func TestFloatsRoundTrip(t *testing.T) {
	raw := EncodeFloats([]float32{1.0, 2.0})
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40}, raw)

	got, err := DecodeFloats(raw)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.0, 2.0}, got)
}

func TestDecodeFloats_BadLength(t *testing.T) {
	_, err := DecodeFloats([]byte{1, 2, 3})
	assert.ErrorIs(t, err, model.ErrIllegalState)
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		v    model.Vector
	}{
		{"float", model.FloatVector([]float32{-1.5, 0, 3.25})},
		{"byte", model.ByteVector([]byte{0x80, 0x00, 0x7f})},
		{"binary", model.BinaryVector([]byte{0b10100000, 0xff})},
		{"empty float", model.FloatVector([]float32{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.v)
			require.NoError(t, err)

			got, err := Decode(raw, tt.v.Type)
			require.NoError(t, err)
			assert.Equal(t, tt.v.Type, got.Type)
			assert.Equal(t, tt.v.Dimension(), got.Dimension())
			assert.Equal(t, tt.v.AsFloat32(), got.AsFloat32())
		})
	}
}

func TestDecode_DoesNotAlias(t *testing.T) {
	raw := []byte{1, 2, 3}
	v, err := Decode(raw, model.Byte)
	require.NoError(t, err)
	raw[0] = 9
	assert.Equal(t, byte(1), v.Bytes[0])
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode(nil, model.VectorDataType(42))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
