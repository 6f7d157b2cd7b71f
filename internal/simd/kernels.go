package simd

import (
	"encoding/binary"
	"math"
	"math/bits"
)

// Kernel function pointers, set once at init.
var (
	kernelDot           = dotGeneric
	kernelSquaredL2     = squaredL2Generic
	kernelL1            = l1Generic
	kernelLInf          = lInfGeneric
	kernelDotInt8       = dotInt8Generic
	kernelSquaredL2Int8 = squaredL2Int8Generic
	kernelHamming       = hammingGeneric
)

func selectKernels(isa ISA) {
	if isa == Generic {
		kernelDot = dotGeneric
		kernelSquaredL2 = squaredL2Generic
		kernelL1 = l1Generic
		return
	}
	kernelDot = dotUnrolled
	kernelSquaredL2 = squaredL2Unrolled
	kernelL1 = l1Unrolled
}

// Dot calculates the dot product of two vectors.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func Dot(a, b []float32) float32 {
	return kernelDot(a, b)
}

// SquaredL2 calculates the squared L2 distance.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func SquaredL2(a, b []float32) float32 {
	return kernelSquaredL2(a, b)
}

// L1 calculates the Manhattan distance.
func L1(a, b []float32) float32 {
	return kernelL1(a, b)
}

// LInf calculates the Chebyshev distance.
func LInf(a, b []float32) float32 {
	return kernelLInf(a, b)
}

// DotInt8 calculates the dot product of two int8 vectors stored as bytes.
func DotInt8(a, b []byte) int64 {
	return kernelDotInt8(a, b)
}

// SquaredL2Int8 calculates the squared L2 distance of two int8 vectors.
func SquaredL2Int8(a, b []byte) int64 {
	return kernelSquaredL2Int8(a, b)
}

// L1Int8 calculates the Manhattan distance of two int8 vectors.
func L1Int8(a, b []byte) int64 {
	var sum int64
	for i := range a {
		d := int64(int8(a[i])) - int64(int8(b[i]))
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// LInfInt8 calculates the Chebyshev distance of two int8 vectors.
func LInfInt8(a, b []byte) int64 {
	var m int64
	for i := range a {
		d := int64(int8(a[i])) - int64(int8(b[i]))
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

// Hamming computes the number of differing bits between a and b.
func Hamming(a, b []byte) int64 {
	return kernelHamming(a, b)
}

// Sqrt returns the float32 square root.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func dotGeneric(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

func squaredL2Generic(a, b []float32) float32 {
	var distance float32
	for i := range a {
		d := a[i] - b[i]
		distance += d * d
	}
	return distance
}

func l1Generic(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += float32(math.Abs(float64(a[i] - b[i])))
	}
	return sum
}

func lInfGeneric(a, b []float32) float32 {
	var m float32
	for i := range a {
		d := float32(math.Abs(float64(a[i] - b[i])))
		if d > m {
			m = d
		}
	}
	return m
}

func dotUnrolled(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return s0 + s1 + s2 + s3
}

func squaredL2Unrolled(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return s0 + s1 + s2 + s3
}

func l1Unrolled(a, b []float32) float32 {
	var s0, s1 float32
	n := len(a)
	i := 0
	for ; i+2 <= n; i += 2 {
		s0 += abs32(a[i] - b[i])
		s1 += abs32(a[i+1] - b[i+1])
	}
	for ; i < n; i++ {
		s0 += abs32(a[i] - b[i])
	}
	return s0 + s1
}

func abs32(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}

func dotInt8Generic(a, b []byte) int64 {
	var sum int64
	for i := range a {
		sum += int64(int8(a[i])) * int64(int8(b[i]))
	}
	return sum
}

func squaredL2Int8Generic(a, b []byte) int64 {
	var sum int64
	for i := range a {
		d := int64(int8(a[i])) - int64(int8(b[i]))
		sum += d * d
	}
	return sum
}

func hammingGeneric(a, b []byte) int64 {
	var sum int64
	n := len(a)
	for n >= 8 {
		v1 := binary.LittleEndian.Uint64(a)
		v2 := binary.LittleEndian.Uint64(b)
		sum += int64(bits.OnesCount64(v1 ^ v2))
		a = a[8:]
		b = b[8:]
		n -= 8
	}
	for i := range a {
		sum += int64(bits.OnesCount8(a[i] ^ b[i]))
	}
	return sum
}
