package distance

import (
	"slices"

	"github.com/hupe1980/knnspace/internal/simd"
)

// Func is a distance function over float32 vectors.
type Func func(a, b []float32) float32

// FuncBytes is a distance function over byte vectors.
type FuncBytes func(a, b []byte) float32

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return simd.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return simd.SquaredL2(a, b)
}

// L1 calculates the Manhattan distance between two vectors.
func L1(a, b []float32) float32 {
	return simd.L1(a, b)
}

// LInf calculates the Chebyshev distance between two vectors.
func LInf(a, b []float32) float32 {
	return simd.LInf(a, b)
}

// Magnitude returns the L2 norm of v.
func Magnitude(v []float32) float32 {
	return simd.Sqrt(simd.Dot(v, v))
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Returns false if either vector has zero norm.
func CosineSimilarity(a, b []float32) (float32, bool) {
	na := simd.Dot(a, a)
	nb := simd.Dot(b, b)
	if na == 0 || nb == 0 {
		return 0, false
	}
	return simd.Dot(a, b) / simd.Sqrt(na*nb), true
}

// Hamming calculates the Hamming distance between two byte slices.
// Returns the count of differing bits as a float32.
func Hamming(a, b []byte) float32 {
	return float32(simd.Hamming(a, b))
}

// DotInt8 calculates the dot product of two signed int8 vectors.
func DotInt8(a, b []byte) float32 {
	return float32(simd.DotInt8(a, b))
}

// SquaredL2Int8 calculates the squared L2 distance of two signed int8 vectors.
func SquaredL2Int8(a, b []byte) float32 {
	return float32(simd.SquaredL2Int8(a, b))
}

// L1Int8 calculates the Manhattan distance of two signed int8 vectors.
func L1Int8(a, b []byte) float32 {
	return float32(simd.L1Int8(a, b))
}

// LInfInt8 calculates the Chebyshev distance of two signed int8 vectors.
func LInfInt8(a, b []byte) float32 {
	return float32(simd.LInfInt8(a, b))
}

// CosineSimilarityInt8 is CosineSimilarity over signed int8 vectors.
func CosineSimilarityInt8(a, b []byte) (float32, bool) {
	na := simd.DotInt8(a, a)
	nb := simd.DotInt8(b, b)
	if na == 0 || nb == 0 {
		return 0, false
	}
	return float32(simd.DotInt8(a, b)) / simd.Sqrt(float32(na)*float32(nb)), true
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := simd.Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / simd.Sqrt(norm2)
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// IsZeroBytes reports whether every byte of v is zero.
func IsZeroBytes(v []byte) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
