// Package simd provides the distance kernels behind package distance.
//
// Kernels are dispatched through function pointers set once at init.
// Runtime CPU feature detection (golang.org/x/sys/cpu) selects the
// unrolled kernels on machines with wide vector units; the scalar
// reference loops remain available through KNNSPACE_SIMD=generic.
//
// # Operations
//
//   - Float32: Dot, SquaredL2, L1, LInf
//   - Int8: DotInt8, SquaredL2Int8, L1Int8, LInfInt8
//   - Bits: Hamming
package simd
