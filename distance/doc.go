// Package distance provides raw vector distance kernels.
//
// All functions dispatch to internal/simd, which selects unrolled kernels
// on CPUs with wide vector units.
//
// # Kernels
//
//   - Float32: Dot, SquaredL2, L1, LInf, CosineSimilarity
//   - Int8 (bytes interpreted as signed): DotInt8, SquaredL2Int8, L1Int8, LInfInt8, CosineSimilarityInt8
//   - Packed bits: Hamming
//
// Kernels assume equal lengths. Length checks and score transforms live in
// package space.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	sim := distance.CosineSimilarity(a, b)
package distance
