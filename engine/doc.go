// Package engine is the static capability registry of the supported
// approximate-nearest-neighbor backends.
//
// Each backend is described by an immutable Descriptor: the metric and data
// type combinations it accepts, the native names of its tuning parameters,
// their compiled-in defaults, and the convention its search results use for
// raw distances. Descriptors are built once at package init and never
// mutated, so every function here is safe for concurrent use.
//
// # Engines
//
//   - NMSLIB: graph library, float vectors only, deprecated for new indices from 3.0.0
//   - Faiss: graph and quantization library, the default
//   - Lucene: the host engine's native implementation
package engine
