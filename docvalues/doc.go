// Package docvalues encodes vectors into per-document values and exposes
// them to scripts and aggregations.
//
// Encoded layout by data type:
//
//	float   little-endian IEEE-754 float32 per dimension
//	byte    one int8 per dimension
//	binary  packed bits, 8 dimensions per byte
//
// ScriptDocValues walks a DocIterator in increasing document order. It is
// created lazily and only fails when a value is read from a document that
// has none, or from a source that does not hold vectors.
package docvalues
