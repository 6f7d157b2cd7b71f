// Package params resolves the parameters handed to an ANN backend.
//
// Load-time parameters are sent when a segment's native index is loaded;
// query-time parameters travel with a single search. Both are derived from
// the field's space type, engine and data type, the index's live settings
// and the minimum software version of the cluster.
//
// Resolution reads cluster state on every call. The returned maps are
// fresh and owned by the caller.
package params
