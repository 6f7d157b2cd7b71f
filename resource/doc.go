// Package resource bounds the load knnspace puts on the external
// cluster-state provider: concurrent calls, call rate, and bytes read
// from blob-backed state documents.
package resource
