// Package clusterstate answers questions about the live cluster: which
// software versions its nodes run and what settings an index carries.
//
// A Provider is the read side of cluster state. MemoryProvider is a mutable
// in-process implementation; DocumentProvider reads a published Document from
// a blobstore.BlobStore on every call, so a fleet of processes can share one
// view of the cluster through S3, MinIO or a local directory.
//
// VersionGate derives the minimum node version from a Provider and decides
// whether a version-gated feature may be used:
//
//	gate := clusterstate.NewVersionGate(version.Current())
//	gate.Initialize(provider)
//
//	if gate.IsOnOrAfter(ctx, clusterstate.FeatureMethodParameters) {
//	    // forward per-query method parameters
//	}
//
// Nothing is cached. Every call re-reads provider state.
package clusterstate
