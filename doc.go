// Package knnspace is the vector-similarity core of a k-NN search extension.
//
// It does not search. Given a vector field and its configured metric it
//
//   - turns the raw output of heterogeneous ANN backends into comparable
//     relevance scores, where higher is always more relevant,
//   - resolves the parameters a backend needs at load and query time from
//     the index's live settings, gated by the minimum software version of
//     the cluster, and
//   - exposes indexed vectors to scripts through doc values.
//
// # Quick Start
//
//	provider := clusterstate.NewMemoryProvider()
//	provider.SetNode("node-1", version.MustParse("2.17.0"))
//
//	core := knnspace.New(provider, knnspace.WithLogLevel(slog.LevelInfo))
//
//	field := mapping.MethodConfig{Engine: engine.Faiss, SpaceType: space.CosineSimil, Dimension: 3}
//	p, _ := core.ResolveLoadParameters(ctx, "products", field)
//	// p == params.Parameters{"spaceType": "cosinesimil"}
//
// # Searching through a backend
//
//	b, _ := exact.New(engine.Faiss)
//	results, _ := core.Search(ctx, b, knnspace.SearchRequest{
//	    Index: "products",
//	    Field: field,
//	    Blob:  blob,
//	    Query: model.FloatVector([]float32{0.1, 0.2, 0.3}),
//	    K:     10,
//	})
//
// # Packages
//
//   - space: metrics, distances and the score transform
//   - engine: what each backend supports and how it names its parameters
//   - params: load-time and query-time parameter resolution
//   - clusterstate: cluster state providers and the version gate
//   - docvalues: vector doc-value encoding and the scripting accessor
//   - mapping: field mapping parsing and validation
package knnspace
