// Package backend defines the contract between the k-NN core and an ANN
// library. The core never searches itself; it resolves parameters, hands
// them to a Backend and scores what comes back.
package backend

import (
	"context"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/params"
)

// RawResult is a search hit as the backend reports it. Value follows the
// engine's own convention (distance, similarity or host score).
type RawResult struct {
	Doc   int
	Value float32
}

// Backend builds and searches native index blobs.
type Backend interface {
	// Build creates a native index over vectors. Document i is vectors[i].
	Build(ctx context.Context, vectors []model.Vector, p params.Parameters) ([]byte, error)
	// Search returns at most k hits from blob, best first.
	Search(ctx context.Context, blob []byte, query model.Vector, k int, p params.Parameters) ([]RawResult, error)
}
