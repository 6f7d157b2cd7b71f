package clusterstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/version"
)

func TestMemoryProvider_IndexSettings(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	_, err := p.IndexSettings(ctx, "missing")
	assert.ErrorIs(t, err, ErrIndexNotFound)

	p.SetIndexSettings("vectors", Settings{"index.knn": true})
	p.UpdateIndexSetting("vectors", "index.knn.algo_param.ef_search", 413)

	s, err := p.IndexSettings(ctx, "vectors")
	require.NoError(t, err)
	assert.Equal(t, true, s["index.knn"])
	assert.Equal(t, 413, s["index.knn.algo_param.ef_search"])

	// Callers get a copy.
	s["index.knn"] = false
	s2, err := p.IndexSettings(ctx, "vectors")
	require.NoError(t, err)
	assert.Equal(t, true, s2["index.knn"])

	p.DeleteIndex("vectors")
	_, err = p.IndexSettings(ctx, "vectors")
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestMemoryProvider_Nodes(t *testing.T) {
	p := NewMemoryProvider()
	p.SetNode("a", version.V2_16_0)
	p.SetNode("b", version.V2_17_0)
	p.RemoveNode("a")
	p.RemoveNode("unknown")

	vs, err := p.NodeVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []version.Version{version.V2_17_0}, vs)
}

func TestMemoryProvider_Snapshot(t *testing.T) {
	p := NewMemoryProvider()
	p.SetNode("a", version.V2_16_0)
	p.UpdateIndexSetting("vectors", "index.knn", true)

	doc := p.Snapshot()
	assert.Equal(t, version.V2_16_0, doc.Nodes["a"])
	assert.Equal(t, true, doc.Indices["vectors"].Settings["index.knn"])
}
