package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
	"github.com/hupe1980/knnspace/version"
)

func TestParseMethodJSON(t *testing.T) {
	data := []byte(`{
  "type": "knn_vector",
  "dimension": 128,
  "data_type": "float",
  "space_type": "innerproduct",
  "engine": "faiss",
  "parameters": {"m": 24, "ef_construction": 128}
}`)

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}, codec.YAML{}, nil} {
		cfg, err := ParseMethodJSON(data, c)
		require.NoError(t, err)
		assert.Equal(t, engine.Faiss, cfg.Engine)
		assert.Equal(t, space.InnerProduct, cfg.SpaceType)
		assert.Equal(t, 128, cfg.Dimension)
		assert.Equal(t, model.Float, cfg.DataType)
		require.NoError(t, cfg.Validate(version.V2_17_0))
		assert.Equal(t, map[string]any{"m": cfg.Parameters["m"], "ef_construction": cfg.Parameters["ef_construction"]}, cfg.NativeParameters())
	}
}

func TestParseMethod_CamelCaseSpaceType(t *testing.T) {
	cfg, err := ParseMethod(map[string]any{"spaceType": "l2", "dimension": 4})
	require.NoError(t, err)
	assert.Equal(t, space.L2, cfg.SpaceType)

	_, err = ParseMethod(map[string]any{"spaceType": "l2", "space_type": "l1"})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestParseMethod_Errors(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
	}{
		{"unknown engine", map[string]any{"engine": "annoy"}},
		{"unknown space", map[string]any{"space_type": "manhattan"}},
		{"undefined space", map[string]any{"space_type": "undefined"}},
		{"bad dimension", map[string]any{"dimension": "wide"}},
		{"bad data type", map[string]any{"data_type": "half"}},
		{"bad parameters", map[string]any{"parameters": []any{1}}},
		{"engine not string", map[string]any{"engine": 3}},
		{"wrong field type", map[string]any{"type": "dense_vector"}},
		{"unknown key", map[string]any{"similarity": "cosine"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMethod(tt.m)
			assert.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg := MethodConfig{Dimension: 16}.ResolveDefaults()
	assert.Equal(t, engine.Faiss, cfg.Engine)
	assert.Equal(t, space.L2, cfg.SpaceType)

	bin := MethodConfig{Dimension: 16, DataType: model.Binary}.ResolveDefaults()
	assert.Equal(t, space.Hamming, bin.SpaceType)
	require.NoError(t, bin.Validate(version.V2_17_0))

	kept := MethodConfig{Engine: engine.Lucene, SpaceType: space.CosineSimil}.ResolveDefaults()
	assert.Equal(t, engine.Lucene, kept.Engine)
	assert.Equal(t, space.CosineSimil, kept.SpaceType)
}

func TestValidate(t *testing.T) {
	base := MethodConfig{Engine: engine.Faiss, SpaceType: space.L2, Dimension: 8, DataType: model.Float}

	tests := []struct {
		name    string
		mutate  func(*MethodConfig)
		created version.Version
		wantErr bool
	}{
		{"valid", func(*MethodConfig) {}, version.V2_17_0, false},
		{"zero dimension", func(c *MethodConfig) { c.Dimension = 0 }, version.V2_17_0, true},
		{"too large", func(c *MethodConfig) { c.Dimension = engine.MaxDimension + 1 }, version.V2_17_0, true},
		{"max dimension", func(c *MethodConfig) { c.Dimension = engine.MaxDimension }, version.V2_17_0, false},
		{"binary not multiple of 8", func(c *MethodConfig) {
			c.DataType, c.SpaceType, c.Dimension = model.Binary, space.Hamming, 12
		}, version.V2_17_0, true},
		{"hamming on float", func(c *MethodConfig) { c.SpaceType = space.Hamming }, version.V2_17_0, true},
		{"l1 on faiss", func(c *MethodConfig) { c.SpaceType = space.L1 }, version.V2_17_0, true},
		{"nmslib before 3.0", func(c *MethodConfig) { c.Engine, c.SpaceType = engine.NMSLIB, space.L1 }, version.V2_19_0, false},
		{"nmslib on 3.0", func(c *MethodConfig) { c.Engine = engine.NMSLIB }, version.V3_0_0, true},
		{"unresolved engine", func(c *MethodConfig) { c.Engine = engine.Undefined }, version.V2_17_0, true},
		{"bad parameter", func(c *MethodConfig) { c.Parameters = map[string]any{"m": 0} }, version.V2_17_0, true},
		{"unknown parameter", func(c *MethodConfig) { c.Parameters = map[string]any{"nlist": 4}; c.Engine = engine.Lucene }, version.V2_17_0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate(tt.created)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToMapRoundTrip(t *testing.T) {
	cfg := MethodConfig{
		Engine:     engine.Lucene,
		SpaceType:  space.CosineSimil,
		Dimension:  3,
		DataType:   model.Byte,
		Parameters: map[string]any{"m": 8},
	}
	got, err := ParseMethod(cfg.ToMap())
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, map[string]any{"max_connections": 8}, got.NativeParameters())
}

func TestIsKNNIndex(t *testing.T) {
	assert.True(t, IsKNNIndex(map[string]any{"index.knn": true}))
	assert.True(t, IsKNNIndex(map[string]any{"index.knn": "TRUE"}))
	assert.False(t, IsKNNIndex(map[string]any{"index.knn": "false"}))
	assert.False(t, IsKNNIndex(map[string]any{}))
	assert.False(t, IsKNNIndex(nil))
}
