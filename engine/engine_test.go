package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
	"github.com/hupe1980/knnspace/version"
)

func TestParse(t *testing.T) {
	for _, e := range All {
		got, err := Parse(e.Name())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	got, err := Parse("FAISS")
	require.NoError(t, err)
	assert.Equal(t, Faiss, got)

	_, err = Parse("annoy")
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestSupports(t *testing.T) {
	tests := []struct {
		engine Engine
		space  space.SpaceType
		dt     model.VectorDataType
		want   bool
	}{
		{NMSLIB, space.L1, model.Float, true},
		{NMSLIB, space.LInf, model.Float, true},
		{NMSLIB, space.L2, model.Byte, false},
		{NMSLIB, space.Hamming, model.Binary, false},
		{Faiss, space.CosineSimil, model.Float, true},
		{Faiss, space.L1, model.Float, false},
		{Faiss, space.InnerProduct, model.Byte, true},
		{Faiss, space.Hamming, model.Binary, true},
		{Faiss, space.L2, model.Binary, false},
		{Lucene, space.CosineSimil, model.Byte, true},
		{Lucene, space.Hamming, model.Binary, false},
		{Lucene, space.LInf, model.Float, false},
		{Undefined, space.L2, model.Float, false},
	}

	for _, tt := range tests {
		t.Run(tt.engine.Name()+"/"+tt.space.Name()+"/"+tt.dt.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Supports(tt.engine, tt.space, tt.dt))
		})
	}
}

func TestSupportedCombinationsAreApplicable(t *testing.T) {
	for _, e := range All {
		d, ok := Lookup(e)
		require.True(t, ok)
		for _, dt := range model.DataTypes {
			for _, s := range d.SpaceTypes(dt) {
				assert.True(t, s.IsApplicable(dt), "%s declares %s for %s", e, s, dt)
			}
		}
	}
}

func TestNativeParamName(t *testing.T) {
	tests := []struct {
		engine  Engine
		logical string
		native  string
		ok      bool
	}{
		{NMSLIB, ParamEFSearch, "efSearch", true},
		{NMSLIB, ParamEFConstruction, "efConstruction", true},
		{NMSLIB, ParamM, "M", true},
		{NMSLIB, ParamNList, "", false},
		{Faiss, ParamEFSearch, "ef_search", true},
		{Faiss, ParamNProbes, "nprobes", true},
		{Lucene, ParamM, "max_connections", true},
		{Lucene, ParamEFConstruction, "beam_width", true},
		{Lucene, ParamNProbes, "", false},
		{Undefined, ParamM, "", false},
	}

	for _, tt := range tests {
		native, ok := NativeParamName(tt.engine, tt.logical)
		assert.Equal(t, tt.ok, ok, "%s/%s", tt.engine, tt.logical)
		assert.Equal(t, tt.native, native)
	}
}

func TestDefaultTuning(t *testing.T) {
	tuning := DefaultTuning(NMSLIB)
	assert.Equal(t, map[string]int{ParamM: 16, ParamEFConstruction: 100, ParamEFSearch: 100}, tuning)

	// Callers own the returned map.
	tuning[ParamEFSearch] = 1
	assert.Equal(t, 100, DefaultTuning(NMSLIB)[ParamEFSearch])

	assert.Equal(t, 4, DefaultTuning(Faiss)[ParamNList])
	assert.Empty(t, DefaultTuning(Undefined))
	assert.Equal(t, []string{ParamEFConstruction, ParamEFSearch, ParamM, ParamNList, ParamNProbes}, ParameterNames(Faiss))
}

func TestTunables(t *testing.T) {
	d, _ := Lookup(NMSLIB)
	load := d.LoadTunables()
	require.Len(t, load, 1)
	assert.Equal(t, SettingEFSearch, load[0].Setting)
	assert.Empty(t, d.QueryParameters())

	d, _ = Lookup(Faiss)
	assert.Empty(t, d.LoadTunables())
	assert.Len(t, d.QueryParameters(), 2)

	d, _ = Lookup(Lucene)
	assert.Empty(t, d.LoadTunables())
	assert.Len(t, d.QueryParameters(), 1)
}

func TestIsRestricted(t *testing.T) {
	assert.False(t, IsRestricted(NMSLIB, version.V2_19_0))
	assert.True(t, IsRestricted(NMSLIB, version.V3_0_0))
	assert.False(t, IsRestricted(Faiss, version.V3_2_0))
	assert.True(t, IsRestricted(Undefined, version.V1_0_0))
}

func TestNormalizeDistance(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
		space  space.SpaceType
		raw    float32
		want   float32
	}{
		{"nmslib l2", NMSLIB, space.L2, 4, 4},
		{"nmslib negdotprod", NMSLIB, space.InnerProduct, -3, -3},
		{"faiss l2", Faiss, space.L2, 4, 4},
		{"faiss cosine similarity", Faiss, space.CosineSimil, 0.25, 0.75},
		{"faiss inner product", Faiss, space.InnerProduct, 6.5, -6.5},
		{"faiss hamming", Faiss, space.Hamming, 7, 7},
		{"lucene l2 score", Lucene, space.L2, 0.2, 4},
		{"lucene cosine score", Lucene, space.CosineSimil, 0.75, 0.5},
		{"lucene inner product score", Lucene, space.InnerProduct, 7.5, -6.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDistance(tt.engine, tt.space, tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}

	_, err := NormalizeDistance(Undefined, space.L2, 1)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestRawFromDistanceInvertsNormalize(t *testing.T) {
	for _, e := range All {
		for _, dt := range model.DataTypes {
			for _, s := range space.All {
				if !Supports(e, s, dt) {
					continue
				}
				for _, d := range []float32{0, 0.5, 1.5, 4} {
					raw, err := RawFromDistance(e, s, d)
					require.NoError(t, err)
					got, err := NormalizeDistance(e, s, raw)
					require.NoError(t, err)
					assert.InDelta(t, d, got, 1e-5, "%s %s d=%v", e, s, d)
				}
			}
		}
	}

	_, err := RawFromDistance(Undefined, space.L2, 1)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestScoreIsConsistentAcrossEngines(t *testing.T) {
	// Same logical result reported in each engine's own convention.
	faiss, err := Score(Faiss, space.InnerProduct, 6.5)
	require.NoError(t, err)
	nmslib, err := Score(NMSLIB, space.InnerProduct, -6.5)
	require.NoError(t, err)
	lucene, err := Score(Lucene, space.InnerProduct, 7.5)
	require.NoError(t, err)

	assert.InDelta(t, 7.5, faiss, 1e-6)
	assert.InDelta(t, faiss, nmslib, 1e-6)
	assert.InDelta(t, faiss, lucene, 1e-6)
}

func TestValidateParameters(t *testing.T) {
	require.NoError(t, ValidateParameters(Faiss, map[string]any{ParamM: 32, ParamNList: float64(8)}))
	require.NoError(t, ValidateParameters(Lucene, map[string]any{ParamEFConstruction: json.Number("512")}))

	assert.ErrorIs(t, ValidateParameters(Lucene, map[string]any{ParamNList: 8}), model.ErrConfiguration)
	assert.ErrorIs(t, ValidateParameters(Faiss, map[string]any{ParamM: -1}), model.ErrConfiguration)
	assert.ErrorIs(t, ValidateParameters(Faiss, map[string]any{ParamM: 1.5}), model.ErrConfiguration)
	assert.ErrorIs(t, ValidateParameters(Undefined, nil), model.ErrConfiguration)
}

func TestIntValue(t *testing.T) {
	for _, v := range []any{413, int64(413), int32(413), uint64(413), float64(413), "413", json.Number("413")} {
		got, ok := IntValue(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 413, got)
	}
	_, ok := IntValue(true)
	assert.False(t, ok)
	_, ok = IntValue("x")
	assert.False(t, ok)
}

func TestIntValue_OutOfRangeFloats(t *testing.T) {
	for _, v := range []float64{1e300, -1e300, math.Inf(1), math.Inf(-1), math.NaN(), float64(math.MaxInt), 0x1p63} {
		_, ok := IntValue(v)
		assert.False(t, ok, "%v", v)
	}

	got, ok := IntValue(float64(-(1 << 30)))
	assert.True(t, ok)
	assert.Equal(t, -(1 << 30), got)

	// A huge ef_search setting is rejected instead of wrapping.
	assert.ErrorIs(t, ValidateParameters(Faiss, map[string]any{ParamEFSearch: 1e300}), model.ErrConfiguration)
}
