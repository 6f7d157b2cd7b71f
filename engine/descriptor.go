package engine

import (
	"maps"
	"slices"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
	"github.com/hupe1980/knnspace/version"
)

// Logical parameter names shared by all engines.
const (
	ParamM              = "m"
	ParamEFConstruction = "ef_construction"
	ParamEFSearch       = "ef_search"
	ParamNList          = "nlist"
	ParamNProbes        = "nprobes"
)

// SettingEFSearch is the dynamic index setting that overrides ef_search.
const SettingEFSearch = "index.knn.algo_param.ef_search"

// MaxDimension is the largest dimension any engine accepts.
const MaxDimension = 16000

// Parameter describes one tunable of an engine.
type Parameter struct {
	// Name is the logical, engine-independent name.
	Name string
	// Native is the name the backend expects.
	Native string
	// Default is the compiled-in default value.
	Default int
	// Setting is the index setting that overrides the default at load time.
	// Empty if the parameter is not load-time tunable.
	Setting string
	// Since is the first cluster version that understands the parameter.
	Since version.Version
}

// RawConvention describes what a backend reports as a search result "distance".
type RawConvention uint8

const (
	// CanonicalDistance results are already the space type's distance.
	CanonicalDistance RawConvention = iota
	// Similarity results are cosine similarity or raw dot product.
	Similarity
	// HostScore results are already transformed into host engine scores.
	HostScore
)

// Descriptor is the immutable capability record of an engine.
type Descriptor struct {
	Engine         Engine
	Deprecated     bool
	RestrictedFrom version.Version
	MaxDimension   int
	Convention     RawConvention

	support      map[model.VectorDataType][]space.SpaceType
	params       map[string]Parameter
	loadTunables []string
	queryParams  []string
}

// SpaceTypes returns the metrics supported for dt.
func (d *Descriptor) SpaceTypes(dt model.VectorDataType) []space.SpaceType {
	return slices.Clone(d.support[dt])
}

// Parameter returns the tunable with the given logical name.
func (d *Descriptor) Parameter(logical string) (Parameter, bool) {
	p, ok := d.params[logical]
	return p, ok
}

// LoadTunables returns the parameters forwarded at index load time.
func (d *Descriptor) LoadTunables() []Parameter {
	out := make([]Parameter, 0, len(d.loadTunables))
	for _, n := range d.loadTunables {
		out = append(out, d.params[n])
	}
	return out
}

// QueryParameters returns the parameters accepted per query.
func (d *Descriptor) QueryParameters() []Parameter {
	out := make([]Parameter, 0, len(d.queryParams))
	for _, n := range d.queryParams {
		out = append(out, d.params[n])
	}
	return out
}

var faissAndLucene = []space.SpaceType{space.L2, space.CosineSimil, space.InnerProduct}

var descriptors = map[Engine]*Descriptor{
	NMSLIB: {
		Engine:         NMSLIB,
		Deprecated:     true,
		RestrictedFrom: version.V3_0_0,
		MaxDimension:   MaxDimension,
		Convention:     CanonicalDistance,
		support: map[model.VectorDataType][]space.SpaceType{
			model.Float: {space.L2, space.L1, space.LInf, space.CosineSimil, space.InnerProduct},
		},
		params: map[string]Parameter{
			ParamM:              {Name: ParamM, Native: "M", Default: 16},
			ParamEFConstruction: {Name: ParamEFConstruction, Native: "efConstruction", Default: 100},
			ParamEFSearch:       {Name: ParamEFSearch, Native: "efSearch", Default: 100, Setting: SettingEFSearch, Since: version.V1_0_0},
		},
		loadTunables: []string{ParamEFSearch},
	},
	Faiss: {
		Engine:       Faiss,
		MaxDimension: MaxDimension,
		Convention:   Similarity,
		support: map[model.VectorDataType][]space.SpaceType{
			model.Float:  faissAndLucene,
			model.Byte:   faissAndLucene,
			model.Binary: {space.Hamming},
		},
		params: map[string]Parameter{
			ParamM:              {Name: ParamM, Native: "m", Default: 16},
			ParamEFConstruction: {Name: ParamEFConstruction, Native: "ef_construction", Default: 100},
			ParamEFSearch:       {Name: ParamEFSearch, Native: "ef_search", Default: 100, Since: version.V2_16_0},
			ParamNList:          {Name: ParamNList, Native: "nlist", Default: 4},
			ParamNProbes:        {Name: ParamNProbes, Native: "nprobes", Default: 1, Since: version.V2_16_0},
		},
		queryParams: []string{ParamEFSearch, ParamNProbes},
	},
	Lucene: {
		Engine:       Lucene,
		MaxDimension: MaxDimension,
		Convention:   HostScore,
		support: map[model.VectorDataType][]space.SpaceType{
			model.Float: faissAndLucene,
			model.Byte:  faissAndLucene,
		},
		params: map[string]Parameter{
			ParamM:              {Name: ParamM, Native: "max_connections", Default: 16},
			ParamEFConstruction: {Name: ParamEFConstruction, Native: "beam_width", Default: 100},
			ParamEFSearch:       {Name: ParamEFSearch, Native: "ef_search", Default: 100, Since: version.V2_16_0},
		},
		queryParams: []string{ParamEFSearch},
	},
}

// Lookup returns the descriptor of e.
func Lookup(e Engine) (*Descriptor, bool) {
	d, ok := descriptors[e]
	return d, ok
}

// Supports reports whether e accepts metric s on fields of type dt.
func Supports(e Engine, s space.SpaceType, dt model.VectorDataType) bool {
	d, ok := descriptors[e]
	if !ok {
		return false
	}
	return slices.Contains(d.support[dt], s)
}

// NativeParamName maps a logical parameter name to the backend's own name.
func NativeParamName(e Engine, logical string) (string, bool) {
	d, ok := descriptors[e]
	if !ok {
		return "", false
	}
	p, ok := d.params[logical]
	if !ok {
		return "", false
	}
	return p.Native, true
}

// DefaultTuning returns a fresh map of logical parameter names to defaults.
func DefaultTuning(e Engine) map[string]int {
	d, ok := descriptors[e]
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(d.params))
	for n, p := range d.params {
		out[n] = p.Default
	}
	return out
}

// ParameterNames returns the sorted logical parameter names e recognizes.
func ParameterNames(e Engine) []string {
	d, ok := descriptors[e]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(d.params))
}

// IsRestricted reports whether new indices of e may not be created on a
// cluster whose index-created version is created.
func IsRestricted(e Engine, created version.Version) bool {
	d, ok := descriptors[e]
	if !ok {
		return true
	}
	return !d.RestrictedFrom.IsZero() && created.OnOrAfter(d.RestrictedFrom)
}
