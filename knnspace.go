package knnspace

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/hupe1980/knnspace/backend"
	"github.com/hupe1980/knnspace/clusterstate"
	"github.com/hupe1980/knnspace/docvalues"
	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/mapping"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/params"
	"github.com/hupe1980/knnspace/space"
	"github.com/hupe1980/knnspace/version"
)

// Core ties the version gate, the parameter resolver and result scoring
// together. It is safe for concurrent use.
type Core struct {
	opts     options
	provider clusterstate.Provider
	gate     *clusterstate.VersionGate
	resolver *params.Resolver
}

// New creates a Core reading cluster state from provider.
// A nil provider leaves the version gate uninitialized.
func New(provider clusterstate.Provider, optFns ...Option) *Core {
	o := applyOptions(optFns)

	gate := clusterstate.NewVersionGate(o.localVersion,
		clusterstate.WithLogger(o.logger.Logger),
		clusterstate.WithFallbackRecorder(o.metricsCollector),
		clusterstate.WithGateController(o.controller),
	)
	gate.Initialize(provider)

	resolver := params.NewResolver(gate, provider,
		params.WithLogger(o.logger.Logger),
		params.WithRecorder(o.metricsCollector),
		params.WithResourceController(o.controller),
		params.WithConcurrency(o.concurrency),
	)

	return &Core{
		opts:     o,
		provider: provider,
		gate:     gate,
		resolver: resolver,
	}
}

// Gate returns the cluster version gate.
func (c *Core) Gate() *clusterstate.VersionGate { return c.gate }

// Resolver returns the parameter resolver.
func (c *Core) Resolver() *params.Resolver { return c.resolver }

// MinimumClusterVersion returns the lowest version any node runs.
func (c *Core) MinimumClusterVersion(ctx context.Context) version.Version {
	return c.gate.MinimumClusterVersion(ctx)
}

// IsOnOrAfter reports whether every node supports f.
func (c *Core) IsOnOrAfter(ctx context.Context, f clusterstate.Feature) bool {
	return c.gate.IsOnOrAfter(ctx, f)
}

// ValidateNewField resolves the defaults of a field about to be created and
// validates it against the cluster's minimum version.
func (c *Core) ValidateNewField(ctx context.Context, m mapping.MethodConfig) (mapping.MethodConfig, error) {
	m = m.ResolveDefaults()
	if err := m.Validate(c.gate.MinimumClusterVersion(ctx)); err != nil {
		return mapping.MethodConfig{}, err
	}
	return m, nil
}

// ResolveLoadParameters returns the parameters used to load the native index
// of a field of index.
func (c *Core) ResolveLoadParameters(ctx context.Context, index string, m mapping.MethodConfig) (params.Parameters, error) {
	m = m.ResolveDefaults()
	p, err := c.resolver.ResolveLoadParameters(ctx, m.SpaceType, m.Engine, m.DataType, index)
	c.opts.logger.LogResolve(ctx, index, len(p), err)
	return p, err
}

// Result is a scored search hit.
type Result struct {
	Doc      int
	Score    float32
	Distance float32
}

// ScoreResults normalizes raw backend values reported by e and converts them
// to scores. Results are ordered by descending score, ties by document.
func (c *Core) ScoreResults(e engine.Engine, s space.SpaceType, raw []backend.RawResult) ([]Result, error) {
	start := time.Now()

	out := make([]Result, len(raw))
	for i, r := range raw {
		d, err := engine.NormalizeDistance(e, s, r.Value)
		if err != nil {
			return nil, err
		}
		score, err := s.Score(d)
		if err != nil {
			return nil, err
		}
		out[i] = Result{Doc: r.Doc, Score: score, Distance: d}
	}
	slices.SortStableFunc(out, func(a, b Result) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		return cmp.Compare(a.Doc, b.Doc)
	})

	c.opts.metricsCollector.RecordScore(len(out), time.Since(start))
	return out, nil
}

// SearchRequest describes a k-NN search against one segment's native index.
type SearchRequest struct {
	// Index is the index the field belongs to.
	Index string
	// Field is the field's method. Missing engine and space type are defaulted.
	Field mapping.MethodConfig
	// Blob is the native index built by the backend.
	Blob []byte
	// Query is the query vector. Its type must match the field's data type.
	Query model.Vector
	// K is the number of neighbors to return.
	K int
	// MethodParameters are per-query tunables by logical name.
	MethodParameters map[string]any
	// MinScore drops results scoring below it. Zero keeps everything.
	MinScore float32
}

// Search resolves parameters, runs the backend and scores its results.
func (c *Core) Search(ctx context.Context, b backend.Backend, req SearchRequest) (results []Result, err error) {
	start := time.Now()
	defer func() {
		c.opts.metricsCollector.RecordSearch(req.K, time.Since(start), err)
		c.opts.logger.LogSearch(ctx, req.Index, req.K, len(results), err)
	}()

	if req.K <= 0 {
		return nil, ErrInvalidK
	}
	m := req.Field.ResolveDefaults()

	if req.Query.Type != m.DataType {
		return nil, fmt.Errorf("%w: query is a %s vector, field holds %s vectors", ErrConfiguration, req.Query.Type, m.DataType)
	}
	if m.Dimension > 0 {
		if err := model.CheckDimensions(m.Dimension, req.Query.Dimension()); err != nil {
			return nil, err
		}
	}
	if err := m.SpaceType.ValidateVector(req.Query); err != nil {
		return nil, err
	}
	if req.MinScore > 0 && !c.gate.IsOnOrAfter(ctx, clusterstate.FeatureRadialSearch) {
		return nil, fmt.Errorf("%w: min score requires every node on version %s or later", ErrConfiguration, version.V2_14_0)
	}

	load, err := c.resolver.ResolveLoadParameters(ctx, m.SpaceType, m.Engine, m.DataType, req.Index)
	if err != nil {
		return nil, err
	}
	query, err := c.resolver.ResolveQueryParameters(ctx, m.SpaceType, m.Engine, m.DataType, req.MethodParameters)
	if err != nil {
		return nil, err
	}
	p := maps.Clone(load)
	maps.Copy(p, query)

	raw, err := b.Search(ctx, req.Blob, req.Query, req.K, p)
	if err != nil {
		return nil, fmt.Errorf("backend search: %w", err)
	}

	results, err = c.ScoreResults(m.Engine, m.SpaceType, raw)
	if err != nil {
		return nil, err
	}
	if req.MinScore > 0 {
		results = slices.DeleteFunc(results, func(r Result) bool { return r.Score < req.MinScore })
	}
	return results, nil
}

// DocValues creates the scripting accessor of field over src.
func (c *Core) DocValues(src docvalues.DocIterator, field string, dt model.VectorDataType) *docvalues.ScriptDocValues {
	return docvalues.New(src, field, dt)
}
