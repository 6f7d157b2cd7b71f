package params

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knnspace/clusterstate"
	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/resource"
	"github.com/hupe1980/knnspace/space"
)

// Keys the resolver always controls.
const (
	KeySpaceType = "spaceType"
	KeyDataType  = "data_type"
)

// Parameters are resolved backend parameters keyed by native name.
type Parameters map[string]any

// Recorder receives resolution metrics.
type Recorder interface {
	RecordResolve(duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordResolve(time.Duration, error) {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.metrics = rec
		}
	}
}

// WithResourceController bounds concurrent IndexSettings calls.
func WithResourceController(rc *resource.Controller) Option {
	return func(r *Resolver) {
		r.rc = rc
	}
}

// WithConcurrency limits how many fields ResolveFields resolves at once.
// Zero or negative means no limit.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = n
	}
}

// Resolver computes backend parameters from live cluster state.
// It is safe for concurrent use.
type Resolver struct {
	gate        *clusterstate.VersionGate
	provider    clusterstate.Provider
	rc          *resource.Controller
	logger      *slog.Logger
	metrics     Recorder
	concurrency int
}

// NewResolver creates a Resolver reading index settings from provider.
func NewResolver(gate *clusterstate.VersionGate, provider clusterstate.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		gate:     gate,
		provider: provider,
		logger:   slog.New(slog.DiscardHandler),
		metrics:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveLoadParameters returns the parameters used to load the native index
// of a field stored in index.
//
// The result always holds the space type. Load-time tunables are added when
// the index setting differs from the engine default and every node understands
// the tunable. The data type is added for non-float fields.
func (r *Resolver) ResolveLoadParameters(ctx context.Context, s space.SpaceType, e engine.Engine, dt model.VectorDataType, index string) (_ Parameters, err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordResolve(time.Since(start), err)
		if err != nil {
			r.logger.DebugContext(ctx, "resolve load parameters failed",
				"index", index, "engine", e.Name(), "space_type", s.Name(), "error", err)
		}
	}()

	desc, err := validate(s, e, dt)
	if err != nil {
		return nil, err
	}

	out := Parameters{KeySpaceType: s.Name()}

	if tunables := desc.LoadTunables(); len(tunables) > 0 {
		minimum := r.gate.MinimumClusterVersion(ctx)

		var settings clusterstate.Settings
		for _, t := range tunables {
			if minimum.Before(t.Since) {
				continue
			}
			if settings == nil {
				settings, err = r.indexSettings(ctx, index)
				if err != nil {
					return nil, err
				}
			}

			raw, ok := settings[t.Setting]
			if !ok {
				continue
			}
			v, ok := engine.IntValue(raw)
			if !ok {
				return nil, &ConfigurationError{Space: s, Engine: e, DataType: dt,
					Reason: fmt.Sprintf("setting %s must be an integer, got %v", t.Setting, raw)}
			}
			if v != t.Default {
				out[t.Native] = v
			}
		}
	}

	if dt != model.Float {
		out[KeyDataType] = dt.String()
	}

	r.logger.DebugContext(ctx, "resolved load parameters",
		"index", index, "engine", e.Name(), "space_type", s.Name(), "count", len(out))
	return out, nil
}

// ResolveQueryParameters maps per-query method parameters, given by logical
// name, to the backend's native names.
//
// Method parameters require every node on 2.16.0 or later. Names the engine
// does not accept at query time are dropped.
func (r *Resolver) ResolveQueryParameters(ctx context.Context, s space.SpaceType, e engine.Engine, dt model.VectorDataType, methodParams map[string]any) (_ Parameters, err error) {
	start := time.Now()
	defer func() { r.metrics.RecordResolve(time.Since(start), err) }()

	desc, err := validate(s, e, dt)
	if err != nil {
		return nil, err
	}

	out := Parameters{}
	if len(methodParams) == 0 {
		return out, nil
	}

	if !r.gate.IsOnOrAfter(ctx, clusterstate.FeatureMethodParameters) {
		return nil, &ConfigurationError{Space: s, Engine: e, DataType: dt,
			Reason: "method parameters require every node on version 2.16.0 or later"}
	}

	for _, p := range desc.QueryParameters() {
		raw, ok := methodParams[p.Name]
		if !ok {
			continue
		}
		v, ok := engine.IntValue(raw)
		if !ok || v <= 0 {
			return nil, &ConfigurationError{Space: s, Engine: e, DataType: dt,
				Reason: fmt.Sprintf("method parameter %s must be a positive integer, got %v", p.Name, raw)}
		}
		out[p.Native] = v
	}
	return out, nil
}

// FieldRequest identifies a field whose load parameters are needed.
type FieldRequest struct {
	Field    string
	Index    string
	Space    space.SpaceType
	Engine   engine.Engine
	DataType model.VectorDataType
}

// ResolveFields resolves the load parameters of many fields concurrently.
// Results are in request order. The first error cancels the rest.
func (r *Resolver) ResolveFields(ctx context.Context, reqs []FieldRequest) ([]Parameters, error) {
	out := make([]Parameters, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, req := range reqs {
		g.Go(func() error {
			p, err := r.ResolveLoadParameters(ctx, req.Space, req.Engine, req.DataType, req.Index)
			if err != nil {
				return fmt.Errorf("field %s: %w", req.Field, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resolver) indexSettings(ctx context.Context, index string) (clusterstate.Settings, error) {
	if r.provider == nil {
		return nil, fmt.Errorf("%w: no cluster state provider configured", model.ErrExternalProvider)
	}
	s, err := resource.Do(ctx, r.rc, func(ctx context.Context) (clusterstate.Settings, error) {
		return r.provider.IndexSettings(ctx, index)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: settings of index %s: %w", model.ErrExternalProvider, index, err)
	}
	return s, nil
}

func validate(s space.SpaceType, e engine.Engine, dt model.VectorDataType) (*engine.Descriptor, error) {
	if !s.IsApplicable(dt) {
		return nil, &ConfigurationError{Space: s, Engine: e, DataType: dt,
			Reason: "space type does not support the data type"}
	}
	desc, ok := engine.Lookup(e)
	if !ok || !engine.Supports(e, s, dt) {
		return nil, &ConfigurationError{Space: s, Engine: e, DataType: dt,
			Reason: "engine does not support the space type for the data type"}
	}
	return desc, nil
}
