package clusterstate

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/knnspace/resource"
	"github.com/hupe1980/knnspace/version"
)

// Feature names a capability that requires every node to run a minimum version.
type Feature string

// Version-gated features.
const (
	FeatureIgnoreUnmapped              Feature = "ignore_unmapped"
	FeatureModelNodeAssignment         Feature = "model_node_assignment"
	FeatureModelMethodComponentContext Feature = "model_method_component_context"
	FeatureRadialSearch                Feature = "radial_search"
	FeatureMethodParameters            Feature = "method_parameters"
	FeatureModelVectorDataType         Feature = "model_vector_data_type"
	FeatureRescore                     Feature = "rescore"
	FeatureModeAndCompression          Feature = "mode_and_compression"
	FeatureTopLevelSpaceType           Feature = "top_level_space_type"
	FeatureModelVersion                Feature = "model_version"
	FeatureExpandNestedDocs            Feature = "expand_nested_docs"
	FeatureTopLevelEngine              Feature = "top_level_engine"
)

var minimalRequiredVersions = map[Feature]version.Version{
	FeatureIgnoreUnmapped:              version.V2_11_0,
	FeatureModelNodeAssignment:         version.V2_12_0,
	FeatureModelMethodComponentContext: version.V2_13_0,
	FeatureRadialSearch:                version.V2_14_0,
	FeatureMethodParameters:            version.V2_16_0,
	FeatureModelVectorDataType:         version.V2_16_0,
	FeatureRescore:                     version.V2_17_0,
	FeatureModeAndCompression:          version.V2_17_0,
	FeatureTopLevelSpaceType:           version.V2_17_0,
	FeatureModelVersion:                version.V2_17_0,
	FeatureExpandNestedDocs:            version.V2_19_0,
	FeatureTopLevelEngine:              version.V3_2_0,
}

// MinimalRequiredVersion returns the version every node must run for f.
func MinimalRequiredVersion(f Feature) (version.Version, bool) {
	v, ok := minimalRequiredVersions[f]
	return v, ok
}

// Features returns every known feature, sorted by name.
func Features() []Feature {
	return slices.Sorted(maps.Keys(minimalRequiredVersions))
}

// FallbackRecorder counts MinimumClusterVersion calls that fell back to the
// local version.
type FallbackRecorder interface {
	RecordVersionFallback()
}

// GateOption configures a VersionGate.
type GateOption func(*VersionGate)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *VersionGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithFallbackRecorder sets the metrics sink for fallbacks.
func WithFallbackRecorder(r FallbackRecorder) GateOption {
	return func(g *VersionGate) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithGateController bounds concurrent NodeVersions calls.
func WithGateController(rc *resource.Controller) GateOption {
	return func(g *VersionGate) {
		g.rc = rc
	}
}

// WithWarnInterval sets the minimum interval between fallback warnings.
func WithWarnInterval(d time.Duration) GateOption {
	return func(g *VersionGate) {
		g.warn.Interval = d
	}
}

type providerRef struct {
	Provider
}

type noopRecorder struct{}

func (noopRecorder) RecordVersionFallback() {}

// VersionGate reports the minimum software version across the cluster.
//
// Before Initialize, and whenever the provider fails or reports no nodes,
// MinimumClusterVersion returns the local running version. That fallback is
// optimistic: a mixed-version cluster whose provider is failing is treated
// as fully upgraded.
type VersionGate struct {
	local    version.Version
	provider atomic.Pointer[providerRef]
	rc       *resource.Controller
	logger   *slog.Logger
	recorder FallbackRecorder
	warn     rate.Sometimes
}

// NewVersionGate creates an uninitialized gate for a process running local.
func NewVersionGate(local version.Version, opts ...GateOption) *VersionGate {
	g := &VersionGate{
		local:    local,
		logger:   slog.New(slog.DiscardHandler),
		recorder: noopRecorder{},
		warn:     rate.Sometimes{First: 1, Interval: time.Minute},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize sets the provider. Later calls replace it. A nil provider is ignored.
func (g *VersionGate) Initialize(p Provider) {
	if p == nil {
		return
	}
	g.provider.Store(&providerRef{p})
}

// IsInitialized reports whether a provider has been set.
func (g *VersionGate) IsInitialized() bool {
	return g.provider.Load() != nil
}

// LocalVersion returns the version of this process.
func (g *VersionGate) LocalVersion() version.Version {
	return g.local
}

// MinimumClusterVersion returns the lowest version any node runs.
func (g *VersionGate) MinimumClusterVersion(ctx context.Context) version.Version {
	ref := g.provider.Load()
	if ref == nil {
		g.fallback(ctx, "gate not initialized", nil)
		return g.local
	}

	versions, err := resource.Do(ctx, g.rc, ref.NodeVersions)
	if err != nil {
		g.fallback(ctx, "node versions unavailable", err)
		return g.local
	}

	minimum, ok := version.Min(versions)
	if !ok {
		g.fallback(ctx, "cluster reports no nodes", nil)
		return g.local
	}
	return minimum
}

// IsOnOrAfter reports whether every node runs at least the minimal version of f.
// Unknown features are never enabled.
func (g *VersionGate) IsOnOrAfter(ctx context.Context, f Feature) bool {
	required, ok := minimalRequiredVersions[f]
	if !ok {
		return false
	}
	return g.MinimumClusterVersion(ctx).OnOrAfter(required)
}

func (g *VersionGate) fallback(ctx context.Context, reason string, err error) {
	g.recorder.RecordVersionFallback()
	g.warn.Do(func() {
		attrs := []any{"reason", reason, "local_version", g.local.String()}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		g.logger.WarnContext(ctx, "using local version as minimum cluster version", attrs...)
	})
}
