package clusterstate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/hupe1980/knnspace/version"
)

// ErrIndexNotFound is returned when the provider has no such index.
var ErrIndexNotFound = errors.New("index not found")

// Settings are the raw settings of an index, keyed by full setting name
// (e.g. "index.knn.algo_param.ef_search").
type Settings map[string]any

// Provider exposes live cluster state.
// Implementations must be safe for concurrent use.
type Provider interface {
	// IndexSettings returns the current settings of index.
	IndexSettings(ctx context.Context, index string) (Settings, error)
	// NodeVersions returns the software version of every node in the cluster.
	NodeVersions(ctx context.Context) ([]version.Version, error)
}

// MemoryProvider is an in-memory Provider.
type MemoryProvider struct {
	mu      sync.RWMutex
	nodes   map[string]version.Version
	indices map[string]Settings
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		nodes:   make(map[string]version.Version),
		indices: make(map[string]Settings),
	}
}

// SetNode adds or updates a node.
func (p *MemoryProvider) SetNode(id string, v version.Version) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes[id] = v
}

// RemoveNode removes a node. Removing an unknown node is a no-op.
func (p *MemoryProvider) RemoveNode(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.nodes, id)
}

// SetIndexSettings replaces the settings of index.
func (p *MemoryProvider) SetIndexSettings(index string, s Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indices[index] = maps.Clone(s)
}

// UpdateIndexSetting sets a single setting, creating the index if needed.
func (p *MemoryProvider) UpdateIndexSetting(index, key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.indices[index]
	if !ok {
		s = make(Settings)
		p.indices[index] = s
	}
	s[key] = value
}

// DeleteIndex removes an index.
func (p *MemoryProvider) DeleteIndex(index string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.indices, index)
}

// IndexSettings implements Provider. The returned map is a copy.
func (p *MemoryProvider) IndexSettings(_ context.Context, index string) (Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.indices[index]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	return maps.Clone(s), nil
}

// NodeVersions implements Provider.
func (p *MemoryProvider) NodeVersions(_ context.Context) ([]version.Version, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]version.Version, 0, len(p.nodes))
	for _, v := range p.nodes {
		out = append(out, v)
	}
	return out, nil
}

// Snapshot returns the current state as a Document.
func (p *MemoryProvider) Snapshot() *Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	doc := &Document{
		Nodes:   maps.Clone(p.nodes),
		Indices: make(map[string]IndexState, len(p.indices)),
	}
	for name, s := range p.indices {
		doc.Indices[name] = IndexState{Settings: maps.Clone(s)}
	}
	return doc
}
