package clusterstate

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/hupe1980/knnspace/blobstore"
	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/internal/compress"
	"github.com/hupe1980/knnspace/resource"
	"github.com/hupe1980/knnspace/version"
)

// CurrentPointer is the name of the blob that points at the latest document.
const CurrentPointer = "CURRENT"

// ErrNoDocument is returned when no document has been published yet.
var ErrNoDocument = errors.New("no cluster state document published")

// Document is a published snapshot of cluster state.
type Document struct {
	Generation uint64                     `json:"generation" yaml:"generation"`
	Nodes      map[string]version.Version `json:"nodes" yaml:"nodes"`
	Indices    map[string]IndexState      `json:"indices" yaml:"indices"`
}

// IndexState is the published state of a single index.
type IndexState struct {
	Settings       Settings        `json:"settings" yaml:"settings"`
	CreatedVersion version.Version `json:"created_version" yaml:"created_version"`
}

// pointer is the content of the CURRENT blob.
type pointer struct {
	Generation uint64 `json:"generation"`
	Name       string `json:"name"`
	Codec      string `json:"codec"`
}

// DocumentOption configures a DocumentProvider.
type DocumentOption func(*DocumentProvider)

// WithCodec sets the codec used for published documents.
// Reads use the codec recorded in the CURRENT pointer.
func WithCodec(c codec.Codec) DocumentOption {
	return func(p *DocumentProvider) {
		if c != nil {
			p.codec = c
		}
	}
}

// WithCompression sets the block compression of published documents.
func WithCompression(t compress.Type) DocumentOption {
	return func(p *DocumentProvider) {
		p.compression = t
	}
}

// WithResourceController throttles document reads to the controller's IO limit.
func WithResourceController(rc *resource.Controller) DocumentOption {
	return func(p *DocumentProvider) {
		p.rc = rc
	}
}

// DocumentProvider is a Provider backed by documents in a BlobStore.
// Every call reads the CURRENT pointer and the document it names.
type DocumentProvider struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	compression compress.Type
	rc          *resource.Controller
}

var _ Provider = (*DocumentProvider)(nil)

// NewDocumentProvider creates a DocumentProvider over store.
func NewDocumentProvider(store blobstore.BlobStore, opts ...DocumentOption) *DocumentProvider {
	p := &DocumentProvider{
		store:       store,
		codec:       codec.Default,
		compression: compress.ZSTD,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IndexSettings implements Provider.
func (p *DocumentProvider) IndexSettings(ctx context.Context, index string) (Settings, error) {
	doc, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	st, ok := doc.Indices[index]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	return maps.Clone(st.Settings), nil
}

// NodeVersions implements Provider. An unpublished store has no nodes.
func (p *DocumentProvider) NodeVersions(ctx context.Context) ([]version.Version, error) {
	doc, err := p.Load(ctx)
	if errors.Is(err, ErrNoDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]version.Version, 0, len(doc.Nodes))
	for _, v := range doc.Nodes {
		out = append(out, v)
	}
	return out, nil
}

// Load reads the latest published document.
func (p *DocumentProvider) Load(ctx context.Context) (*Document, error) {
	ptr, err := p.readPointer(ctx)
	if err != nil {
		return nil, err
	}

	c, ok := codec.ByName(ptr.Codec)
	if !ok {
		return nil, fmt.Errorf("document %s: unknown codec %q", ptr.Name, ptr.Codec)
	}

	env, err := p.read(ctx, ptr.Name)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", ptr.Name, err)
	}
	data, err := compress.Decode(env)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", ptr.Name, err)
	}

	var doc Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", ptr.Name, err)
	}
	doc.Generation = ptr.Generation
	return &doc, nil
}

// Publish writes doc as the next generation and moves CURRENT to it.
// The generation of doc is set to the published generation.
//
// Stores implementing blobstore.Committer move CURRENT conditionally: when
// another publisher took the generation first, Publish removes its document
// and returns an error matching blobstore.ErrConflict. Other stores replace
// CURRENT unconditionally and need a single publisher.
func (p *DocumentProvider) Publish(ctx context.Context, doc *Document) error {
	var gen uint64 = 1
	prev, err := p.readPointer(ctx)
	switch {
	case err == nil:
		gen = prev.Generation + 1
	case !errors.Is(err, ErrNoDocument):
		return err
	}

	next := *doc
	next.Generation = gen
	data, err := p.codec.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	env, err := compress.Encode(data, p.compression)
	if err != nil {
		return err
	}

	// Racing publishers of one generation must not overwrite each other's document.
	name := documentName(gen, uuid.NewString())
	if err := p.store.Put(ctx, name, env); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}

	ptr, err := codec.JSON{}.Marshal(pointer{Generation: gen, Name: name, Codec: p.codec.Name()})
	if err != nil {
		return err
	}
	if err := p.movePointer(ctx, gen, ptr); err != nil {
		if errors.Is(err, blobstore.ErrConflict) {
			_ = p.store.Delete(ctx, name)
			return fmt.Errorf("publish generation %d: %w", gen, err)
		}
		return fmt.Errorf("write %s: %w", CurrentPointer, err)
	}

	doc.Generation = gen
	return nil
}

func (p *DocumentProvider) movePointer(ctx context.Context, gen uint64, ptr []byte) error {
	if c, ok := p.store.(blobstore.Committer); ok {
		return c.Commit(ctx, CurrentPointer, gen, ptr)
	}
	return p.store.Put(ctx, CurrentPointer, ptr)
}

func (p *DocumentProvider) readPointer(ctx context.Context) (pointer, error) {
	raw, err := p.read(ctx, CurrentPointer)
	if errors.Is(err, blobstore.ErrNotFound) {
		return pointer{}, ErrNoDocument
	}
	if err != nil {
		return pointer{}, fmt.Errorf("read %s: %w", CurrentPointer, err)
	}

	var ptr pointer
	if err := (codec.JSON{}).Unmarshal(raw, &ptr); err != nil {
		return pointer{}, fmt.Errorf("decode %s: %w", CurrentPointer, err)
	}
	if ptr.Name == "" {
		return pointer{}, fmt.Errorf("%s does not name a document", CurrentPointer)
	}
	return ptr, nil
}

func (p *DocumentProvider) read(ctx context.Context, name string) ([]byte, error) {
	b, err := p.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return resource.ReadAll(ctx, rc, p.rc)
}

func documentName(gen uint64, id string) string {
	return fmt.Sprintf("state-%020d-%s.doc", gen, id)
}
