// Package exact is a brute-force Backend. It reports raw values in the
// convention of the engine it stands in for, which makes it a reference for
// score normalization and a stand-in for tests and the CLI.
package exact

import (
	"context"
	"fmt"

	"github.com/hupe1980/knnspace/backend"
	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/docvalues"
	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/internal/compress"
	"github.com/hupe1980/knnspace/internal/queue"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/params"
	"github.com/hupe1980/knnspace/space"
)

// checkEvery is how many vectors are scanned between context checks.
const checkEvery = 1024

// index is the serialized form of a built blob.
type index struct {
	SpaceType string   `json:"space_type"`
	DataType  string   `json:"data_type"`
	Vectors   [][]byte `json:"vectors"`
}

// Backend scans every vector of a blob.
type Backend struct {
	engine engine.Engine
}

var _ backend.Backend = (*Backend)(nil)

// New creates a Backend that mimics e.
func New(e engine.Engine) (*Backend, error) {
	if _, ok := engine.Lookup(e); !ok {
		return nil, fmt.Errorf("%w: invalid engine %s", model.ErrConfiguration, e)
	}
	return &Backend{engine: e}, nil
}

// Build implements backend.Backend.
func (b *Backend) Build(ctx context.Context, vectors []model.Vector, p params.Parameters) ([]byte, error) {
	s, dt, err := b.fieldOf(p)
	if err != nil {
		return nil, err
	}

	idx := index{SpaceType: s.Name(), DataType: dt.String(), Vectors: make([][]byte, len(vectors))}
	for i, v := range vectors {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if v.Type != dt {
			return nil, fmt.Errorf("%w: vector %d is %s, field is %s", model.ErrConfiguration, i, v.Type, dt)
		}
		if err := s.ValidateVector(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		if idx.Vectors[i], err = docvalues.Encode(v); err != nil {
			return nil, err
		}
	}

	data, err := codec.Default.Marshal(idx)
	if err != nil {
		return nil, err
	}
	return compress.Encode(data, compress.ZSTD)
}

// Search implements backend.Backend.
func (b *Backend) Search(ctx context.Context, blob []byte, query model.Vector, k int, p params.Parameters) ([]backend.RawResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", model.ErrConfiguration, k)
	}
	s, dt, err := b.fieldOf(p)
	if err != nil {
		return nil, err
	}

	data, err := compress.Decode(blob)
	if err != nil {
		return nil, err
	}
	var idx index
	if err := codec.Default.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if idx.SpaceType != s.Name() || idx.DataType != dt.String() {
		return nil, fmt.Errorf("%w: index was built for %s/%s, query asks for %s/%s",
			model.ErrConfiguration, idx.SpaceType, idx.DataType, s, dt)
	}
	if query.Type != dt {
		return nil, fmt.Errorf("%w: query is %s, field is %s", model.ErrConfiguration, query.Type, dt)
	}

	top := queue.NewTopK(k)
	for doc, raw := range idx.Vectors {
		if doc%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		v, err := docvalues.Decode(raw, dt)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}
		d, err := distance(s, query, v)
		if err != nil {
			return nil, err
		}
		top.Offer(queue.Item{Doc: doc, Distance: d})
	}

	hits := top.Sorted()
	out := make([]backend.RawResult, len(hits))
	for i, h := range hits {
		raw, err := engine.RawFromDistance(b.engine, s, h.Distance)
		if err != nil {
			return nil, err
		}
		out[i] = backend.RawResult{Doc: h.Doc, Value: raw}
	}
	return out, nil
}

func (b *Backend) fieldOf(p params.Parameters) (space.SpaceType, model.VectorDataType, error) {
	name, _ := p[params.KeySpaceType].(string)
	s, err := space.Parse(name)
	if err != nil {
		return space.Undefined, 0, err
	}

	dt := model.Float
	if raw, ok := p[params.KeyDataType].(string); ok {
		if dt, err = model.ParseVectorDataType(raw); err != nil {
			return space.Undefined, 0, err
		}
	}

	if !engine.Supports(b.engine, s, dt) {
		return space.Undefined, 0, fmt.Errorf("%w: engine %s does not support %s for %s",
			model.ErrConfiguration, b.engine, s, dt)
	}
	return s, dt, nil
}

func distance(s space.SpaceType, u, v model.Vector) (float32, error) {
	if u.Type == model.Float {
		return s.Distance(u.Floats, v.Floats)
	}
	return s.DistanceBytes(u.Bytes, v.Bytes)
}
