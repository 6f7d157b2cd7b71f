package docvalues

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/knnspace/model"
)

// NoMoreDocs is returned by Advance when the iterator is exhausted.
const NoMoreDocs = math.MaxInt32

// DocIterator walks the documents that have a value, in increasing order.
type DocIterator interface {
	// DocID returns the current document, -1 before the first Advance and
	// NoMoreDocs once exhausted.
	DocID() int
	// Advance moves to the first document at or after target.
	Advance(target int) (int, error)
}

// BinaryValues yields encoded vectors.
type BinaryValues interface {
	DocIterator
	BinaryValue() ([]byte, error)
}

// FloatValues yields float vectors.
type FloatValues interface {
	DocIterator
	FloatVectorValue() ([]float32, error)
}

// ByteValues yields byte or packed binary vectors.
type ByteValues interface {
	DocIterator
	ByteVectorValue() ([]byte, error)
}

// NumericValues yields a single integer per document.
type NumericValues interface {
	DocIterator
	LongValue() (int64, error)
}

// docSet iterates the documents of a roaring bitmap. Values are stored in
// document order, so the value of the current document sits at its rank.
type docSet struct {
	docs *roaring.Bitmap
	it   roaring.IntPeekable
	doc  int
}

// newDocSet rejects documents outside [0, NoMoreDocs).
func newDocSet[V any](values map[int]V) (docSet, []V, error) {
	docs := roaring.New()
	for doc := range values {
		if doc < 0 || doc >= NoMoreDocs {
			return docSet{}, nil, fmt.Errorf("%w: document id %d out of range [0, %d)", model.ErrIllegalState, doc, NoMoreDocs)
		}
		docs.Add(uint32(doc))
	}
	ordered := make([]V, 0, len(values))
	it := docs.Iterator()
	for it.HasNext() {
		ordered = append(ordered, values[int(it.Next())])
	}
	return docSet{docs: docs, it: docs.Iterator(), doc: -1}, ordered, nil
}

func (d *docSet) DocID() int { return d.doc }

func (d *docSet) Advance(target int) (int, error) {
	if d.doc == NoMoreDocs {
		return d.doc, nil
	}
	if target >= NoMoreDocs {
		d.doc = NoMoreDocs
		return d.doc, nil
	}
	d.it.AdvanceIfNeeded(uint32(max(target, 0)))
	if d.it.HasNext() {
		d.doc = int(d.it.Next())
	} else {
		d.doc = NoMoreDocs
	}
	return d.doc, nil
}

// ordinal returns the position of the current document among all documents.
func (d *docSet) ordinal() int {
	return int(d.docs.Rank(uint32(d.doc))) - 1
}

// BinaryDocValues is an in-memory BinaryValues.
type BinaryDocValues struct {
	docSet
	values [][]byte
}

// NewBinaryDocValues creates a source from encoded values keyed by document.
func NewBinaryDocValues(values map[int][]byte) (*BinaryDocValues, error) {
	ds, ordered, err := newDocSet(values)
	if err != nil {
		return nil, err
	}
	return &BinaryDocValues{docSet: ds, values: ordered}, nil
}

// BinaryValue returns the encoded value of the current document.
func (b *BinaryDocValues) BinaryValue() ([]byte, error) {
	return b.values[b.ordinal()], nil
}

// FloatVectorValues is an in-memory FloatValues.
type FloatVectorValues struct {
	docSet
	values [][]float32
}

// NewFloatVectorValues creates a source from float vectors keyed by document.
func NewFloatVectorValues(values map[int][]float32) (*FloatVectorValues, error) {
	ds, ordered, err := newDocSet(values)
	if err != nil {
		return nil, err
	}
	return &FloatVectorValues{docSet: ds, values: ordered}, nil
}

// FloatVectorValue returns a copy of the current document's vector.
func (f *FloatVectorValues) FloatVectorValue() ([]float32, error) {
	return slices.Clone(f.values[f.ordinal()]), nil
}

// ByteVectorValues is an in-memory ByteValues.
type ByteVectorValues struct {
	docSet
	values [][]byte
}

// NewByteVectorValues creates a source from byte vectors keyed by document.
func NewByteVectorValues(values map[int][]byte) (*ByteVectorValues, error) {
	ds, ordered, err := newDocSet(values)
	if err != nil {
		return nil, err
	}
	return &ByteVectorValues{docSet: ds, values: ordered}, nil
}

// ByteVectorValue returns a copy of the current document's vector.
func (b *ByteVectorValues) ByteVectorValue() ([]byte, error) {
	return slices.Clone(b.values[b.ordinal()]), nil
}

// NumericDocValues is an in-memory NumericValues.
type NumericDocValues struct {
	docSet
	values []int64
}

// NewNumericDocValues creates a source from integers keyed by document.
func NewNumericDocValues(values map[int]int64) (*NumericDocValues, error) {
	ds, ordered, err := newDocSet(values)
	if err != nil {
		return nil, err
	}
	return &NumericDocValues{docSet: ds, values: ordered}, nil
}

// LongValue returns the current document's value.
func (n *NumericDocValues) LongValue() (int64, error) {
	return n.values[n.ordinal()], nil
}

type emptyIterator struct {
	doc int
}

// Empty returns an iterator without documents.
func Empty() DocIterator {
	return &emptyIterator{doc: -1}
}

func (e *emptyIterator) DocID() int { return e.doc }

func (e *emptyIterator) Advance(int) (int, error) {
	e.doc = NoMoreDocs
	return e.doc, nil
}
