package docvalues

import (
	"fmt"

	"github.com/hupe1980/knnspace/model"
)

// ScriptDocValues exposes the vector of the current document to scripts.
// It is not safe for concurrent use; each script execution owns one.
type ScriptDocValues struct {
	src      DocIterator
	field    string
	dataType model.VectorDataType
	lastDoc  int
	exists   bool
}

// New creates an accessor for field over src. A nil src behaves like Empty.
func New(src DocIterator, field string, dt model.VectorDataType) *ScriptDocValues {
	if src == nil {
		src = Empty()
	}
	return &ScriptDocValues{
		src:      src,
		field:    field,
		dataType: dt,
		lastDoc:  -1,
	}
}

// Field returns the field name.
func (s *ScriptDocValues) Field() string { return s.field }

// DataType returns the vector data type of the field.
func (s *ScriptDocValues) DataType() model.VectorDataType { return s.dataType }

// SetNextDocID positions the accessor on doc. Documents must be visited in
// non-decreasing order.
func (s *ScriptDocValues) SetNextDocID(doc int) error {
	if doc < 0 || doc >= NoMoreDocs {
		s.exists = false
		return fmt.Errorf("%w: document id %d for field [%s] out of range", model.ErrIllegalState, doc, s.field)
	}
	if doc < s.lastDoc {
		return fmt.Errorf("%w: documents for field [%s] requested out of order: %d after %d",
			model.ErrIllegalState, s.field, doc, s.lastDoc)
	}
	s.lastDoc = doc

	cur := s.src.DocID()
	if cur < doc {
		var err error
		cur, err = s.src.Advance(doc)
		if err != nil {
			s.exists = false
			return fmt.Errorf("advance field [%s] to document %d: %w", s.field, doc, err)
		}
	}
	s.exists = cur == doc
	return nil
}

// Size returns 1 if the current document has a vector, 0 otherwise.
func (s *ScriptDocValues) Size() int {
	if s.exists {
		return 1
	}
	return 0
}

// Value returns the vector of the current document.
func (s *ScriptDocValues) Value() (model.Vector, error) {
	if !s.exists {
		return model.Vector{}, fmt.Errorf("%w: a document doesn't have a value for field [%s]; "+
			"use doc['%s'].size() == 0 to check if a document is missing a field",
			model.ErrIllegalState, s.field, s.field)
	}

	switch src := s.src.(type) {
	case BinaryValues:
		raw, err := src.BinaryValue()
		if err != nil {
			return model.Vector{}, err
		}
		return Decode(raw, s.dataType)
	case FloatValues:
		if s.dataType != model.Float {
			return model.Vector{}, s.mismatch("float")
		}
		v, err := src.FloatVectorValue()
		if err != nil {
			return model.Vector{}, err
		}
		return model.FloatVector(v), nil
	case ByteValues:
		v, err := src.ByteVectorValue()
		if err != nil {
			return model.Vector{}, err
		}
		switch s.dataType {
		case model.Byte:
			return model.ByteVector(v), nil
		case model.Binary:
			return model.BinaryVector(v), nil
		default:
			return model.Vector{}, s.mismatch("byte")
		}
	default:
		return model.Vector{}, fmt.Errorf("%w: field [%s] does not hold vector doc values",
			model.ErrIllegalState, s.field)
	}
}

// FloatValue returns the current vector widened to float32.
func (s *ScriptDocValues) FloatValue() ([]float32, error) {
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	return v.AsFloat32(), nil
}

// Get is not supported; a vector field holds at most one value per document.
func (s *ScriptDocValues) Get(int) (model.Vector, error) {
	return model.Vector{}, fmt.Errorf("%w: knn vector does not support indexed access; use value instead",
		model.ErrUnsupportedOperation)
}

func (s *ScriptDocValues) mismatch(stored string) error {
	return fmt.Errorf("%w: field [%s] stores %s vectors but is declared as %s",
		model.ErrIllegalState, s.field, stored, s.dataType)
}
