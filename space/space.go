package space

import (
	"fmt"
	"strings"

	"github.com/hupe1980/knnspace/model"
)

// SpaceType is a named distance metric.
type SpaceType uint8

const (
	// Undefined is the zero value. It supports no data type.
	Undefined SpaceType = iota
	// L2 is the squared Euclidean distance.
	L2
	// CosineSimil is 1 minus cosine similarity, in [0, 2].
	CosineSimil
	// L1 is the Manhattan distance.
	L1
	// LInf is the Chebyshev distance.
	LInf
	// InnerProduct ranks by dot product. Its "distance" is the negated dot product.
	InnerProduct
	// Hamming counts differing bits of packed binary vectors.
	Hamming
)

const (
	// Default is used for float and byte fields without an explicit metric.
	Default = L2
	// DefaultBinary is used for binary fields without an explicit metric.
	DefaultBinary = Hamming
)

// All lists every selectable space type.
var All = []SpaceType{L2, CosineSimil, L1, LInf, InnerProduct, Hamming}

// Name returns the stable wire name of s.
func (s SpaceType) Name() string {
	switch s {
	case Undefined:
		return "undefined"
	case L2:
		return "l2"
	case CosineSimil:
		return "cosinesimil"
	case L1:
		return "l1"
	case LInf:
		return "linf"
	case InnerProduct:
		return "innerproduct"
	case Hamming:
		return "hamming"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s SpaceType) String() string { return s.Name() }

// Names returns the wire names of every selectable space type.
func Names() []string {
	out := make([]string, len(All))
	for i, s := range All {
		out[i] = s.Name()
	}
	return out
}

// Parse resolves a space type by name, case-insensitively.
func Parse(name string) (SpaceType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range All {
		if s.Name() == n {
			return s, nil
		}
	}
	return Undefined, fmt.Errorf("%w: unable to find space %q, expected one of %s",
		model.ErrConfiguration, name, strings.Join(Names(), ", "))
}

// DefaultFor returns the metric used when a field declares none.
func DefaultFor(dt model.VectorDataType) SpaceType {
	if dt == model.Binary {
		return DefaultBinary
	}
	return Default
}

// MarshalText implements encoding.TextMarshaler.
func (s SpaceType) MarshalText() ([]byte, error) {
	return []byte(s.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SpaceType) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsApplicable reports whether s can be used with fields of type dt.
// It never fails.
func (s SpaceType) IsApplicable(dt model.VectorDataType) bool {
	for _, supported := range s.impl().dataTypes() {
		if supported == dt {
			return true
		}
	}
	return false
}

// ValidateDataType is IsApplicable with an explanatory error.
func (s SpaceType) ValidateDataType(dt model.VectorDataType) error {
	if s.IsApplicable(dt) {
		return nil
	}
	return fmt.Errorf("%w: space type [%s] does not support vector data type [%s]",
		model.ErrConfiguration, s.Name(), dt)
}

// Distance returns the raw distance between two float vectors.
func (s SpaceType) Distance(u, v []float32) (float32, error) {
	if err := model.CheckDimensions(len(u), len(v)); err != nil {
		return 0, err
	}
	return s.impl().distance(u, v)
}

// DistanceBytes returns the raw distance between two byte vectors. Hamming
// treats them as packed bits, every other metric as signed int8 components.
func (s SpaceType) DistanceBytes(u, v []byte) (float32, error) {
	if err := model.CheckDimensions(len(u), len(v)); err != nil {
		return 0, err
	}
	return s.impl().distanceBytes(u, v)
}

// Score converts a canonical distance into a relevance score.
func (s SpaceType) Score(d float32) (float32, error) {
	if !s.defined() {
		return 0, unsupported(s, "score")
	}
	return s.impl().score(d), nil
}

// ScoreToDistance inverts Score. It is used to translate a minimum score
// threshold into a maximum distance for radial search.
func (s SpaceType) ScoreToDistance(score float32) (float32, error) {
	if score <= 0 {
		return 0, fmt.Errorf("%w: score must be positive, got %v", model.ErrConfiguration, score)
	}
	if !s.defined() {
		return 0, unsupported(s, "score to distance")
	}
	return s.impl().scoreToDistance(score), nil
}

// ScoreFloats computes the score between two float vectors.
func (s SpaceType) ScoreFloats(u, v []float32) (float32, error) {
	d, err := s.Distance(u, v)
	if err != nil {
		return 0, err
	}
	return s.impl().score(d), nil
}

// ScoreBytes computes the score between two byte vectors.
func (s SpaceType) ScoreBytes(u, v []byte) (float32, error) {
	d, err := s.DistanceBytes(u, v)
	if err != nil {
		return 0, err
	}
	return s.impl().score(d), nil
}

// ScoreVectors scores two decoded vectors of the same data type.
func (s SpaceType) ScoreVectors(u, v model.Vector) (float32, error) {
	if u.Type != v.Type {
		return 0, fmt.Errorf("%w: cannot compare %s and %s vectors", model.ErrConfiguration, u.Type, v.Type)
	}
	if u.Type == model.Float {
		return s.ScoreFloats(u.Floats, v.Floats)
	}
	if err := s.ValidateDataType(u.Type); err != nil {
		return 0, err
	}
	return s.ScoreBytes(u.Bytes, v.Bytes)
}

// ValidateVector rejects vectors the metric cannot score, such as the zero
// vector under cosine similarity.
func (s SpaceType) ValidateVector(v model.Vector) error {
	if err := s.ValidateDataType(v.Type); err != nil {
		return err
	}
	return s.impl().validate(v)
}

func (s SpaceType) defined() bool {
	_, undefined := s.impl().(undefinedSpace)
	return !undefined
}

func unsupported(s SpaceType, op string) error {
	return fmt.Errorf("%w: %s is not supported for space type [%s]", model.ErrUnsupportedOperation, op, s.Name())
}
