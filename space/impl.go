package space

import (
	"fmt"

	"github.com/hupe1980/knnspace/distance"
	"github.com/hupe1980/knnspace/model"
)

// spaceImpl is the per-metric behaviour behind SpaceType.
type spaceImpl interface {
	dataTypes() []model.VectorDataType
	distance(u, v []float32) (float32, error)
	distanceBytes(u, v []byte) (float32, error)
	score(d float32) float32
	scoreToDistance(s float32) float32
	validate(v model.Vector) error
}

var (
	floatAndByte = []model.VectorDataType{model.Float, model.Byte}
	binaryOnly   = []model.VectorDataType{model.Binary}
)

func (s SpaceType) impl() spaceImpl {
	switch s {
	case L2:
		return kernelSpace{float: distance.SquaredL2, bytes: distance.SquaredL2Int8}
	case L1:
		return kernelSpace{float: distance.L1, bytes: distance.L1Int8}
	case LInf:
		return kernelSpace{float: distance.LInf, bytes: distance.LInfInt8}
	case CosineSimil:
		return cosineSpace{}
	case InnerProduct:
		return innerProductSpace{}
	case Hamming:
		return hammingSpace{}
	default:
		return undefinedSpace{s: s}
	}
}

// inverseScore is the shared 1/(1+d) transform.
func inverseScore(d float32) float32 { return 1 / (1 + d) }

func inverseScoreToDistance(s float32) float32 { return 1/s - 1 }

type kernelSpace struct {
	float distance.Func
	bytes distance.FuncBytes
}

func (kernelSpace) dataTypes() []model.VectorDataType { return floatAndByte }

func (k kernelSpace) distance(u, v []float32) (float32, error) { return k.float(u, v), nil }

func (k kernelSpace) distanceBytes(u, v []byte) (float32, error) { return k.bytes(u, v), nil }

func (kernelSpace) score(d float32) float32 { return inverseScore(d) }

func (kernelSpace) scoreToDistance(s float32) float32 { return inverseScoreToDistance(s) }

func (kernelSpace) validate(model.Vector) error { return nil }

type cosineSpace struct{}

func (cosineSpace) dataTypes() []model.VectorDataType { return floatAndByte }

func (cosineSpace) distance(u, v []float32) (float32, error) {
	sim, ok := distance.CosineSimilarity(u, v)
	if !ok {
		return 0, zeroVectorError()
	}
	return 1 - sim, nil
}

func (cosineSpace) distanceBytes(u, v []byte) (float32, error) {
	sim, ok := distance.CosineSimilarityInt8(u, v)
	if !ok {
		return 0, zeroVectorError()
	}
	return 1 - sim, nil
}

func (cosineSpace) score(d float32) float32 { return inverseScore(d) }

func (cosineSpace) scoreToDistance(s float32) float32 { return inverseScoreToDistance(s) }

func (cosineSpace) validate(v model.Vector) error {
	zero := distance.IsZeroBytes(v.Bytes)
	if v.Type == model.Float {
		zero = distance.IsZero(v.Floats)
	}
	if zero {
		return zeroVectorError()
	}
	return nil
}

func zeroVectorError() error {
	return fmt.Errorf("%w: zero vector is not supported when space type is [%s]", model.ErrConfiguration, CosineSimil.Name())
}

type innerProductSpace struct{}

func (innerProductSpace) dataTypes() []model.VectorDataType { return floatAndByte }

func (innerProductSpace) distance(u, v []float32) (float32, error) {
	return -distance.Dot(u, v), nil
}

func (innerProductSpace) distanceBytes(u, v []byte) (float32, error) {
	return -distance.DotInt8(u, v), nil
}

func (innerProductSpace) score(nd float32) float32 {
	if nd >= 0 {
		return 1 / (1 + nd)
	}
	return -nd + 1
}

func (innerProductSpace) scoreToDistance(s float32) float32 {
	if s >= 1 {
		return 1 - s
	}
	return 1/s - 1
}

func (innerProductSpace) validate(model.Vector) error { return nil }

type hammingSpace struct{}

func (hammingSpace) dataTypes() []model.VectorDataType { return binaryOnly }

func (hammingSpace) distance(_, _ []float32) (float32, error) {
	return 0, fmt.Errorf("%w: space type [%s] is not supported with [%s] vectors",
		model.ErrUnsupportedOperation, Hamming.Name(), model.Float)
}

func (hammingSpace) distanceBytes(u, v []byte) (float32, error) {
	return distance.Hamming(u, v), nil
}

func (hammingSpace) score(d float32) float32 { return inverseScore(d) }

func (hammingSpace) scoreToDistance(s float32) float32 { return inverseScoreToDistance(s) }

func (hammingSpace) validate(model.Vector) error { return nil }

type undefinedSpace struct{ s SpaceType }

func (undefinedSpace) dataTypes() []model.VectorDataType { return nil }

func (u undefinedSpace) distance(_, _ []float32) (float32, error) {
	return 0, unsupported(u.s, "distance")
}

func (u undefinedSpace) distanceBytes(_, _ []byte) (float32, error) {
	return 0, unsupported(u.s, "distance")
}

func (undefinedSpace) score(float32) float32 { return 0 }

func (undefinedSpace) scoreToDistance(float32) float32 { return 0 }

func (u undefinedSpace) validate(model.Vector) error { return unsupported(u.s, "validation") }
