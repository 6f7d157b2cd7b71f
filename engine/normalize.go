package engine

import (
	"fmt"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
)

// NormalizeDistance converts a raw search result value reported by e into the
// canonical distance of s, so a single score transform applies to every
// backend.
func NormalizeDistance(e Engine, s space.SpaceType, raw float32) (float32, error) {
	d, ok := descriptors[e]
	if !ok {
		return 0, fmt.Errorf("%w: invalid engine %s", model.ErrConfiguration, e)
	}

	switch d.Convention {
	case CanonicalDistance:
		return raw, nil
	case Similarity:
		switch s {
		case space.CosineSimil:
			return 1 - raw, nil
		case space.InnerProduct:
			return -raw, nil
		default:
			return raw, nil
		}
	case HostScore:
		// The host scores cosine as (1 + cos) / 2.
		if s == space.CosineSimil {
			return 2 - 2*raw, nil
		}
		return s.ScoreToDistance(raw)
	default:
		return 0, fmt.Errorf("%w: unknown raw convention %d", model.ErrConfiguration, d.Convention)
	}
}

// Score normalizes a raw backend value and applies the score transform of s.
func Score(e Engine, s space.SpaceType, raw float32) (float32, error) {
	d, err := NormalizeDistance(e, s, raw)
	if err != nil {
		return 0, err
	}
	return s.Score(d)
}

// RawFromDistance converts a canonical distance of s into the value e reports
// for it. It is the inverse of NormalizeDistance.
func RawFromDistance(e Engine, s space.SpaceType, d float32) (float32, error) {
	desc, ok := descriptors[e]
	if !ok {
		return 0, fmt.Errorf("%w: invalid engine %s", model.ErrConfiguration, e)
	}

	switch desc.Convention {
	case CanonicalDistance:
		return d, nil
	case Similarity:
		switch s {
		case space.CosineSimil:
			return 1 - d, nil
		case space.InnerProduct:
			return -d, nil
		default:
			return d, nil
		}
	case HostScore:
		if s == space.CosineSimil {
			return 1 - d/2, nil
		}
		return s.Score(d)
	default:
		return 0, fmt.Errorf("%w: unknown raw convention %d", model.ErrConfiguration, desc.Convention)
	}
}
