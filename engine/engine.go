package engine

import (
	"fmt"
	"strings"

	"github.com/hupe1980/knnspace/model"
)

// Engine identifies an ANN backend.
type Engine uint8

const (
	// Undefined is the zero value. It supports nothing.
	Undefined Engine = iota
	// NMSLIB is the non-metric space graph library.
	NMSLIB
	// Faiss is the similarity search library with graph and IVF indices.
	Faiss
	// Lucene is the host engine's native HNSW implementation.
	Lucene
)

// Default is used when a field declares no engine.
const Default = Faiss

// All lists every selectable engine.
var All = []Engine{NMSLIB, Faiss, Lucene}

// Name returns the stable wire name of e.
func (e Engine) Name() string {
	switch e {
	case NMSLIB:
		return "nmslib"
	case Faiss:
		return "faiss"
	case Lucene:
		return "lucene"
	case Undefined:
		return "undefined"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

func (e Engine) String() string { return e.Name() }

// Parse resolves an engine by name, case-insensitively.
func Parse(name string) (Engine, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range All {
		if e.Name() == n {
			return e, nil
		}
	}
	return Undefined, fmt.Errorf("%w: invalid engine type %q", model.ErrConfiguration, name)
}

// MarshalText implements encoding.TextMarshaler.
func (e Engine) MarshalText() ([]byte, error) {
	return []byte(e.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Engine) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
