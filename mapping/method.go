package mapping

import (
	"fmt"
	"maps"
	"strings"

	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
	"github.com/hupe1980/knnspace/version"
)

// Mapping keys.
const (
	KeyType           = "type"
	KeyEngine         = "engine"
	KeySpaceType      = "space_type"
	KeySpaceTypeCamel = "spaceType"
	KeyDimension      = "dimension"
	KeyDataType       = "data_type"
	KeyParameters     = "parameters"
)

// SettingKNN marks an index as a k-NN index.
const SettingKNN = "index.knn"

// FieldType is the mapping type of a vector field.
const FieldType = "knn_vector"

// MethodConfig is the parsed method of a vector field.
type MethodConfig struct {
	Engine     engine.Engine
	SpaceType  space.SpaceType
	Dimension  int
	DataType   model.VectorDataType
	Parameters map[string]any
}

// ParseMethod parses a field mapping.
func ParseMethod(m map[string]any) (MethodConfig, error) {
	var cfg MethodConfig

	for key, raw := range m {
		switch key {
		case KeyType:
			if s, _ := raw.(string); s != FieldType {
				return MethodConfig{}, fmt.Errorf("%w: field type must be %q, got %v", model.ErrConfiguration, FieldType, raw)
			}
		case KeyEngine:
			s, err := stringValue(key, raw)
			if err != nil {
				return MethodConfig{}, err
			}
			if s != "" {
				if cfg.Engine, err = engine.Parse(s); err != nil {
					return MethodConfig{}, err
				}
			}
		case KeySpaceType, KeySpaceTypeCamel:
			s, err := stringValue(key, raw)
			if err != nil {
				return MethodConfig{}, err
			}
			if s != "" {
				st, err := space.Parse(s)
				if err != nil {
					return MethodConfig{}, err
				}
				if cfg.SpaceType != space.Undefined && cfg.SpaceType != st {
					return MethodConfig{}, fmt.Errorf("%w: conflicting space types %s and %s", model.ErrConfiguration, cfg.SpaceType, st)
				}
				cfg.SpaceType = st
			}
		case KeyDimension:
			d, ok := engine.IntValue(raw)
			if !ok {
				return MethodConfig{}, fmt.Errorf("%w: dimension must be an integer, got %v", model.ErrConfiguration, raw)
			}
			cfg.Dimension = d
		case KeyDataType:
			s, err := stringValue(key, raw)
			if err != nil {
				return MethodConfig{}, err
			}
			if cfg.DataType, err = model.ParseVectorDataType(s); err != nil {
				return MethodConfig{}, err
			}
		case KeyParameters:
			if raw == nil {
				continue
			}
			p, ok := raw.(map[string]any)
			if !ok {
				return MethodConfig{}, fmt.Errorf("%w: parameters must be an object, got %T", model.ErrConfiguration, raw)
			}
			cfg.Parameters = maps.Clone(p)
		default:
			return MethodConfig{}, fmt.Errorf("%w: unknown mapping parameter %q", model.ErrConfiguration, key)
		}
	}

	return cfg, nil
}

// ParseMethodJSON decodes data with c and parses the result.
// A nil codec uses codec.Default.
func ParseMethodJSON(data []byte, c codec.Codec) (MethodConfig, error) {
	if c == nil {
		c = codec.Default
	}
	var m map[string]any
	if err := c.Unmarshal(data, &m); err != nil {
		return MethodConfig{}, fmt.Errorf("%w: decode mapping: %w", model.ErrConfiguration, err)
	}
	return ParseMethod(m)
}

// ResolveDefaults fills in the engine and space type a field leaves out.
func (c MethodConfig) ResolveDefaults() MethodConfig {
	if c.Engine == engine.Undefined {
		c.Engine = engine.Default
	}
	if c.SpaceType == space.Undefined {
		c.SpaceType = space.DefaultFor(c.DataType)
	}
	c.Parameters = maps.Clone(c.Parameters)
	return c
}

// Validate checks the method for an index created on version created.
// The config must have its defaults resolved.
func (c MethodConfig) Validate(created version.Version) error {
	desc, ok := engine.Lookup(c.Engine)
	if !ok {
		return fmt.Errorf("%w: engine is not set", model.ErrConfiguration)
	}
	if engine.IsRestricted(c.Engine, created) {
		return fmt.Errorf("%w: engine %s cannot create indices on version %s or later",
			model.ErrConfiguration, c.Engine, desc.RestrictedFrom)
	}

	if c.Dimension <= 0 || c.Dimension > desc.MaxDimension {
		return fmt.Errorf("%w: dimension must be between 1 and %d, got %d",
			model.ErrConfiguration, desc.MaxDimension, c.Dimension)
	}
	if c.DataType == model.Binary && c.Dimension%8 != 0 {
		return fmt.Errorf("%w: dimension of a binary field must be a multiple of 8, got %d",
			model.ErrConfiguration, c.Dimension)
	}

	if err := c.SpaceType.ValidateDataType(c.DataType); err != nil {
		return err
	}
	if !engine.Supports(c.Engine, c.SpaceType, c.DataType) {
		return fmt.Errorf("%w: engine %s does not support space type [%s] for data type [%s]",
			model.ErrConfiguration, c.Engine, c.SpaceType, c.DataType)
	}

	return engine.ValidateParameters(c.Engine, c.Parameters)
}

// NativeParameters returns the method parameters keyed by the engine's own names.
func (c MethodConfig) NativeParameters() map[string]any {
	out := make(map[string]any, len(c.Parameters))
	for k, v := range c.Parameters {
		if native, ok := engine.NativeParamName(c.Engine, k); ok {
			out[native] = v
		}
	}
	return out
}

// ToMap renders c as a field mapping.
func (c MethodConfig) ToMap() map[string]any {
	m := map[string]any{
		KeyType:      FieldType,
		KeyDimension: c.Dimension,
		KeyDataType:  c.DataType.String(),
	}
	if c.Engine != engine.Undefined {
		m[KeyEngine] = c.Engine.Name()
	}
	if c.SpaceType != space.Undefined {
		m[KeySpaceType] = c.SpaceType.Name()
	}
	if len(c.Parameters) > 0 {
		m[KeyParameters] = maps.Clone(c.Parameters)
	}
	return m
}

// IsKNNIndex reports whether index settings enable k-NN.
func IsKNNIndex(settings map[string]any) bool {
	switch v := settings[SettingKNN].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

func stringValue(key string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", model.ErrConfiguration, key, raw)
	}
	return s, nil
}
