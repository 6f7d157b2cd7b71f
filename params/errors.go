package params

import (
	"fmt"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
)

// ConfigurationError reports a field configuration the resolver rejects.
type ConfigurationError struct {
	Space    space.SpaceType
	Engine   engine.Engine
	DataType model.VectorDataType
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for engine [%s], space type [%s], data type [%s]: %s",
		e.Engine, e.Space, e.DataType, e.Reason)
}

// Is reports whether target is model.ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == model.ErrConfiguration
}
