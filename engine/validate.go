package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hupe1980/knnspace/model"
)

// ValidateParameters checks method parameters given by logical name.
// Unknown names and non-positive values are rejected.
func ValidateParameters(e Engine, params map[string]any) error {
	d, ok := descriptors[e]
	if !ok {
		return fmt.Errorf("%w: invalid engine %s", model.ErrConfiguration, e)
	}
	for name, raw := range params {
		if _, ok := d.params[name]; !ok {
			return fmt.Errorf("%w: unknown parameter %q for engine %s", model.ErrConfiguration, name, e)
		}
		v, ok := IntValue(raw)
		if !ok || v <= 0 {
			return fmt.Errorf("%w: parameter %q must be a positive integer, got %v", model.ErrConfiguration, name, raw)
		}
	}
	return nil
}

// IntValue converts the value shapes produced by JSON, YAML and settings
// maps into an int.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
		if n != math.Trunc(n) || n >= float64(math.MaxInt) || n < float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
