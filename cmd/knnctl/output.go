package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/model"
)

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFloats parses a comma separated vector such as "1,2.5,-3".
func parseFloats(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}

// parseBytes parses a comma separated vector of 8-bit values. Byte vectors
// hold signed components, binary vectors hold packed unsigned bytes.
func parseBytes(s string, signed bool) ([]byte, error) {
	fields := strings.Split(s, ",")
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if signed {
			v, err := strconv.ParseInt(f, 10, 8)
			if err != nil {
				return nil, err
			}
			out = append(out, byte(int8(v)))
			continue
		}
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func parseVector(s string, dt model.VectorDataType) (model.Vector, error) {
	switch dt {
	case model.Float:
		v, err := parseFloats(s)
		if err != nil {
			return model.Vector{}, fmt.Errorf("parse vector %q: %w", s, err)
		}
		return model.FloatVector(v), nil
	case model.Byte:
		v, err := parseBytes(s, true)
		if err != nil {
			return model.Vector{}, fmt.Errorf("parse vector %q: %w", s, err)
		}
		return model.ByteVector(v), nil
	default:
		v, err := parseBytes(s, false)
		if err != nil {
			return model.Vector{}, fmt.Errorf("parse vector %q: %w", s, err)
		}
		return model.BinaryVector(v), nil
	}
}
