package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/internal/simd"
	knnversion "github.com/hupe1980/knnspace/version"
)

func NewInfoCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print build, CPU and engine information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps := simd.Capabilities()
			engines := make(map[string][]string, len(engine.All))
			for _, e := range engine.All {
				engines[e.Name()] = engine.ParameterNames(e)
			}

			if wantJSON(cmd) {
				return outputJSON(cmd, map[string]any{
					"version":      version,
					"knn_version":  knnversion.Current(),
					"simd":         simd.ActiveISA().String(),
					"capabilities": caps,
					"engines":      engines,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "knnctl %s (knn %s)\n", version, knnversion.Current())
			fmt.Fprintf(out, "simd: %s\n", simd.ActiveISA())
			for _, name := range slices.Sorted(maps.Keys(caps)) {
				fmt.Fprintf(out, "  %s: %t\n", name, caps[name])
			}
			for _, e := range engine.All {
				fmt.Fprintf(out, "engine %s: %v\n", e, engines[e.Name()])
			}
			return nil
		},
	}
}
