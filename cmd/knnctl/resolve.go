package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/mapping"
	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
)

func NewResolveCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <index>",
		Short: "Resolve the load parameters of a field",
		Long: `Resolve the parameters the native library needs to load a field's index,
reading index settings from the published cluster state.`,
		Args: cobra.ExactArgs(1),
		RunE: makeResolveRunner(load),
	}

	addMethodFlags(cmd)

	return cmd
}

func addMethodFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", "", "Engine (default depends on the cluster)")
	cmd.Flags().String("space", "", "Space type (default depends on the data type)")
	cmd.Flags().String("data-type", model.DefaultDataType.String(), "Vector data type (float|byte|binary)")
}

func methodFromFlags(cmd *cobra.Command) (mapping.MethodConfig, error) {
	engineName, _ := cmd.Flags().GetString("engine")
	spaceName, _ := cmd.Flags().GetString("space")
	dtName, _ := cmd.Flags().GetString("data-type")

	var m mapping.MethodConfig
	var err error
	if engineName != "" {
		if m.Engine, err = engine.Parse(engineName); err != nil {
			return m, err
		}
	}
	if spaceName != "" {
		if m.SpaceType, err = space.Parse(spaceName); err != nil {
			return m, err
		}
	}
	if m.DataType, err = model.ParseVectorDataType(dtName); err != nil {
		return m, err
	}
	return m, nil
}

func makeResolveRunner(load appLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		m, err := methodFromFlags(cmd)
		if err != nil {
			return err
		}
		a, err := load(cmd.Context())
		if err != nil {
			return err
		}

		p, err := a.core.ResolveLoadParameters(cmd.Context(), args[0], m)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, p)
		}
		for _, k := range slices.Sorted(maps.Keys(p)) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%v\n", k, p[k])
		}
		return nil
	}
}
