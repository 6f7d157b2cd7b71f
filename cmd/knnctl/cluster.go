package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/clusterstate"
)

func NewClusterCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Query the cluster version gate",
	}

	cmd.AddCommand(
		newMinVersionCmd(load),
		newFeatureCmd(load),
	)

	return cmd
}

func newMinVersionCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "min-version",
		Short: "Print the minimum version across all nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			v := a.core.MinimumClusterVersion(cmd.Context())
			if wantJSON(cmd) {
				return outputJSON(cmd, map[string]any{"min_version": v})
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newFeatureCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "feature [name]",
		Short: "Report which version-gated features the cluster supports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features := clusterstate.Features()
			if len(args) == 1 {
				f := clusterstate.Feature(args[0])
				if _, ok := clusterstate.MinimalRequiredVersion(f); !ok {
					return fmt.Errorf("unknown feature %q", args[0])
				}
				features = []clusterstate.Feature{f}
			}

			a, err := load(cmd.Context())
			if err != nil {
				return err
			}

			type row struct {
				Feature   clusterstate.Feature `json:"feature"`
				Requires  string               `json:"requires"`
				Supported bool                 `json:"supported"`
			}
			rows := make([]row, 0, len(features))
			for _, f := range features {
				v, _ := clusterstate.MinimalRequiredVersion(f)
				rows = append(rows, row{Feature: f, Requires: v.String(), Supported: a.core.IsOnOrAfter(cmd.Context(), f)})
			}

			if wantJSON(cmd) {
				return outputJSON(cmd, rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%t\n", r.Feature, r.Requires, r.Supported)
			}
			return nil
		},
	}
}
