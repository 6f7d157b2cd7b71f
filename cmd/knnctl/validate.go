package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/mapping"
)

func NewValidateCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <mapping-file>",
		Short: "Validate a vector field mapping",
		Long: `Parse a knn_vector field mapping (JSON or YAML), fill in defaults and
validate it against the minimum version of the cluster.`,
		Args: cobra.ExactArgs(1),
		RunE: makeValidateRunner(load),
	}

	return cmd
}

func makeValidateRunner(load appLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read mapping: %w", err)
		}
		m, err := mapping.ParseMethodJSON(data, codec.ForFile(args[0]))
		if err != nil {
			return err
		}

		a, err := load(cmd.Context())
		if err != nil {
			return err
		}
		m, err = a.core.ValidateNewField(cmd.Context(), m)
		if err != nil {
			return fmt.Errorf("invalid mapping: %w", err)
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, m.ToMap())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: engine=%s space_type=%s data_type=%s dimension=%d\n",
			m.Engine, m.SpaceType, m.DataType, m.Dimension)
		return nil
	}
}
