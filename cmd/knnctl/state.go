package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/knnspace/clusterstate"
	knnversion "github.com/hupe1980/knnspace/version"
)

func NewStateCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Publish and inspect cluster state documents",
	}

	cmd.AddCommand(
		newStatePushCmd(load),
		newStateShowCmd(load),
		newStateSetNodeCmd(load),
	)

	return cmd
}

func newStatePushCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "push <file>",
		Short: "Publish a YAML cluster state document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read state: %w", err)
			}
			var doc clusterstate.Document
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse state: %w", err)
			}

			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.state.Publish(cmd.Context(), &doc); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			a.logger.InfoContext(cmd.Context(), "published cluster state",
				"generation", doc.Generation, "nodes", len(doc.Nodes), "indices", len(doc.Indices))
			fmt.Fprintf(cmd.OutOrStdout(), "published generation %d\n", doc.Generation)
			return nil
		},
	}
}

func newStateShowCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the latest published cluster state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := a.state.Load(cmd.Context())
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return outputJSON(cmd, doc)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newStateSetNodeCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "set-node <id> <version>",
		Short: "Publish a new generation with a node joined or upgraded",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := knnversion.Parse(args[1])
			if err != nil {
				return err
			}
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}

			doc, err := a.state.Load(cmd.Context())
			if errors.Is(err, clusterstate.ErrNoDocument) {
				doc = &clusterstate.Document{}
			} else if err != nil {
				return err
			}
			if doc.Nodes == nil {
				doc.Nodes = make(map[string]knnversion.Version)
			}
			doc.Nodes[args[0]] = v

			if err := a.state.Publish(cmd.Context(), doc); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			a.logger.InfoContext(cmd.Context(), "node version set",
				"node", args[0], "version", v, "generation", doc.Generation)
			fmt.Fprintf(cmd.OutOrStdout(), "published generation %d\n", doc.Generation)
			return nil
		},
	}
}
