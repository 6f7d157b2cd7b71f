package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "knnctl",
		Short:         "Inspect k-NN spaces, engines and cluster state",
		Long:          `Score distances, resolve engine parameters and publish the cluster state documents the version gate reads.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "knnctl.yaml", "Path to the config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	load := newAppLoader(&configPath)

	rootCmd.AddCommand(
		NewDistanceCmd(),
		NewScoreCmd(),
		NewResolveCmd(load),
		NewValidateCmd(load),
		NewClusterCmd(load),
		NewStateCmd(load),
		NewInfoCmd(version),
	)

	return rootCmd
}
