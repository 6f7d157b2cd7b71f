package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/space"
)

func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [--] <raw>...",
		Short: "Convert raw engine results to scores",
		Long: `Normalize raw values as an engine reports them into canonical distances
and apply the score transform of the space type.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScore,
	}

	cmd.Flags().String("engine", engine.Default.Name(), "Engine that produced the values")
	cmd.Flags().String("space", space.Default.Name(), "Space type")

	return cmd
}

type scoredValue struct {
	Raw      float32 `json:"raw"`
	Distance float32 `json:"distance"`
	Score    float32 `json:"score"`
}

func runScore(cmd *cobra.Command, args []string) error {
	engineName, _ := cmd.Flags().GetString("engine")
	spaceName, _ := cmd.Flags().GetString("space")

	e, err := engine.Parse(engineName)
	if err != nil {
		return err
	}
	s, err := space.Parse(spaceName)
	if err != nil {
		return err
	}

	out := make([]scoredValue, 0, len(args))
	for _, arg := range args {
		raw, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("parse raw value %q: %w", arg, err)
		}
		d, err := engine.NormalizeDistance(e, s, float32(raw))
		if err != nil {
			return err
		}
		score, err := s.Score(d)
		if err != nil {
			return err
		}
		out = append(out, scoredValue{Raw: float32(raw), Distance: d, Score: score})
	}

	if wantJSON(cmd) {
		return outputJSON(cmd, out)
	}
	for _, v := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "%g\t%g\t%g\n", v.Raw, v.Distance, v.Score)
	}
	return nil
}
