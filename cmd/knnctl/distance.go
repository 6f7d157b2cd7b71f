package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnspace/model"
	"github.com/hupe1980/knnspace/space"
)

func NewDistanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance <a> <b>",
		Short: "Compute the distance and score of two vectors",
		Long:  `Compute the canonical distance of two comma separated vectors under a space type and convert it to a score.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runDistance,
	}

	cmd.Flags().String("space", space.Default.Name(), "Space type")
	cmd.Flags().String("data-type", model.DefaultDataType.String(), "Vector data type (float|byte|binary)")

	return cmd
}

func runDistance(cmd *cobra.Command, args []string) error {
	spaceName, _ := cmd.Flags().GetString("space")
	dtName, _ := cmd.Flags().GetString("data-type")

	s, err := space.Parse(spaceName)
	if err != nil {
		return err
	}
	dt, err := model.ParseVectorDataType(dtName)
	if err != nil {
		return err
	}

	a, err := parseVector(args[0], dt)
	if err != nil {
		return err
	}
	b, err := parseVector(args[1], dt)
	if err != nil {
		return err
	}
	if err := model.CheckDimensions(a.Dimension(), b.Dimension()); err != nil {
		return err
	}
	for _, v := range []model.Vector{a, b} {
		if err := s.ValidateVector(v); err != nil {
			return err
		}
	}

	var d float32
	if dt == model.Float {
		d, err = s.Distance(a.Floats, b.Floats)
	} else {
		d, err = s.DistanceBytes(a.Bytes, b.Bytes)
	}
	if err != nil {
		return err
	}
	score, err := s.Score(d)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return outputJSON(cmd, map[string]any{
			"space_type": s.Name(),
			"distance":   d,
			"score":      score,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "distance: %g\nscore: %g\n", d, score)
	return nil
}
