package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	analysisService "BiasLens/internal/api/analysis/service"
	"BiasLens/internal/entity"
)

func newStatsCommand(src *analysisSource) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show averages, overall level and per-occupation bias",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := src.load(cmd.Context())
			if err != nil {
				return err
			}

			stats := analysisService.ComputeStats(result)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"Average gender bias", formatBias(stats.AverageGenderBias)},
					{"Average age bias", formatBias(stats.AverageAgeBias)},
					{"Average race bias", formatBias(stats.AverageRaceBias)},
					{"Overall", stats.OverallPercent + "% (" + stats.Level + ")"},
					{"Age bias range", formatRange(stats.AgeBiasRange)},
					{"Race bias range", formatRange(stats.RaceBiasRange)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			if len(stats.ByOccupation) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(stats.ByOccupation))
			for _, occ := range stats.ByOccupation {
				rows = append(rows, []string{
					occ.Occupation,
					formatBias(occ.AgeBias),
					formatBias(occ.GenderBias),
					formatBias(occ.RaceBias),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Occupation", "Age", "Gender", "Race"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newFailuresCommand(src *analysisSource) *cobra.Command {
	return &cobra.Command{
		Use:   "failures",
		Short: "List transformed images the bias service could not analyze",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := src.load(cmd.Context())
			if err != nil {
				return err
			}

			queue := analysisService.FailureQueue(result)
			if len(queue) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed detections")
				return nil
			}

			rows := make([][]string, 0, len(queue))
			for _, item := range queue {
				rows = append(rows, []string{item.Occupation, item.ImageName, item.ImageURL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Occupation", "Image", "URL"},
				rows,
				nil,
			))
			return nil
		},
	}
}

func formatBias(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRange(r entity.BiasRange) string {
	if r.Highest == nil || r.Lowest == nil {
		return "n/a"
	}
	return formatBias(*r.Lowest) + " - " + formatBias(*r.Highest)
}
