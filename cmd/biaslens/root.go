package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	src := &analysisSource{}

	rootCmd := &cobra.Command{
		Use:           "biaslens",
		Short:         "Inspect and export stored bias analyses",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&src.analysisID, "analysis", "", "ID of a stored analysis (reads DATABASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&src.file, "file", "f", "", "Path to a bias service JSON payload")
	rootCmd.MarkFlagsMutuallyExclusive("analysis", "file")

	rootCmd.AddCommand(newExportCommand(src))
	rootCmd.AddCommand(newStatsCommand(src))
	rootCmd.AddCommand(newFailuresCommand(src))

	return rootCmd
}
