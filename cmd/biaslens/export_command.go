package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"BiasLens/internal/api/analysis"
	analysisService "BiasLens/internal/api/analysis/service"
)

func newExportCommand(src *analysisSource) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the bias results CSV with its summary block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := src.load(cmd.Context())
			if err != nil {
				return err
			}

			data, ok := analysisService.ExportCSV(result)
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No metrics in payload; nothing exported")
				return nil
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", analysis.ExportFileName, "Destination file, or - for stdout")
	return cmd
}
