package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as json, txt, yaml or md",
		Long: `Export the user's chat history to a file.

When --out is empty the export is written to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(e *env) error {
				ctx := cmd.Context()
				if outDir == "" {
					out, err := e.history.ExportSessions(ctx, e.userID, format)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(out.Data)
					return err
				}

				path, err := e.history.DownloadExport(ctx, e.userID, format, outDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (json, txt, yaml, md)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the export file into")
	return cmd
}
