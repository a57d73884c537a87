package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/pathtrack/internal/tracker"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the learning path and progress",
		Long: `Writes devops_progress_<date>.<ext> into the export directory. The JSON
format can be imported again from the UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tracker.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			tr, st, err := e.loadState(cmd.Context())
			if err != nil {
				return err
			}

			dir := e.cfg.ExportDir
			if outDir != "" {
				dir = outDir
			}
			path, err := tr.ExportAs(st, f, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tracker.MsgExported, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(tracker.FormatJSON), "export format: json, csv or pdf")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	return cmd
}
