package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sadopc/pathtrack/internal/view"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print overall and per-topic completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			tr, st, err := e.loadState(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), tr.Overview(st), tr.TopicStats(st))
		},
	}
}

func printStatus(out io.Writer, ov view.Overview, stats []view.TopicStat) error {
	if ov.Total == 0 {
		fmt.Fprintln(out, view.EmptyTitle)
		return nil
	}

	bar := progressbar.NewOptions(ov.Total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Overall"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
	)
	if err := bar.Set(min(ov.Completed, ov.Total)); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d / %d completed (%.0f%%)\n\n", ov.Completed, ov.Total, ov.Fraction()*100)

	fmt.Fprintf(out, "%-28s %10s %8s\n", "Topic", "Completed", "Percent")
	fmt.Fprintln(out, strings.Repeat("-", 48))
	for _, s := range stats {
		fmt.Fprintf(out, "%-28s %10s %7.0f%%\n", s.Label, fmt.Sprintf("%d/%d", s.Completed, s.Total), s.Percent())
	}
	return nil
}
