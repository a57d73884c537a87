// Package cli wires the pathtrack commands.
package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/pathtrack/internal/tracker"
	"github.com/sadopc/pathtrack/internal/tui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	document   string
	dbPath     string
	logLevel   string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// the terminal UI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWith(promptConfirm)
}

// newRootCmdWith builds the tree with confirm as the reset gate.
func newRootCmdWith(confirm tracker.Confirmer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "pathtrack",
		Short: "Track your progress through a DevOps learning path",
		Long: `pathtrack loads a learning path (topics and their subtopics) from a JSON
file or URL, shows it as cards in the terminal and remembers which items
you have completed. Progress can be exported as JSON, CSV or PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file path (default "+defaultConfigHint()+")")
	root.PersistentFlags().StringVar(&flags.document, "document", "", "learning path file or http(s) URL")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "progress database path")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	root.AddCommand(
		newStatusCmd(flags),
		newExportCmd(flags),
		newResetCmd(flags, confirm),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	e, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.NewApp(tui.Options{
		Store:        e.store,
		Source:       e.cfg.Document,
		FetchTimeout: e.cfg.FetchTimeout(),
		ExportDir:    e.cfg.ExportDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	e.log.Info().Str("version", Version).Msg("starting ui")
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of pathtrack",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("pathtrack %s\n", Version)
		},
	}
}
