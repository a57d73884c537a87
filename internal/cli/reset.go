package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sadopc/pathtrack/internal/tracker"
)

// promptConfirm asks on the terminal. Anything but an explicit yes declines.
func promptConfirm(prompt string) bool {
	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	}
	_, err := p.Run()
	return err == nil
}

func newResetCmd(flags *globalFlags, confirm tracker.Confirmer) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all completion progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer e.Close()

			tr := tracker.New(e.store)
			st := tracker.NewState()
			if err := tr.Init(st); err != nil {
				e.log.Warn().Err(err).Msg("stored progress unreadable, resetting anyway")
			}

			gate := confirm
			if yes {
				gate = func(string) bool { return true }
			}
			did, err := tr.Reset(st, gate)
			if err != nil {
				return err
			}
			if !did {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), tracker.MsgReset)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
