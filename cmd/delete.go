package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete stories",
		Long: `Selects the given stories and deletes them one by one after confirmation.
Stories that fail to delete are reported; the rest are still removed.`,
		Example: `  moment4u delete 6650c1f2 6650c1f9
  moment4u delete 6650c1f2 --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}
			if err := d.Refresh(cmd.Context()); err != nil {
				return err
			}

			wf := d.Workflow()
			if err := wf.EnterDeleteMode(); err != nil {
				return err
			}
			for _, id := range args {
				if _, ok := d.Story(id); !ok {
					return fmt.Errorf("story %s not found", id)
				}
				if !wf.IsSelected(id) {
					if err := wf.Toggle(id); err != nil {
						return err
					}
				}
			}

			prompt, err := wf.Finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, prompt)
				if err != nil {
					return err
				}
				if !ok {
					if err := wf.Exit(); err != nil {
						return err
					}
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			report, err := d.ConfirmDelete(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range report.Deleted {
				fmt.Fprintf(out, "deleted %s\n", id)
			}
			if report.RefetchErr != nil {
				fmt.Fprintf(out, "warning: could not reload stories: %v\n", report.RefetchErr)
			}
			if msg := report.Notice(); msg != "" {
				return errors.New(msg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
