package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle]",
		Short:     "Show or toggle the stored color mode",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}

			theme, err := d.Theme()
			if len(args) == 1 {
				theme, err = d.ToggleTheme()
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}
