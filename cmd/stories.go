package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/moment4u/moment4u/internal/storage"
	"github.com/spf13/cobra"
)

func newStoriesCmd(opts *rootOptions) *cobra.Command {
	var sortKey string

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List stories",
		Example: `  # Newest first
  moment4u stories

  # Alphabetical by title
  moment4u stories --sort title-asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := storage.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			d, _, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}
			if err := d.Refresh(cmd.Context()); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tIMAGES\tTITLE")
			for _, s := range d.Stories(key) {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.CreatedAt, len(s.Images), s.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(storage.DefaultSortKey), "Sort order: date-desc, date-asc, title-asc or title-desc")

	return cmd
}

func newImagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List uploaded images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}
			images, err := client.GetImages(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STORY_ID\tNUMBER\tCREATED\tPATH")
			for _, img := range images {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", img.StoryID, img.ImageNumber, img.CreatedAt, img.ImagePath)
			}
			return tw.Flush()
		},
	}
}
