package cmd

import (
	"fmt"
	"log/slog"

	"github.com/moment4u/moment4u/internal/export"
	"github.com/moment4u/moment4u/internal/images"
	"github.com/moment4u/moment4u/internal/storage"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var sortKey string
	var imagesDir string

	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Export all stories to YAML or Parquet",
		Long: `Writes the story collection to PATH. The format follows the extension:
.yaml or .yml for a YAML archive, .parquet for a Parquet table.

With --images every story's photos are also downloaded into DIR/<story id>/.`,
		Example: `  moment4u export stories.yaml
  moment4u export stories.parquet --sort title-asc
  moment4u export backup.yaml --images ./photos`,
		Args: cobra.ExactArgs(1),
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

			stories := d.Stories(key)
			if err := export.ToFile(args[0], stories, export.Options{Source: opts.cfg.APIURL, SortKey: string(key)}); err != nil {
				return err
			}

			slog.Info("Stories exported", "path", args[0], "count", len(stories))

			if imagesDir != "" {
				fetcher := images.NewFetcher(opts.cfg.HTTPTimeout)
				saved := 0
				for _, s := range stories {
					paths, err := fetcher.SaveStory(cmd.Context(), s, imagesDir)
					saved += len(paths)
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d images to %s\n", saved, imagesDir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d stories to %s\n", len(stories), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&imagesDir, "images", "", "Also download story images into this directory")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(storage.DefaultSortKey), "Row order: date-desc, date-asc, title-asc or title-desc")

	return cmd
}
