package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/pipeline"
	"github.com/spf13/cobra"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var fromBatch string

	cmd := &cobra.Command{
		Use:   "create FILE...",
		Short: "Create a story from up to four photos",
		Long: `Uploads the photos as one batch, captions them in order, writes a story
and a title, and saves the result.

With --from-batch the upload is skipped and an already uploaded batch is
captioned and narrated again.`,
		Example: `  # New story from three photos
  moment4u create beach.jpg sunset.jpg dinner.jpg

  # Use Gemini to write the story
  moment4u create --narrator gemini beach.jpg

  # Retry a batch whose story failed
  moment4u create --from-batch 6650c1f2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromBatch == "" && len(args) == 0 {
				return fmt.Errorf("at least one image is required: %w", pipeline.ErrEmptyBatch)
			}

			d, _, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}

			var result *pipeline.Result
			if fromBatch != "" {
				if err := d.Load(cmd.Context()); err != nil {
					return err
				}
				result, err = d.Regenerate(cmd.Context(), fromBatch)
			} else {
				files, closeAll, openErr := openFiles(args)
				defer closeAll()
				if openErr != nil {
					return openErr
				}
				result, err = d.Create(cmd.Context(), files)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n%s\n\n", result.Story.Title, result.Story.Content)
			fmt.Fprintf(out, "id: %s\n", result.Story.ID)
			if result.Captions.Failed > 0 {
				fmt.Fprintf(out, "warning: %d of %d images could not be analyzed\n", result.Captions.Failed, len(result.Images))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromBatch, "from-batch", "", "Regenerate from the images of an uploaded batch (story_id)")

	return cmd
}

func openFiles(paths []string) ([]models.UploadFile, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]models.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open %s: %w", p, err)
		}
		opened = append(opened, f)
		files = append(files, models.UploadFile{Filename: filepath.Base(p), Content: f})
	}
	return files, closeAll, nil
}
