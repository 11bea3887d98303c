package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/moment4u/moment4u/internal/config"
	"github.com/spf13/cobra"
)

// options shared by every subcommand
type rootOptions struct {
	verbose   bool
	apiURL    string
	narrator  string
	model     string
	captioner string
	locale    string
	cfg       config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "moment4u",
		Short: "Turn photo batches into short AI-written stories",
		Long: `Moment4U uploads up to four photos at a time, captions each one, and asks a
language model to write and title a short story about them.

Stories are kept by the Moment4U story service; this tool lists, creates,
deletes and exports them, and can serve a local dashboard API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			opts.cfg = config.Load()
			if opts.apiURL != "" {
				opts.cfg.APIURL = opts.apiURL
			}
			if opts.locale != "" {
				opts.cfg.Locale = opts.locale
			}
			if opts.narrator != "" {
				opts.cfg.Narrator = opts.narrator
				opts.cfg.Model = config.DefaultModel(opts.narrator)
			}
			if opts.model != "" {
				opts.cfg.Model = opts.model
			}
			if opts.captioner != "" {
				opts.cfg.Captioner = opts.captioner
				opts.cfg.CaptionModel = config.DefaultCaptionModel(opts.captioner)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Story service base URL (overrides MOMENT4U_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.narrator, "narrator", "", "Story generator: remote, gemini, ollama or openai")
	cmd.PersistentFlags().StringVar(&opts.model, "model", "", "Model name (defaults to the narrator's default)")
	cmd.PersistentFlags().StringVar(&opts.captioner, "captioner", "", "Image captioner: remote (BLIP), gemini, ollama or openai")
	cmd.PersistentFlags().StringVar(&opts.locale, "locale", "", "Locale used to sort titles")

	// Add subcommands
	cmd.AddCommand(newStoriesCmd(opts))
	cmd.AddCommand(newImagesCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newThemeCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}
