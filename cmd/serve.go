package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/moment4u/moment4u/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local dashboard API",
		Long: `Starts a JSON API on the specified port that drives one dashboard session:
story listing and sorting, photo upload and story creation, the delete
workflow, the color mode, and transient status and notices.`,
		Example: `  # Start server on default port 8888
  moment4u serve

  # Start server on custom port
  moment4u serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := newDashboard(opts.cfg)
			if err != nil {
				return err
			}
			if err := d.Load(cmd.Context()); err != nil {
				// the dashboard can still be refreshed later
				slog.Warn("Initial story load failed", "err", err)
			}

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.New(d).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Moment4U dashboard available", "addr", addr, "url", "http://localhost"+addr, "api", opts.cfg.APIURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
