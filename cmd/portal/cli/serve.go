package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portalbi/dashboard-portal/docs"
	"github.com/portalbi/dashboard-portal/internal/app"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(version string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			docs.SwaggerInfo.Version = version

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			e := a.Router()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				log.Info().Msg("shutdown signal received")
			case serveErr = <-errCh:
				if serveErr != nil {
					log.Error().Err(serveErr).Msg("http server failed")
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := e.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown failed")
			}
			if err := a.Close(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("backend close error")
			}

			if serveErr != nil {
				return serveErr
			}
			log.Info().Msg("server exited cleanly")
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")

	return cmd
}
