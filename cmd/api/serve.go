package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"backend/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.NewServer(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server listening", zap.String("addr", srv.HTTP.Addr))
				if err := srv.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				a.log.Error("http server error", zap.Error(err))
			}

			a.log.Info("shutting down server gracefully")
			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.log.Error("server shutdown", zap.Error(err))
				return err
			}
			a.log.Info("server exiting")
			return nil
		},
	}
}
