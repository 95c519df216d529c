package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/shindakun/loginpage/internal/config"
	"github.com/shindakun/loginpage/internal/metrics"
	"github.com/shindakun/loginpage/internal/session"
	"github.com/shindakun/loginpage/internal/version"
	"github.com/shindakun/loginpage/internal/web"
	"github.com/shindakun/loginpage/internal/web/handlers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				opts.logger.WithError(err).Error("Failed to load configuration")
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, opts.logger)
		},
	}
}

// newServer builds the HTTP server for cfg without starting it
func newServer(cfg *config.Config, logger *logrus.Logger) (*http.Server, error) {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	h, err := handlers.New(cfg, handlers.Deps{
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.CookieSecure(), cfg.CookieSameSite())

	return &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      web.NewRouter(cfg, h, sessions, m, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     newServerErrorLog(logger),
	}, nil
}

// serve runs the server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version":  version.GetVersion(),
		"addr":     cfg.GetAddr(),
		"base_url": cfg.GetBaseURL(),
		"csrf":     cfg.Server.Security.CSRFEnabled,
		"metrics":  cfg.Metrics.Enabled,
	}).Info("Configuration loaded successfully")

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on http://%s", cfg.GetAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server failed to start")
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server exited successfully")
	return nil
}
