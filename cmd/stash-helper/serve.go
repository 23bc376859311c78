package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/api"
	"github.com/rotmg-stash/stash-helper/pkg/logger"
)

// serveConfig holds flags for the serve command.
type serveConfig struct {
	port int
	host string
}

// newServeCmd creates the serve subcommand.
func newServeCmd(opts *rootOptions) *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the commands to a local UI over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.port, "port", 0, "listen port (env BRIDGE_PORT)")
	cmd.Flags().StringVar(&cfg.host, "host", "127.0.0.1", "listen address")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, cfg *serveConfig) error {
	logg := logger.L()
	port := cfg.port
	if port == 0 {
		port = opts.cfg.BridgePort
	}

	d, err := buildDeps(opts.cfg, logg, opts.extractor)
	if err != nil {
		return err
	}
	defer d.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:           opts.cfg.HTTPReadTimeout,
		WriteTimeout:          opts.cfg.HTTPWriteTimeout,
		IdleTimeout:           opts.cfg.HTTPIdleTimeout,
		DisableStartupMessage: true,
	})

	handler := api.NewBridgeHandler(logg, d.service, opts.cfg.DeviceToken)
	api.RegisterRoutes(app, d.guard, handler)

	addr := fmt.Sprintf("%s:%d", cfg.host, port)
	errCh := make(chan error, 1)
	go func() {
		logg.Info("bridge.listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error("fiber.listen_failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info("bridge.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warn("fiber.shutdown_failed", zap.Error(err))
	}
	return nil
}
