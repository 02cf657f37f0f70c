package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/abczzz13/proxyfix"
	"github.com/abczzz13/proxyfix/internal/config"
	"github.com/abczzz13/proxyfix/internal/server"
	proxyfixprom "github.com/abczzz13/proxyfix/prometheus"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /whoami, /healthz and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd)
		},
	}

	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, cmd *cobra.Command) error {
	logger := newLogger(cfg, cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mw, err := proxyfix.New(append(cfg.Options(),
		proxyfix.WithLogger(logger),
		proxyfixprom.WithRegisterer(reg),
	)...)
	if err != nil {
		return fmt.Errorf("build middleware: %w", err)
	}

	logger.Info("proxyfix configured",
		"trusted_proxy_count", mw.TrustedProxyCount(),
		"mode", mw.Mode().String(),
	)

	srv := server.New(cfg.Addr, server.NewRouter(mw, reg), logger, cfg.ReadHeaderTimeout, cfg.ShutdownTimeout)
	return srv.Run(ctx)
}
