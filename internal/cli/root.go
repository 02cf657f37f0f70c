// Package cli implements the proxyfixd command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abczzz13/proxyfix/internal/config"
)

type rootOptions struct {
	configFile string
	envFiles   []string
}

// NewRootCommand returns the proxyfixd root command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "proxyfixd",
		Short: "Reference server for the proxyfix middleware",
		Long: `proxyfixd serves a /whoami endpoint behind the proxyfix middleware, so a
proxy deployment can be checked end to end: the response shows the client
address, host and scheme the application would see, next to the values the
connection actually carried.

Settings come from defaults, an optional TOML file (--config), PROXYFIX_*
environment variables (with .env files preloaded) and flags, in that order.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	cmd.PersistentFlags().String("log-format", "", "Log format (text or json)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().Int("trusted-proxy-count", 0, "Number of proxies between the client and proxyfixd")
	cmd.PersistentFlags().Bool("strict", true, "Reject requests whose X-Forwarded-For chain is shorter than the proxy count")
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newServeCommand(opts), newResolveCommand(opts))

	return cmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig layers changed flags over the file and environment settings.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(config.Sources{
		File:     opts.configFile,
		EnvFiles: opts.envFiles,
	})
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("trusted-proxy-count") {
		cfg.TrustedProxyCount, _ = flags.GetInt("trusted-proxy-count")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Level()
	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
