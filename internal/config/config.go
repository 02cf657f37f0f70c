// Package config loads proxyfixd settings.
//
// Values are layered: built-in defaults, then an optional TOML file, then
// environment variables (with .env files preloaded), then command-line flags
// applied by the caller.
//
//	cfg, err := config.Load(config.Sources{File: "proxyfixd.toml"})
//	if err != nil {
//		return err
//	}
//	mw, err := proxyfix.New(cfg.Options()...)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abczzz13/proxyfix"
)

const (
	DefaultAddr              = ":8080"
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds proxyfixd settings. Environment variable names carry the
// PROXYFIX_ prefix.
type Config struct {
	Addr              string        `toml:"addr" env:"ADDR"`
	TrustedProxyCount int           `toml:"trusted_proxy_count" env:"TRUSTED_PROXY_COUNT"`
	Strict            bool          `toml:"strict" env:"STRICT"`
	LogFormat         string        `toml:"log_format" env:"LOG_FORMAT"`
	LogLevel          string        `toml:"log_level" env:"LOG_LEVEL"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
}

// Sources names the optional inputs Load reads.
type Sources struct {
	// File is a TOML config file. Empty skips it.
	File string
	// EnvFiles are dotenv files loaded before parsing the environment.
	// Missing files are ignored. Variables already set in the process
	// environment are not overridden.
	EnvFiles []string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Default returns the built-in configuration. proxyfixd is meant to be
// deployed behind proxies, so it fails closed by default.
func Default() Config {
	return Config{
		Addr:              DefaultAddr,
		TrustedProxyCount: proxyfix.DefaultTrustedProxyCount,
		Strict:            true,
		LogFormat:         LogFormatText,
		LogLevel:          "info",
		ShutdownTimeout:   DefaultShutdownTimeout,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}
}

// Load builds a Config from defaults, src.File and the environment, and
// validates the result.
func Load(src Sources) (Config, error) {
	cfg := Default()

	if src.File != "" {
		if _, err := toml.DecodeFile(src.File, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", src.File, err)
		}
	}

	if err := loadEnvFiles(src.EnvFiles); err != nil {
		return Config{}, err
	}

	opts := env.Options{Prefix: "PROXYFIX_"}
	if src.Environment != nil {
		opts.Environment = src.Environment
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.TrustedProxyCount < 1 {
		return fmt.Errorf("trusted_proxy_count must be >= 1, got %d", c.TrustedProxyCount)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("read_header_timeout must be positive, got %s", c.ReadHeaderTimeout)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Mode returns the proxyfix mode selected by Strict.
func (c Config) Mode() proxyfix.Mode {
	if c.Strict {
		return proxyfix.ModeStrict
	}
	return proxyfix.ModePermissive
}

// Options converts c into proxyfix options.
func (c Config) Options() []proxyfix.Option {
	return []proxyfix.Option{
		proxyfix.TrustedProxyCount(c.TrustedProxyCount),
		proxyfix.WithMode(c.Mode()),
	}
}
