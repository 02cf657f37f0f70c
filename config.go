package proxyfix

import (
	"fmt"
	"net/http"
)

// DefaultTrustedProxyCount is the number of proxy hops expected when
// TrustedProxyCount is not configured.
const DefaultTrustedProxyCount = 1

// Mode controls what happens when the X-Forwarded-For chain does not match the
// configured proxy topology.
type Mode int

const (
	// Start at 1 to avoid zero-value confusion and make invalid modes
	// explicit.
	//
	// ModePermissive leaves the remote address untouched and lets the request
	// through.
	ModePermissive Mode = iota + 1
	// ModeStrict fails closed with a MisconfigurationError.
	ModeStrict
)

// String returns the canonical text representation of m.
func (m Mode) String() string {
	switch m {
	case ModePermissive:
		return "permissive"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// valid reports whether m is a supported mode.
func (m Mode) valid() bool {
	return m == ModePermissive || m == ModeStrict
}

// ParseMode returns the Mode named by s ("permissive" or "strict").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "permissive":
		return ModePermissive, nil
	case "strict":
		return ModeStrict, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (must be %q or %q)", s, ModePermissive, ModeStrict)
	}
}

// Option configures a Middleware.
//
// Construct options using package-provided option builder functions.
type Option func(*config) error

// ErrorHandler writes the response for a request rejected by the middleware.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration state.
//
// It is mutated by Option functions during construction only.
type config struct {
	trustedProxyCount int
	mode              Mode

	logger       Logger
	metrics      Metrics
	errorHandler ErrorHandler

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func defaultConfig() *config {
	return &config{
		trustedProxyCount: DefaultTrustedProxyCount,
		mode:              ModePermissive,
		logger:            noopLogger{},
		metrics:           noopMetrics{},
		errorHandler:      defaultErrorHandler,
	}
}

func applyOptions(c *config, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	validationConfig := cfg
	if cfg.useMetricsFactory {
		validationConfig = cfg.clone()
		validationConfig.metrics = noopMetrics{}
	}

	if err := validationConfig.validate(); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics

		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *config) clone() *config {
	cloned := *c
	return &cloned
}
