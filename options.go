package proxyfix

import "fmt"

// TrustedProxyCount sets the number of proxy hops expected between the client
// and the application. The client address is the n-th entry counted from the
// right of X-Forwarded-For.
func TrustedProxyCount(n int) Option {
	return func(c *config) error {
		c.trustedProxyCount = n
		return nil
	}
}

// WithMode sets strict or permissive handling of chain-length mismatches.
func WithMode(mode Mode) Option {
	return func(c *config) error {
		c.mode = mode
		return nil
	}
}

// Strict is shorthand for WithMode(ModeStrict).
func Strict() Option {
	return WithMode(ModeStrict)
}

// WithLogger sets the logger implementation used for misconfiguration
// warnings.
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}

// WithErrorHandler sets the handler that writes the response when Handler
// rejects a request.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) error {
		c.errorHandler = handler
		return nil
	}
}
