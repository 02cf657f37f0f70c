package prometheus

import (
	"errors"
	"fmt"

	"github.com/abczzz13/proxyfix"
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	requestsTotalName          = "proxyfix_requests_total"
	misconfigurationsTotalName = "proxyfix_misconfigurations_total"
	requestsTotalHelp          = "Requests processed by the proxy fix middleware by outcome (rewritten, unchanged, rejected)."
	misconfigurationsTotalHelp = "Requests whose X-Forwarded-For chain did not match the configured proxy count, labeled by cause."
)

// PrometheusMetrics is a Prometheus-backed implementation of proxyfix.Metrics.
type PrometheusMetrics struct {
	requestsTotal          *prom.CounterVec
	misconfigurationsTotal *prom.CounterVec
}

// WithMetrics returns a proxyfix option that installs Prometheus-backed
// metrics using prom.DefaultRegisterer.
func WithMetrics() proxyfix.Option {
	return withMetricsFactory(New)
}

// WithRegisterer returns a proxyfix option that installs Prometheus-backed
// metrics using the provided registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used.
func WithRegisterer(registerer prom.Registerer) proxyfix.Option {
	return withMetricsFactory(func() (*PrometheusMetrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// withMetricsFactory adapts a PrometheusMetrics constructor into a lazy
// proxyfix metrics factory, so collectors are only registered once the rest
// of the configuration is valid.
func withMetricsFactory(factory func() (*PrometheusMetrics, error)) proxyfix.Option {
	return proxyfix.WithMetricsFactory(func() (proxyfix.Metrics, error) {
		metrics, err := factory()
		if err != nil {
			return nil, err
		}
		return metrics, nil
	})
}

// New creates PrometheusMetrics and registers its collectors on
// prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(prom.DefaultRegisterer)
}

// NewWithRegisterer creates PrometheusMetrics and registers its collectors on
// the given registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used. If the metrics are
// already registered, existing compatible collectors are reused.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	requestsTotalCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: requestsTotalName,
			Help: requestsTotalHelp,
		},
		[]string{"outcome"},
	)
	misconfigurationsTotalCollector := prom.NewCounterVec(
		prom.CounterOpts{
			Name: misconfigurationsTotalName,
			Help: misconfigurationsTotalHelp,
		},
		[]string{"cause"},
	)

	requestsTotal, err := registerCounterVec(registerer, requestsTotalCollector, requestsTotalName)
	if err != nil {
		return nil, err
	}

	misconfigurationsTotal, err := registerCounterVec(registerer, misconfigurationsTotalCollector, misconfigurationsTotalName)
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{
		requestsTotal:          requestsTotal,
		misconfigurationsTotal: misconfigurationsTotal,
	}, nil
}

func registerCounterVec(registerer prom.Registerer, collector *prom.CounterVec, metricName string) (*prom.CounterVec, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(*prom.CounterVec)
			if ok {
				return existing, nil
			}
			return nil, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		return nil, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

// RecordResolution increments proxyfix_requests_total for the provided
// outcome.
func (m *PrometheusMetrics) RecordResolution(outcome string) {
	m.requestsTotal.WithLabelValues(outcome).Inc()
}

// RecordMisconfiguration increments proxyfix_misconfigurations_total for the
// provided cause.
func (m *PrometheusMetrics) RecordMisconfiguration(cause string) {
	m.misconfigurationsTotal.WithLabelValues(cause).Inc()
}
