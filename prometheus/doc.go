// Package prometheus provides a Prometheus adapter for
// github.com/abczzz13/proxyfix.
//
// The package exposes proxyfix options that install a Prometheus-backed
// Metrics implementation on a middleware, using either the default registerer
// or a caller-provided registerer.
package prometheus
