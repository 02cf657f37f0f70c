package proxyfix

// Metrics records resolution outcomes and misconfiguration observations
// emitted by Middleware.
//
// Implementations should be safe for concurrent use, as a single Middleware
// instance is typically shared across many goroutines.
type Metrics interface {
	// RecordResolution is called once per Apply call with one of
	// OutcomeRewritten, OutcomeUnchanged or OutcomeRejected.
	RecordResolution(outcome string)
	// RecordMisconfiguration is called when the X-Forwarded-For chain does
	// not match the configured topology, in both modes.
	RecordMisconfiguration(cause string)
}

// noopMetrics is the default Metrics implementation when metrics are not
// explicitly configured.
type noopMetrics struct{}

func (noopMetrics) RecordResolution(string) {}

func (noopMetrics) RecordMisconfiguration(string) {}
