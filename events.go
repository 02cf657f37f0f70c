package proxyfix

// Resolution outcomes passed to Metrics.RecordResolution.
const (
	OutcomeRewritten = "rewritten"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
)

// Misconfiguration causes passed to Metrics.RecordMisconfiguration and used as
// the "event" log attribute.
const (
	CauseNoProxyDetected       = "no_proxy_detected"
	CauseInsufficientProxyHops = "insufficient_proxy_hops"
)
