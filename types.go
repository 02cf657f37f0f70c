package proxyfix

import (
	"errors"
	"fmt"
)

var (
	ErrNoProxyDetected = errors.New("no proxy detected")

	ErrInsufficientProxyHops = errors.New("insufficient proxy hops")
)

const (
	// SchemeHTTP is the scheme of plain-text requests.
	SchemeHTTP = "http"
	// SchemeHTTPS is the scheme of TLS requests.
	SchemeHTTPS = "https"
)

// MisconfigurationError reports that the X-Forwarded-For chain of a request
// does not match the configured proxy topology.
//
// It is only returned in ModeStrict. Err is ErrNoProxyDetected or
// ErrInsufficientProxyHops.
type MisconfigurationError struct {
	Err               error
	ChainLength       int
	TrustedProxyCount int
}

func (e *MisconfigurationError) Error() string {
	return fmt.Sprintf("proxy misconfiguration: %v (chain_length=%d, trusted_proxy_count=%d): %s",
		e.Err, e.ChainLength, e.TrustedProxyCount, e.hint())
}

func (e *MisconfigurationError) Unwrap() error {
	return e.Err
}

func (e *MisconfigurationError) hint() string {
	if errors.Is(e.Err, ErrNoProxyDetected) {
		return "do not enable strict mode unless the application is reached through a proxy"
	}
	return "check the trusted proxy count setting"
}

// OriginalValues records the request fields as observed before any forwarded
// header was applied.
type OriginalValues struct {
	RemoteAddr string `json:"remote_addr"`
	Host       string `json:"host"`
	Scheme     string `json:"scheme"`
}

// RequestContext is the per-request metadata read and rewritten by a
// Middleware.
//
// A RequestContext belongs to a single request and must not be shared between
// goroutines.
type RequestContext struct {
	// RemoteAddr is the peer address. After a successful rewrite it holds the
	// address selected from X-Forwarded-For, without a port.
	RemoteAddr string
	// Host is the value used for routing and URL generation.
	Host string
	// Scheme is the URL scheme, normally SchemeHTTP or SchemeHTTPS.
	Scheme string

	// Original is written by every Apply call, whether or not a field was
	// rewritten.
	Original OriginalValues
}

// ForwardedHeaders is a read-only view of the proxy headers of one request.
type ForwardedHeaders struct {
	// For is the parsed X-Forwarded-For chain, leftmost entry first.
	For   []string
	Host  string
	Proto string
}

// Resolution describes the outcome of one Apply call.
type Resolution struct {
	// Addr is the selected client address. Empty when nothing was selected.
	Addr string
	// Rewritten reports whether RemoteAddr was replaced.
	Rewritten bool
	// HostRewritten reports whether Host was replaced by X-Forwarded-Host.
	HostRewritten bool
	// SchemeRewritten reports whether Scheme was replaced by
	// X-Forwarded-Proto.
	SchemeRewritten bool
	// ChainLength is the number of X-Forwarded-For entries seen.
	ChainLength int
}
