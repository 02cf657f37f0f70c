package proxyfix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Middleware rewrites the remote address, host and scheme of requests from
// proxy-injected headers, after checking the X-Forwarded-For chain against the
// configured number of proxy hops.
//
// Middleware instances are immutable and safe for concurrent reuse.
type Middleware struct {
	config *config
}

// New creates a Middleware from one or more Option builders.
func New(opts ...Option) (*Middleware, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Middleware{config: cfg}, nil
}

// TrustedProxyCount returns the configured number of proxy hops.
func (m *Middleware) TrustedProxyCount() int {
	return m.config.trustedProxyCount
}

// Mode returns the configured mode.
func (m *Middleware) Mode() Mode {
	return m.config.mode
}

// Resolve selects the client address from chain using the middleware's
// configuration. See ResolveClientAddress.
func (m *Middleware) Resolve(chain []string) (string, bool, error) {
	return ResolveClientAddress(chain, m.config.trustedProxyCount, m.config.mode)
}

// Apply rewrites rc from the forwarded headers in h.
//
// rc.Original is always written first. On error, rc is otherwise left
// untouched and the error is a *MisconfigurationError. Host and scheme are
// rewritten whenever X-Forwarded-Host and X-Forwarded-Proto are non-empty,
// independently of whether an address was selected.
func (m *Middleware) Apply(ctx context.Context, rc *RequestContext, h HeaderValues) (Resolution, error) {
	return m.apply(ctx, rc, ReadForwardedHeaders(h), "")
}

// ApplyFrom builds a RequestContext from framework-agnostic input and applies
// the forwarded headers of input to it.
func (m *Middleware) ApplyFrom(input RequestInput) (*RequestContext, Resolution, error) {
	rc := NewRequestContext(input)
	res, err := m.apply(requestInputContext(input), rc, ReadForwardedHeaders(input.Headers), input.Path)
	return rc, res, err
}

func (m *Middleware) apply(ctx context.Context, rc *RequestContext, fwd ForwardedHeaders, path string) (Resolution, error) {
	rc.Original = OriginalValues{
		RemoteAddr: rc.RemoteAddr,
		Host:       rc.Host,
		Scheme:     rc.Scheme,
	}

	res := Resolution{ChainLength: len(fwd.For)}

	if cause := chainMismatch(len(fwd.For), m.config.trustedProxyCount); cause != nil {
		m.recordMismatch(ctx, rc, cause, len(fwd.For), path)
	}

	addr, ok, err := m.Resolve(fwd.For)
	if err != nil {
		m.config.metrics.RecordResolution(OutcomeRejected)
		return res, err
	}

	if ok {
		rc.RemoteAddr = addr
		res.Addr = addr
		res.Rewritten = true
	}
	if fwd.Host != "" {
		rc.Host = fwd.Host
		res.HostRewritten = true
	}
	if fwd.Proto != "" {
		rc.Scheme = fwd.Proto
		res.SchemeRewritten = true
	}

	if res.Rewritten {
		m.config.metrics.RecordResolution(OutcomeRewritten)
	} else {
		m.config.metrics.RecordResolution(OutcomeUnchanged)
	}

	return res, nil
}

func (m *Middleware) recordMismatch(ctx context.Context, rc *RequestContext, cause error, chainLength int, path string) {
	event := mismatchCause(cause)
	m.config.metrics.RecordMisconfiguration(event)

	msg := "X-Forwarded-For chain shorter than trusted proxy count"
	if errors.Is(cause, ErrNoProxyDetected) {
		msg = "no proxy detected in X-Forwarded-For"
	}

	m.config.logger.WarnContext(ctx, msg,
		"event", event,
		"mode", m.config.mode.String(),
		"chain_length", chainLength,
		"trusted_proxy_count", m.config.trustedProxyCount,
		"remote_addr", rc.RemoteAddr,
		"path", path,
	)
}

// InnerHandler is the downstream handler a Middleware delegates to.
type InnerHandler[R any] interface {
	Handle(rc *RequestContext) R
}

// InnerHandlerFunc adapts a function to the InnerHandler interface.
type InnerHandlerFunc[R any] func(rc *RequestContext) R

// Handle implements InnerHandler.
func (f InnerHandlerFunc[R]) Handle(rc *RequestContext) R {
	return f(rc)
}

// Process applies m to rc and delegates to next, returning its result
// unchanged.
//
// When m rejects the request, next is not invoked and Process returns the
// zero R with the *MisconfigurationError.
func Process[R any](ctx context.Context, m *Middleware, rc *RequestContext, h HeaderValues, next InnerHandler[R]) (R, error) {
	if _, err := m.Apply(ctx, rc, h); err != nil {
		var zero R
		return zero, err
	}

	return next.Handle(rc), nil
}

// Handler wraps next so that every request is rewritten before it reaches
// next.
//
// The request passed to next is a shallow copy carrying the rewritten
// RemoteAddr, Host and URL.Scheme, and a context holding the OriginalValues.
// Rejected requests are answered by the configured ErrorHandler and never
// reach next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixed, err := m.Request(r)
		if err != nil {
			m.config.errorHandler(w, r, err)
			return
		}

		next.ServeHTTP(w, fixed)
	})
}

// Request returns a shallow copy of r with the forwarded headers applied.
// r itself is not modified.
func (m *Middleware) Request(r *http.Request) (*http.Request, error) {
	rc := requestContextFromHTTP(r)
	res, err := m.apply(r.Context(), rc, ReadForwardedHeaders(r.Header), requestPath(r))
	if err != nil {
		return nil, err
	}

	fixed := r.WithContext(WithOriginalValues(r.Context(), rc.Original))
	fixed.RemoteAddr = rc.RemoteAddr
	fixed.Host = rc.Host

	if res.SchemeRewritten {
		var u url.URL
		if r.URL != nil {
			u = *r.URL
		}
		u.Scheme = rc.Scheme
		fixed.URL = &u
	}

	return fixed, nil
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
