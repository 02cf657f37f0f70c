package proxyfix

import (
	"context"
	"net/http"
)

const (
	headerXForwardedFor   = "X-Forwarded-For"
	headerXForwardedHost  = "X-Forwarded-Host"
	headerXForwardedProto = "X-Forwarded-Proto"
)

// HeaderValues provides access to request header values by name.
//
// Implementations should return one slice entry per received header line.
// Header names are requested in canonical MIME format (for example
// "X-Forwarded-For"); lookups are expected to be case-insensitive.
//
// net/http's http.Header satisfies this interface directly.
type HeaderValues interface {
	Values(name string) []string
}

// HeaderValuesFunc adapts a function to the HeaderValues interface.
type HeaderValuesFunc func(name string) []string

// Values implements HeaderValues.
func (f HeaderValuesFunc) Values(name string) []string {
	if f == nil {
		return nil
	}

	return f(name)
}

// RequestInput provides framework-agnostic request data for building a
// RequestContext.
//
// Context defaults to context.Background() when nil. Scheme defaults to
// SchemeHTTP when empty.
type RequestInput struct {
	Context    context.Context
	RemoteAddr string
	Host       string
	Scheme     string
	Path       string
	Headers    HeaderValues
}

func requestInputContext(input RequestInput) context.Context {
	if input.Context == nil {
		return context.Background()
	}

	return input.Context
}

// NewRequestContext builds a RequestContext from transport-level request data.
func NewRequestContext(input RequestInput) *RequestContext {
	scheme := input.Scheme
	if scheme == "" {
		scheme = SchemeHTTP
	}

	return &RequestContext{
		RemoteAddr: input.RemoteAddr,
		Host:       input.Host,
		Scheme:     scheme,
	}
}

// ReadForwardedHeaders reads X-Forwarded-For, X-Forwarded-Host and
// X-Forwarded-Proto from h. A nil h yields empty headers.
//
// Every X-Forwarded-For line contributes to the chain. For the host and proto
// headers the first line wins, as with http.Header.Get.
func ReadForwardedHeaders(h HeaderValues) ForwardedHeaders {
	if h == nil || isNilInterface(h) {
		return ForwardedHeaders{}
	}

	return ForwardedHeaders{
		For:   ParseForwardedFor(h.Values(headerXForwardedFor)...),
		Host:  firstValue(h, headerXForwardedHost),
		Proto: firstValue(h, headerXForwardedProto),
	}
}

func firstValue(h HeaderValues, name string) string {
	values := h.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// requestContextFromHTTP builds a RequestContext from an *http.Request.
func requestContextFromHTTP(r *http.Request) *RequestContext {
	return &RequestContext{
		RemoteAddr: r.RemoteAddr,
		Host:       r.Host,
		Scheme:     requestScheme(r),
	}
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return SchemeHTTPS
	}
	if r.URL != nil && r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	return SchemeHTTP
}

func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	return r.URL.Path
}
