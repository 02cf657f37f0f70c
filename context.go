package proxyfix

import (
	"context"
	"net/http"
)

// originalValuesKey is the context key under which Handler stores the
// pre-rewrite request values. The unexported type keeps the key private to
// this package.
type originalValuesKey struct{}

// WithOriginalValues returns a copy of ctx carrying v.
func WithOriginalValues(ctx context.Context, v OriginalValues) context.Context {
	return context.WithValue(ctx, originalValuesKey{}, v)
}

// OriginalValuesFromContext returns the values recorded by Handler before it
// rewrote the request. ok is false when the request did not pass through a
// Middleware.
func OriginalValuesFromContext(ctx context.Context) (v OriginalValues, ok bool) {
	if ctx == nil {
		return OriginalValues{}, false
	}
	v, ok = ctx.Value(originalValuesKey{}).(OriginalValues)
	return v, ok
}

// OriginalValuesFromRequest is OriginalValuesFromContext(r.Context()).
func OriginalValuesFromRequest(r *http.Request) (OriginalValues, bool) {
	if r == nil {
		return OriginalValues{}, false
	}
	return OriginalValuesFromContext(r.Context())
}
