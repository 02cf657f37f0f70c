package proxyfix

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func mustNewMiddleware(t *testing.T, opts ...Option) *Middleware {
	t.Helper()

	mw, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return mw
}

func newTestRequest(remoteAddr, path string) *http.Request {
	req := &http.Request{
		RemoteAddr: remoteAddr,
		Host:       "app.internal",
		Header:     make(http.Header),
		URL:        &url.URL{Path: path},
	}

	return req
}

func headersWith(pairs ...string) http.Header {
	h := make(http.Header)
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

func assertMisconfiguration(t *testing.T, err, cause error) *MisconfigurationError {
	t.Helper()

	if err == nil {
		t.Fatalf("error = nil, want %v", cause)
	}

	var misconfig *MisconfigurationError
	if !errors.As(err, &misconfig) {
		t.Fatalf("error = %T (%v), want *MisconfigurationError", err, err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want cause %v", err, cause)
	}

	return misconfig
}
