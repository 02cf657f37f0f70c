// Package proxyfix adds reverse-proxy support to HTTP applications by
// rewriting the remote address, host and scheme of each request from
// X-Forwarded-For, X-Forwarded-Host and X-Forwarded-Proto, without blindly
// trusting client-supplied forwarding data.
//
// # Features
//
//   - Client address selected by hop count: with n trusted proxies, the n-th
//     X-Forwarded-For entry from the right is the client
//   - Strict mode fails closed when fewer hops than configured are present
//   - Permissive default leaves the remote address untouched on mismatch
//   - Original remote address, host and scheme always recorded
//   - net/http Handler, framework-agnostic Apply/ApplyFrom and generic Process
//   - Optional observability with context-aware logging and pluggable metrics
//
// # Basic Usage
//
// Behind a single reverse proxy:
//
//	mw, err := proxyfix.New(proxyfix.TrustedProxyCount(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.ListenAndServe(":8080", mw.Handler(app))
//
// Inside the application, r.RemoteAddr, r.Host and r.URL.Scheme hold the
// forwarded values. The values seen on the wire are still available:
//
//	orig, _ := proxyfix.OriginalValuesFromRequest(r)
//	fmt.Println(orig.RemoteAddr)
//
// # Selecting the Client Address
//
// Each proxy appends the address of its peer to X-Forwarded-For. With
// "client, proxy1" arriving through two proxies, TrustedProxyCount(2) selects
// "client". Entries left of the selected one are whatever the client sent and
// are never used.
//
// # Strict Mode
//
// A deployment behind proxies should never see a chain shorter than its hop
// count; such a request either bypassed the proxies or passed through a
// broken one. Strict mode rejects it:
//
//	mw, _ := proxyfix.New(
//	    proxyfix.TrustedProxyCount(2),
//	    proxyfix.Strict(),
//	)
//
// Handler answers rejected requests with 500 Internal Server Error; the error
// is a deployment fault, not a client fault. Use WithErrorHandler to change
// the response. Apply and Process return a *MisconfigurationError wrapping
// ErrNoProxyDetected or ErrInsufficientProxyHops.
//
// # Observability
//
// The logger receives the request context, allowing trace/span IDs to flow
// through. A Prometheus adapter lives in github.com/abczzz13/proxyfix/prometheus.
//
//	mw, err := proxyfix.New(
//	    proxyfix.TrustedProxyCount(1),
//	    proxyfix.WithLogger(slog.Default()),
//	    proxyfixprom.WithRegisterer(registry),
//	)
//
// # Thread Safety
//
// Middleware instances are safe for concurrent use. A RequestContext belongs
// to one request and must not be shared.
package proxyfix
