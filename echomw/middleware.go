// Package echomw adapts proxyfix.Middleware to the Echo web framework.
//
// Echo resolves c.RealIP() from X-Forwarded-For on its own unless an
// IPExtractor is set. Install sets one that reads the rewritten RemoteAddr, so
// handlers see the address selected by proxyfix rather than the leftmost,
// client-controlled entry.
//
//	mw, err := proxyfix.New(proxyfix.PresetSingleReverseProxy())
//	if err != nil {
//		return err
//	}
//
//	e := echo.New()
//	echomw.Install(e, mw)
package echomw

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abczzz13/proxyfix"
)

// Middleware returns Echo middleware that applies m to every request.
//
// Rejected requests end with a 500 *echo.HTTPError wrapping the
// *proxyfix.MisconfigurationError, so Echo's HTTPErrorHandler decides the
// response body.
func Middleware(m *proxyfix.Middleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fixed, err := m.Request(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}

			c.SetRequest(fixed)
			return next(c)
		}
	}
}

// IPExtractor returns an echo.IPExtractor that reports the host part of
// RemoteAddr, which Middleware has already rewritten.
func IPExtractor() echo.IPExtractor {
	return func(r *http.Request) string {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
}

// Install registers Middleware on e ahead of routing and points e.IPExtractor
// at the rewritten RemoteAddr.
func Install(e *echo.Echo, m *proxyfix.Middleware) {
	e.IPExtractor = IPExtractor()
	e.Pre(Middleware(m))
}

// OriginalValues returns the request values recorded before the rewrite.
func OriginalValues(c echo.Context) (proxyfix.OriginalValues, bool) {
	return proxyfix.OriginalValuesFromRequest(c.Request())
}
