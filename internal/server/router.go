package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abczzz13/proxyfix"
)

// WhoAmI is the body returned by /whoami.
type WhoAmI struct {
	RemoteAddr string                   `json:"remote_addr"`
	Host       string                   `json:"host"`
	Scheme     string                   `json:"scheme"`
	Original   *proxyfix.OriginalValues `json:"original,omitempty"`
}

// NewRouter returns the proxyfixd routes. Only /whoami passes through mw;
// /healthz and /metrics answer probes that may not come through the proxy
// chain.
func NewRouter(mw *proxyfix.Middleware, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(mw.Handler)
		r.Get("/whoami", whoAmI)
	})

	return r
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	body := WhoAmI{
		RemoteAddr: r.RemoteAddr,
		Host:       r.Host,
		Scheme:     requestScheme(r),
	}
	if orig, ok := proxyfix.OriginalValuesFromRequest(r); ok {
		body.Original = &orig
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func requestScheme(r *http.Request) string {
	if r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	if r.TLS != nil {
		return proxyfix.SchemeHTTPS
	}
	return proxyfix.SchemeHTTP
}
