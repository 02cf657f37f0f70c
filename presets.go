package proxyfix

// PresetSingleReverseProxy configures the middleware for an application
// behind exactly one reverse proxy (for example NGINX or a cloud load
// balancer), failing closed when the proxy hop is missing.
func PresetSingleReverseProxy() Option {
	return func(c *config) error {
		return applyOptions(c,
			TrustedProxyCount(1),
			Strict(),
		)
	}
}

// PresetCDNBehindReverseProxy configures the middleware for an application
// behind a CDN edge followed by a local reverse proxy. Both hops must be
// present.
func PresetCDNBehindReverseProxy() Option {
	return func(c *config) error {
		return applyOptions(c,
			TrustedProxyCount(2),
			Strict(),
		)
	}
}
