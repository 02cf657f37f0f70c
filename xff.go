package proxyfix

import (
	"strings"
)

// typicalChainCapacity is the initial capacity used when parsing proxy chains.
//
// Most deployments have short chains (around 1-5 hops). Preallocating 8 avoids
// reallocations in common cases without meaningful memory overhead.
const typicalChainCapacity = 8

// ParseForwardedFor parses one or more X-Forwarded-For header values into an
// ordered chain, leftmost (original client) first.
//
// Values are split on commas, each element is trimmed, and empty elements are
// dropped. Multiple header lines are concatenated in wire order. No values, or
// only blank ones, yield a nil chain.
func ParseForwardedFor(values ...string) []string {
	if len(values) == 0 {
		return nil
	}

	var parts []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				if parts == nil {
					parts = make([]string, 0, typicalChainCapacity)
				}
				parts = append(parts, trimmed)
			}
		}
	}
	return parts
}

// ResolveClientAddress selects the client address from a parsed
// X-Forwarded-For chain, given that trustedProxyCount proxies each appended
// one hop after the client entry.
//
// When the chain holds at least trustedProxyCount entries, the entry at
// len(chain)-trustedProxyCount is returned with ok set, in every mode.
// Otherwise ModeStrict fails with a *MisconfigurationError and
// ModePermissive returns no selection and no error.
//
// trustedProxyCount values below 1 are treated as 1. The function is pure.
func ResolveClientAddress(chain []string, trustedProxyCount int, mode Mode) (addr string, ok bool, err error) {
	trustedProxyCount = max(trustedProxyCount, 1)

	if cause := chainMismatch(len(chain), trustedProxyCount); cause != nil {
		if mode == ModeStrict {
			return "", false, &MisconfigurationError{
				Err:               cause,
				ChainLength:       len(chain),
				TrustedProxyCount: trustedProxyCount,
			}
		}
		return "", false, nil
	}

	return chain[len(chain)-trustedProxyCount], true, nil
}

// chainMismatch returns the sentinel describing why a chain of chainLength
// entries cannot satisfy trustedProxyCount, or nil when it can.
func chainMismatch(chainLength, trustedProxyCount int) error {
	if chainLength == 0 {
		return ErrNoProxyDetected
	}
	if chainLength < trustedProxyCount {
		return ErrInsufficientProxyHops
	}
	return nil
}

func mismatchCause(err error) string {
	switch err {
	case ErrNoProxyDetected:
		return CauseNoProxyDetected
	case ErrInsufficientProxyHops:
		return CauseInsufficientProxyHops
	default:
		return ""
	}
}
