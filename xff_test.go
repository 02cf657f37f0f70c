package proxyfix

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseForwardedFor(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "single value",
			values: []string{"1.1.1.1"},
			want:   []string{"1.1.1.1"},
		},
		{
			name:   "single value with multiple IPs",
			values: []string{"1.1.1.1, 8.8.8.8"},
			want:   []string{"1.1.1.1", "8.8.8.8"},
		},
		{
			name:   "multiple header lines combined in order",
			values: []string{"1.1.1.1", "8.8.8.8, 9.9.9.9"},
			want:   []string{"1.1.1.1", "8.8.8.8", "9.9.9.9"},
		},
		{
			name:   "whitespace trimmed",
			values: []string{"  1.1.1.1  ,\t8.8.8.8  "},
			want:   []string{"1.1.1.1", "8.8.8.8"},
		},
		{
			name:   "empty elements dropped",
			values: []string{",1.1.1.1, , ,8.8.8.8,"},
			want:   []string{"1.1.1.1", "8.8.8.8"},
		},
		{
			name:   "entries are not validated",
			values: []string{"unknown, not-an-ip, [::1]:80"},
			want:   []string{"unknown", "not-an-ip", "[::1]:80"},
		},
		{
			name:   "blank header",
			values: []string{"  "},
			want:   nil,
		},
		{
			name:   "only commas",
			values: []string{" , ,"},
			want:   nil,
		},
		{
			name:   "no values",
			values: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseForwardedFor(tt.values...)

			if len(got) != len(tt.want) {
				t.Fatalf("ParseForwardedFor() = %q, want %q", got, tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseForwardedFor()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolveClientAddress(t *testing.T) {
	tests := []struct {
		name              string
		chain             []string
		trustedProxyCount int
		mode              Mode
		wantAddr          string
		wantOK            bool
		wantErr           error
	}{
		{
			name:              "one proxy selects rightmost",
			chain:             []string{"1.2.3.4", "10.0.0.1"},
			trustedProxyCount: 1,
			mode:              ModePermissive,
			wantAddr:          "10.0.0.1",
			wantOK:            true,
		},
		{
			name:              "one proxy selects rightmost in strict mode",
			chain:             []string{"1.2.3.4", "10.0.0.1"},
			trustedProxyCount: 1,
			mode:              ModeStrict,
			wantAddr:          "10.0.0.1",
			wantOK:            true,
		},
		{
			name:              "two proxies select second from right",
			chain:             []string{"6.6.6.6", "1.2.3.4", "10.0.0.1"},
			trustedProxyCount: 2,
			mode:              ModeStrict,
			wantAddr:          "1.2.3.4",
			wantOK:            true,
		},
		{
			name:              "chain length equal to proxy count selects leftmost",
			chain:             []string{"1.2.3.4", "10.0.0.1"},
			trustedProxyCount: 2,
			mode:              ModeStrict,
			wantAddr:          "1.2.3.4",
			wantOK:            true,
		},
		{
			name:              "insufficient hops permissive",
			chain:             []string{"1.2.3.4"},
			trustedProxyCount: 2,
			mode:              ModePermissive,
		},
		{
			name:              "insufficient hops strict",
			chain:             []string{"1.2.3.4"},
			trustedProxyCount: 2,
			mode:              ModeStrict,
			wantErr:           ErrInsufficientProxyHops,
		},
		{
			name:              "empty chain permissive",
			chain:             nil,
			trustedProxyCount: 1,
			mode:              ModePermissive,
		},
		{
			name:              "empty chain strict",
			chain:             nil,
			trustedProxyCount: 1,
			mode:              ModeStrict,
			wantErr:           ErrNoProxyDetected,
		},
		{
			name:              "empty chain strict with many proxies reports no proxy",
			chain:             []string{},
			trustedProxyCount: 3,
			mode:              ModeStrict,
			wantErr:           ErrNoProxyDetected,
		},
		{
			name:              "zero proxy count treated as one",
			chain:             []string{"1.2.3.4", "10.0.0.1"},
			trustedProxyCount: 0,
			mode:              ModeStrict,
			wantAddr:          "10.0.0.1",
			wantOK:            true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, ok, err := ResolveClientAddress(tt.chain, tt.trustedProxyCount, tt.mode)

			if tt.wantErr != nil {
				misconfig := assertMisconfiguration(t, err, tt.wantErr)
				if misconfig.ChainLength != len(tt.chain) {
					t.Errorf("ChainLength = %d, want %d", misconfig.ChainLength, len(tt.chain))
				}
				if misconfig.TrustedProxyCount != tt.trustedProxyCount {
					t.Errorf("TrustedProxyCount = %d, want %d", misconfig.TrustedProxyCount, tt.trustedProxyCount)
				}
				if ok || addr != "" {
					t.Errorf("ResolveClientAddress() = (%q, %v), want no selection on error", addr, ok)
				}
				return
			}

			if err != nil {
				t.Fatalf("ResolveClientAddress() error = %v", err)
			}
			if ok != tt.wantOK || addr != tt.wantAddr {
				t.Fatalf("ResolveClientAddress() = (%q, %v), want (%q, %v)", addr, ok, tt.wantAddr, tt.wantOK)
			}
		})
	}
}

func TestResolveClientAddress_IndexProperty(t *testing.T) {
	for length := 1; length <= 6; length++ {
		chain := make([]string, length)
		for i := range chain {
			chain[i] = fmt.Sprintf("10.0.0.%d", i+1)
		}

		for count := 1; count <= length; count++ {
			for _, mode := range []Mode{ModePermissive, ModeStrict} {
				addr, ok, err := ResolveClientAddress(chain, count, mode)
				if err != nil {
					t.Fatalf("len=%d count=%d mode=%s: error = %v", length, count, mode, err)
				}
				if !ok || addr != chain[length-count] {
					t.Fatalf("len=%d count=%d mode=%s: got (%q, %v), want %q", length, count, mode, addr, ok, chain[length-count])
				}
			}
		}

		for count := length + 1; count <= length+3; count++ {
			if _, ok, err := ResolveClientAddress(chain, count, ModePermissive); ok || err != nil {
				t.Fatalf("len=%d count=%d permissive: got ok=%v err=%v, want no selection", length, count, ok, err)
			}
			if _, _, err := ResolveClientAddress(chain, count, ModeStrict); !errors.Is(err, ErrInsufficientProxyHops) {
				t.Fatalf("len=%d count=%d strict: error = %v, want ErrInsufficientProxyHops", length, count, err)
			}
		}
	}
}

func TestResolveClientAddress_Idempotent(t *testing.T) {
	chain := []string{"1.2.3.4", "5.6.7.8", "10.0.0.1"}

	first, firstOK, firstErr := ResolveClientAddress(chain, 2, ModeStrict)
	for range 10 {
		addr, ok, err := ResolveClientAddress(chain, 2, ModeStrict)
		if addr != first || ok != firstOK || err != firstErr {
			t.Fatalf("ResolveClientAddress() = (%q, %v, %v), want (%q, %v, %v)", addr, ok, err, first, firstOK, firstErr)
		}
	}

	if chain[0] != "1.2.3.4" || chain[1] != "5.6.7.8" || chain[2] != "10.0.0.1" {
		t.Fatalf("chain mutated: %q", chain)
	}
}
