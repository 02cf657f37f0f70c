package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abczzz13/proxyfix"
	"github.com/abczzz13/proxyfix/internal/config"
)

// resolveOutput is the JSON document printed by the resolve command.
type resolveOutput struct {
	Chain             []string                `json:"chain"`
	TrustedProxyCount int                     `json:"trusted_proxy_count"`
	Mode              string                  `json:"mode"`
	RemoteAddr        string                  `json:"remote_addr"`
	Host              string                  `json:"host"`
	Scheme            string                  `json:"scheme"`
	Rewritten         bool                    `json:"rewritten"`
	Original          proxyfix.OriginalValues `json:"original"`
	Error             string                  `json:"error,omitempty"`
}

type resolveOptions struct {
	forwardedFor   []string
	forwardedHost  string
	forwardedProto string
	remoteAddr     string
	host           string
}

func newResolveCommand(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Evaluate forwarded headers offline and print the result as JSON",
		Example: `  proxyfixd resolve --xff "203.0.113.7, 10.0.0.1" --trusted-proxy-count 2
  proxyfixd resolve --xff 203.0.113.7 --xff 10.0.0.1 --proto https --strict=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			return runResolve(cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.forwardedFor, "xff", nil, "X-Forwarded-For header line (repeatable)")
	flags.StringVar(&opts.forwardedHost, "forwarded-host", "", "X-Forwarded-Host header value")
	flags.StringVar(&opts.forwardedProto, "proto", "", "X-Forwarded-Proto header value")
	flags.StringVar(&opts.remoteAddr, "remote-addr", "127.0.0.1:0", "Peer address of the simulated connection")
	flags.StringVar(&opts.host, "host", "localhost", "Host of the simulated request")

	return cmd
}

func runResolve(w io.Writer, cfg config.Config, opts *resolveOptions) error {
	mw, err := proxyfix.New(cfg.Options()...)
	if err != nil {
		return fmt.Errorf("build middleware: %w", err)
	}

	headers := make(http.Header)
	for _, v := range opts.forwardedFor {
		headers.Add("X-Forwarded-For", v)
	}
	if opts.forwardedHost != "" {
		headers.Set("X-Forwarded-Host", opts.forwardedHost)
	}
	if opts.forwardedProto != "" {
		headers.Set("X-Forwarded-Proto", opts.forwardedProto)
	}

	rc, res, resolveErr := mw.ApplyFrom(proxyfix.RequestInput{
		RemoteAddr: opts.remoteAddr,
		Host:       opts.host,
		Headers:    headers,
	})

	out := resolveOutput{
		Chain:             proxyfix.ParseForwardedFor(opts.forwardedFor...),
		TrustedProxyCount: mw.TrustedProxyCount(),
		Mode:              mw.Mode().String(),
		RemoteAddr:        rc.RemoteAddr,
		Host:              rc.Host,
		Scheme:            rc.Scheme,
		Rewritten:         res.Rewritten,
		Original:          rc.Original,
	}
	if out.Chain == nil {
		out.Chain = []string{}
	}
	if resolveErr != nil {
		out.Error = resolveErr.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	var misconfig *proxyfix.MisconfigurationError
	if errors.As(resolveErr, &misconfig) {
		return fmt.Errorf("request rejected: %w", misconfig.Err)
	}
	return resolveErr
}
