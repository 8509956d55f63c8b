// File: cmd/helpers.go
package cmd

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/cdpctl/internal/client"
	"github.com/xkilldash9x/cdpctl/internal/devtools"
	"github.com/xkilldash9x/cdpctl/internal/netutil"
	"github.com/xkilldash9x/cdpctl/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// discoveryClient builds the REST discovery client for the configured
// endpoint.
func discoveryClient() *devtools.Client {
	httpCfg := netutil.NewDefaultClientConfig()
	httpCfg.RequestTimeout = cfg.Browser.DiscoveryTimeout
	httpCfg.Logger = observability.GetLogger()
	return devtools.NewClient(cfg.Browser.Endpoint(), netutil.NewClient(httpCfg), observability.GetLogger())
}

// attachSession resolves the target identifier (or raw ws:// URL) and
// attaches a protocol session to it. The caller owns the session and must
// Detach it.
func attachSession(ctx context.Context, targetOrURL string) (*client.Session, error) {
	wsURL, err := discoveryClient().ResolveWebSocketURL(ctx, targetOrURL)
	if err != nil {
		return nil, err
	}
	return client.Attach(ctx, wsURL, cfg.Client, observability.GetLogger())
}

// enableDomains issues the given parameterless enable commands concurrently.
func enableDomains(ctx context.Context, session *client.Session, methods ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, method := range methods {
		method := method
		g.Go(func() error {
			if _, err := session.Send(ctx, method, nil); err != nil {
				return fmt.Errorf("enable %s: %w", method, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// printJSON renders v on the command's stdout, honoring --pretty.
func printJSON(cmd *cobra.Command, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// printRawJSON re-indents an already-encoded JSON payload for output.
func printRawJSON(cmd *cobra.Command, raw []byte) error {
	if !pretty {
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		// Not JSON after all; emit verbatim.
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	return printJSON(cmd, v)
}
