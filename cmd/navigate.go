// File: cmd/navigate.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cdpctl/internal/client"
)

func newNavigateCmd() *cobra.Command {
	var wait string

	cmd := &cobra.Command{
		Use:   "navigate <target-id> <url>",
		Short: "Navigate a tab to a URL, optionally waiting for a readiness milestone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch wait {
			case "none", "dom", "load", "idle":
			default:
				return fmt.Errorf("--wait must be one of none|dom|load|idle, got %q", wait)
			}

			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if err := enableDomains(ctx, session, "Page.enable", "Network.enable", "Runtime.enable"); err != nil {
				return err
			}

			// Armed before the navigation: on fast pages the milestone can
			// fire before the navigate response returns, and events are
			// never replayed.
			var waiter *client.Waiter
			switch wait {
			case "dom":
				waiter = session.ArmDOMReady()
			case "load":
				waiter = session.ArmLoad()
			case "idle":
				waiter = session.ArmNetworkIdle(cfg.Client.NetworkIdleQuiet)
			}
			if waiter != nil {
				defer waiter.Cancel()
			}

			params := map[string]string{"url": args[1]}
			if _, err := session.Send(ctx, "Page.navigate", params); err != nil {
				return fmt.Errorf("navigate: %w", err)
			}

			if waiter != nil {
				return waiter.Wait(ctx, cfg.Client.WaitTimeout)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&wait, "wait", "none", "readiness milestone to wait for: none|dom|load|idle")
	return cmd
}
