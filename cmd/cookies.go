// File: cmd/cookies.go
package cmd

import (
	"github.com/spf13/cobra"
)

func newListCookiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-cookies <target-id>",
		Short: "List all browser cookies visible to a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if _, err := session.Send(ctx, "Network.enable", nil); err != nil {
				return err
			}
			cookies, err := session.Send(ctx, "Network.getAllCookies", nil)
			if err != nil {
				return err
			}
			return printRawJSON(cmd, cookies)
		},
	}
}
