// File: cmd/tabs.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListTabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-tabs",
		Short: "List the browser's inspectable targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := discoveryClient().Targets(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, targets)
		},
	}
}

func newBrowserInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browser-info",
		Short: "Show browser build and protocol version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := discoveryClient().Version(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

func newNewTabCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "new-tab [url]",
		Short: "Open a new tab, optionally pre-navigated to a URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			target, err := discoveryClient().NewTab(cmd.Context(), url)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, target)
			}
			fmt.Fprintln(cmd.OutOrStdout(), target.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full target record instead of just the id")
	return cmd
}

func newCloseTabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close-tab <target-id>",
		Short: "Close a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := discoveryClient().CloseTab(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newActivateTabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate-tab <target-id>",
		Short: "Bring a tab to the foreground",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := discoveryClient().ActivateTab(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}
