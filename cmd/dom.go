// File: cmd/dom.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/cdpctl/internal/client"
)

// evaluateParams is the Runtime.evaluate request shape this tool uses.
type evaluateParams struct {
	Expression    string `json:"expression"`
	ReturnByValue bool   `json:"returnByValue,omitempty"`
	AwaitPromise  bool   `json:"awaitPromise,omitempty"`
	ReplMode      bool   `json:"replMode,omitempty"`
}

// evaluateStringValue runs an expression and extracts its by-value string
// result.
func evaluateStringValue(ctx context.Context, session *client.Session, expression string) (string, error) {
	raw, err := session.Send(ctx, "Runtime.evaluate", evaluateParams{
		Expression:    expression,
		ReturnByValue: true,
	})
	if err != nil {
		return "", err
	}

	var parsed struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode evaluate result: %w", err)
	}
	return parsed.Result.Value, nil
}

func newGetDOMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-dom <target-id>",
		Short: "Print the page's visible text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			text, err := evaluateStringValue(ctx, session,
				"document.documentElement ? document.documentElement.innerText : ''")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newGetHTMLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-html <target-id>",
		Short: "Print the page's serialized HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			html, err := evaluateStringValue(ctx, session,
				"document.documentElement ? document.documentElement.outerHTML : ''")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
}

func newGetDOMSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-dom-snapshot <target-id>",
		Short: "Capture a structured DOM snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if _, err := session.Send(ctx, "DOMSnapshot.enable", nil); err != nil {
				return err
			}
			snapshot, err := session.Send(ctx, "DOMSnapshot.captureSnapshot",
				map[string][]string{"computedStyles": {}})
			if err != nil {
				return err
			}
			return printRawJSON(cmd, snapshot)
		},
	}
}

func newEvalCmd() *cobra.Command {
	var (
		byValue      bool
		awaitPromise bool
	)

	cmd := &cobra.Command{
		Use:   "eval <target-id> <expression>",
		Short: "Evaluate a JavaScript expression in the page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			result, err := session.Send(ctx, "Runtime.evaluate", evaluateParams{
				Expression:    args[1],
				ReturnByValue: byValue,
				AwaitPromise:  awaitPromise,
				ReplMode:      true,
			})
			if err != nil {
				return err
			}
			return printRawJSON(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&byValue, "by-value", false, "serialize the result by value")
	cmd.Flags().BoolVar(&awaitPromise, "await-promise", false, "await a promise result before returning")
	return cmd
}
