// File: cmd/stream.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// Event names consumed by the streaming commands.
const (
	eventConsoleAPICalled = "Runtime.consoleAPICalled"
	eventLogEntryAdded    = "Log.entryAdded"
	eventRequestSent      = "Network.requestWillBeSent"
	eventResponseReceived = "Network.responseReceived"
)

// networkLogRate caps printed network events per second so a busy page
// cannot flood the terminal. Excess lines are counted and reported at the
// end.
const networkLogRate = 200

func newConsoleLogCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "console-log <target-id>",
		Short: "Stream console output and browser log entries for a while",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if err := enableDomains(ctx, session, "Runtime.enable", "Log.enable"); err != nil {
				return err
			}

			sub := session.On(eventConsoleAPICalled, eventLogEntryAdded)
			defer sub.Unsubscribe()

			timer := time.NewTimer(duration)
			defer timer.Stop()

			out := cmd.OutOrStdout()
			for {
				select {
				case ev, ok := <-sub.Events():
					if !ok {
						return fmt.Errorf("session ended while streaming")
					}
					switch ev.Method {
					case eventConsoleAPICalled:
						var call struct {
							Type string      `json:"type"`
							Args interface{} `json:"args"`
						}
						if err := json.Unmarshal(ev.Params, &call); err != nil {
							continue
						}
						rendered, _ := json.Marshal(call.Args)
						fmt.Fprintf(out, "console.%s: %s\n", call.Type, rendered)
					case eventLogEntryAdded:
						fmt.Fprintf(out, "log: %s\n", ev.Params)
					}
				case <-timer.C:
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to stream")
	return cmd
}

func newNetworkLogCmd() *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "network-log <target-id>",
		Short: "Stream request/response activity for a while",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if err := enableDomains(ctx, session, "Network.enable"); err != nil {
				return err
			}

			sub := session.On(eventRequestSent, eventResponseReceived)
			defer sub.Unsubscribe()

			timer := time.NewTimer(duration)
			defer timer.Stop()

			limiter := rate.NewLimiter(rate.Limit(networkLogRate), networkLogRate)
			var throttled uint64

			out := cmd.OutOrStdout()
			defer func() {
				if throttled > 0 {
					fmt.Fprintf(out, "(%d events not shown: output rate limit)\n", throttled)
				}
			}()

			for {
				select {
				case ev, ok := <-sub.Events():
					if !ok {
						return fmt.Errorf("session ended while streaming")
					}
					if !limiter.Allow() {
						throttled++
						continue
					}
					switch ev.Method {
					case eventRequestSent:
						var sent struct {
							Request struct {
								Method string `json:"method"`
								URL    string `json:"url"`
							} `json:"request"`
						}
						if err := json.Unmarshal(ev.Params, &sent); err != nil {
							continue
						}
						fmt.Fprintf(out, "REQ %s %s\n", sent.Request.Method, sent.Request.URL)
					case eventResponseReceived:
						var received struct {
							Response struct {
								Status int    `json:"status"`
								URL    string `json:"url"`
							} `json:"response"`
						}
						if err := json.Unmarshal(ev.Params, &received); err != nil {
							continue
						}
						fmt.Fprintf(out, "RES %d %s\n", received.Response.Status, received.Response.URL)
					}
				case <-timer.C:
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to stream")
	return cmd
}
