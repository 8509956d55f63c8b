// File: cmd/capture.go
package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// captureData extracts and decodes the base64 payload of a capture command
// (screenshot, PDF).
func captureData(raw []byte) ([]byte, error) {
	var parsed struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode capture result: %w", err)
	}
	if parsed.Data == "" {
		return nil, fmt.Errorf("capture produced no data")
	}
	decoded, err := base64.StdEncoding.DecodeString(parsed.Data)
	if err != nil {
		return nil, fmt.Errorf("decode capture payload: %w", err)
	}
	return decoded, nil
}

func newScreenshotCmd() *cobra.Command {
	var (
		out      string
		fullPage bool
		format   string
		quality  int
	)

	cmd := &cobra.Command{
		Use:   "screenshot <target-id>",
		Short: "Capture a screenshot of a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "png" && format != "jpeg" {
				return fmt.Errorf("--format must be png or jpeg, got %q", format)
			}
			if quality > 0 && format != "jpeg" {
				return fmt.Errorf("--quality only applies to jpeg")
			}

			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			if _, err := session.Send(ctx, "Page.enable", nil); err != nil {
				return err
			}

			params := map[string]interface{}{
				"format":      format,
				"fromSurface": true,
			}
			if quality > 0 {
				params["quality"] = min(quality, 100)
			}
			if fullPage {
				metrics, err := session.Send(ctx, "Page.getLayoutMetrics", nil)
				if err != nil {
					return err
				}
				var layout struct {
					ContentSize struct {
						Width  float64 `json:"width"`
						Height float64 `json:"height"`
					} `json:"contentSize"`
				}
				if err := json.Unmarshal(metrics, &layout); err != nil {
					return fmt.Errorf("decode layout metrics: %w", err)
				}
				params["clip"] = map[string]float64{
					"x":      0,
					"y":      0,
					"width":  layout.ContentSize.Width,
					"height": layout.ContentSize.Height,
					"scale":  1,
				}
			}

			result, err := session.Send(ctx, "Page.captureScreenshot", params)
			if err != nil {
				return err
			}
			image, err := captureData(result)
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, image, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			// No output path: emit base64 so the bytes survive the terminal.
			fmt.Fprint(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(image))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the image to this path instead of stdout")
	cmd.Flags().BoolVar(&fullPage, "full", false, "capture the full scrollable page")
	cmd.Flags().StringVar(&format, "format", "png", "image format: png|jpeg")
	cmd.Flags().IntVar(&quality, "quality", 0, "jpeg compression quality (1-100)")
	return cmd
}

func newPrintPDFCmd() *cobra.Command {
	var (
		out         string
		landscape   bool
		scale       float64
		backgrounds bool
	)

	cmd := &cobra.Command{
		Use:   "print-pdf <target-id>",
		Short: "Render a tab to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := attachSession(ctx, args[0])
			if err != nil {
				return err
			}
			defer session.Detach()

			result, err := session.Send(ctx, "Page.printToPDF", map[string]interface{}{
				"landscape":       landscape,
				"printBackground": backgrounds,
				"scale":           scale, // browser accepts 0.1 - 2.0
			})
			if err != nil {
				return err
			}
			pdf, err := captureData(result)
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, pdf, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(pdf)
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the PDF to this path instead of stdout")
	cmd.Flags().BoolVar(&landscape, "landscape", false, "landscape orientation")
	cmd.Flags().Float64Var(&scale, "scale", 1.0, "print scale (0.1-2.0)")
	cmd.Flags().BoolVar(&backgrounds, "backgrounds", false, "print CSS backgrounds")
	return cmd
}
