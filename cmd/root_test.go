// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/observability"
)

// resetForTest clears the global viper and flag state leaked by a previous
// execution and silences the logger.
func resetForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	cfg = nil
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootWiresAllSubcommands(t *testing.T) {
	root := NewRootCommand()

	want := []string{
		"list-tabs", "browser-info", "new-tab", "close-tab", "activate-tab",
		"navigate", "get-dom", "get-html", "get-dom-snapshot", "eval",
		"screenshot", "print-pdf", "console-log", "network-log", "list-cookies",
	}
	have := make(map[string]bool)
	for _, sub := range root.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		assert.True(t, have[name], "missing subcommand %q", name)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestNavigateRejectsUnknownWaitMode(t *testing.T) {
	_, err := executeCommand(t, "navigate", "TAB-1", "https://example.com", "--wait", "eventually")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--wait")
}

func TestNavigateRequiresTwoArgs(t *testing.T) {
	_, err := executeCommand(t, "navigate", "TAB-1")
	require.Error(t, err)
}

func TestScreenshotRejectsUnknownFormat(t *testing.T) {
	_, err := executeCommand(t, "screenshot", "TAB-1", "--format", "bmp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format")
}

func TestScreenshotQualityRequiresJpeg(t *testing.T) {
	_, err := executeCommand(t, "screenshot", "TAB-1", "--quality", "80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jpeg")
}

func TestCloseTabRequiresTargetArg(t *testing.T) {
	_, err := executeCommand(t, "close-tab")
	require.Error(t, err)
}

// With nothing listening on the endpoint, discovery-backed commands must
// fail with a transport error instead of hanging.
func TestListTabsFailsFastWhenBrowserUnreachable(t *testing.T) {
	_, err := executeCommand(t, "list-tabs", "--port", "1")
	require.Error(t, err)
}

func TestHostAndPortFlagsReachConfig(t *testing.T) {
	// The unreachable call above still runs the full config pipeline; the
	// resolved config must reflect the flag values.
	_, err := executeCommand(t, "list-tabs", "--host", "127.0.0.1", "--port", "1")
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1", cfg.Browser.Host)
	assert.Equal(t, 1, cfg.Browser.Port)
}
