// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/client"
	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

// stubTransport answers every command with an empty result and records the
// methods it saw.
type stubTransport struct {
	mu      sync.Mutex
	methods []string

	inbound   chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func newStubTransport() *stubTransport {
	return &stubTransport{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (t *stubTransport) WriteMessage(data []byte) error {
	var cmd protocol.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return err
	}
	t.mu.Lock()
	t.methods = append(t.methods, cmd.Method)
	t.mu.Unlock()
	t.inbound <- []byte(fmt.Sprintf(`{"id":%d,"result":{}}`, cmd.ID))
	return nil
}

func (t *stubTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.done:
		return nil, fmt.Errorf("%w: stub closed", client.ErrConnectionClosed)
	}
}

func (t *stubTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *stubTransport) seen() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.methods))
	copy(out, t.methods)
	return out
}

func TestEnableDomainsIssuesEveryCommand(t *testing.T) {
	transport := newStubTransport()
	clientCfg := config.NewDefaultConfig().Client
	clientCfg.CommandTimeout = 2 * time.Second
	session := client.NewSession(transport, clientCfg, zap.NewNop())
	defer session.Detach()

	err := enableDomains(context.Background(), session, "Page.enable", "Network.enable", "Runtime.enable")
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"Page.enable", "Network.enable", "Runtime.enable"},
		transport.seen())
}

func newOutputCommand() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(buf)
	return cmd, buf
}

func TestPrintJSONHonorsPretty(t *testing.T) {
	saved := pretty
	defer func() { pretty = saved }()

	payload := map[string]string{"id": "TAB-1"}

	pretty = false
	cmd, buf := newOutputCommand()
	require.NoError(t, printJSON(cmd, payload))
	assert.Equal(t, `{"id":"TAB-1"}`+"\n", buf.String())

	pretty = true
	cmd, buf = newOutputCommand()
	require.NoError(t, printJSON(cmd, payload))
	assert.Contains(t, buf.String(), "\n  \"id\": \"TAB-1\"\n")
}

func TestPrintRawJSONFallsBackOnInvalidPayload(t *testing.T) {
	saved := pretty
	defer func() { pretty = saved }()
	pretty = true

	cmd, buf := newOutputCommand()
	require.NoError(t, printRawJSON(cmd, []byte("Target is closing")))
	assert.Equal(t, "Target is closing\n", buf.String())
}

func TestCaptureData(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 data"))

	decoded, err := captureData([]byte(fmt.Sprintf(`{"data":%q}`, payload)))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 data"), decoded)

	_, err = captureData([]byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")

	_, err = captureData([]byte(`{"data":"@@not-base64@@"}`))
	require.Error(t, err)
}
