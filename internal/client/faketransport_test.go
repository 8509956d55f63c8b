// File: internal/client/faketransport_test.go
package client_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cdpctl/internal/client"
	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// fakeTransport is an in-memory Transport. Outbound frames are observable on
// the writes channel; inbound frames are injected with push. Close unblocks
// a pending ReadMessage, mimicking a dead socket.
type fakeTransport struct {
	writes  chan []byte
	inbound chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		writes:  make(chan []byte, 64),
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

func (t *fakeTransport) WriteMessage(data []byte) error {
	select {
	case <-t.done:
		return fmt.Errorf("%w: transport closed", client.ErrSend)
	default:
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	t.writes <- frame
	return nil
}

func (t *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.done:
		return nil, fmt.Errorf("%w: transport closed", client.ErrConnectionClosed)
	}
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

// push injects a raw inbound frame.
func (t *fakeTransport) push(frame string) {
	t.inbound <- []byte(frame)
}

// respond injects a successful response for the given command id.
func (t *fakeTransport) respond(id int64, result string) {
	t.push(fmt.Sprintf(`{"id":%d,"result":%s}`, id, result))
}

// respondError injects a browser error response for the given command id.
func (t *fakeTransport) respondError(id int64, code int64, message string) {
	t.push(fmt.Sprintf(`{"id":%d,"error":{"code":%d,"message":%q}}`, id, code, message))
}

// emit injects an event notification.
func (t *fakeTransport) emit(method, params string) {
	t.push(fmt.Sprintf(`{"method":%q,"params":%s}`, method, params))
}

// nextCommand blocks until the session writes its next command frame and
// returns the decoded envelope.
func (t *fakeTransport) nextCommand(tb testing.TB) protocol.Command {
	tb.Helper()
	select {
	case frame := <-t.writes:
		var cmd protocol.Command
		require.NoError(tb, json.Unmarshal(frame, &cmd))
		return cmd
	case <-time.After(2 * time.Second):
		tb.Fatal("timed out waiting for an outbound command frame")
		return protocol.Command{}
	}
}

func testClientConfig() config.ClientConfig {
	cfg := config.NewDefaultConfig().Client
	cfg.CommandTimeout = 2 * time.Second
	cfg.WaitTimeout = 2 * time.Second
	cfg.EventBufferSize = 16
	return cfg
}
