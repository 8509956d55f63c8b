// File: internal/client/transport.go
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// maxFrameSize bounds a single inbound frame. Screenshot and PDF payloads
// arrive base64-encoded inside one frame, so the limit is generous.
const maxFrameSize = 64 << 20

// Transport owns one persistent duplex connection to a single debugging
// target. It carries raw frames only; framing and correlation live above it.
// Implementations must support one concurrent reader and any number of
// concurrent writers, and Close must be idempotent.
type Transport interface {
	// WriteMessage sends one outbound frame. It fails with ErrSend once
	// the connection is closed.
	WriteMessage(data []byte) error

	// ReadMessage blocks until the next inbound frame arrives. It returns
	// an error wrapping ErrConnectionClosed exactly once the underlying
	// connection dies; the single dispatch loop is its only caller.
	ReadMessage() ([]byte, error)

	// Close tears the connection down. Safe to call from any goroutine,
	// any number of times.
	Close() error
}

// wsTransport is the production Transport over a gorilla WebSocket.
type wsTransport struct {
	conn *websocket.Conn

	// gorilla permits at most one concurrent writer.
	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial opens a WebSocket connection to the target's debugger URL.
func Dial(ctx context.Context, wsURL string, handshakeTimeout time.Duration) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		// The discovery endpoint hands out URLs with a Host the browser
		// does not always accept on redial; the generous buffers match
		// typical CDP frame sizes.
		ReadBufferSize:  1 << 20,
		WriteBufferSize: 1 << 20,
	}

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: dial %s: %v (status %d)", ErrConnect, wsURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnect, wsURL, err)
	}
	conn.SetReadLimit(maxFrameSize)

	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectionClosed, err)
		}
		// CDP traffic is text frames; anything else is ignored.
		if msgType != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		// Best-effort close handshake before dropping the socket.
		t.writeMu.Lock()
		deadline := time.Now().Add(time.Second)
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		t.writeMu.Unlock()

		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
