// File: internal/client/errors.go
package client

import "errors"

// Error taxonomy of the protocol client. Callers match these with errors.Is;
// the browser-reported error object behind ErrProtocol is reachable with
// errors.As into *protocol.Error.
var (
	// ErrConnect reports that the WebSocket connection to the debugging
	// target could not be established.
	ErrConnect = errors.New("client: connect failed")

	// ErrSend reports a write on a transport that is already closed or
	// failing.
	ErrSend = errors.New("client: send failed")

	// ErrProtocol reports that the browser answered a command with an
	// error result. The command was delivered and processed; the browser
	// rejected it.
	ErrProtocol = errors.New("client: browser returned an error")

	// ErrTimeout reports that a command or wait deadline elapsed before
	// the browser satisfied it.
	ErrTimeout = errors.New("client: deadline elapsed")

	// ErrCanceled reports that the caller gave up (context cancellation)
	// before the command or wait resolved. Distinct from ErrTimeout.
	ErrCanceled = errors.New("client: canceled by caller")

	// ErrConnectionClosed reports that the transport died while a command
	// or wait was still pending. Every pending registration resolves with
	// this error at the moment of closure.
	ErrConnectionClosed = errors.New("client: connection closed")
)
