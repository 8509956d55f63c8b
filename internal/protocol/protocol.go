// File: internal/protocol/protocol.go

// Package protocol implements the wire envelopes of the Chrome DevTools
// Protocol: outbound command frames and inbound response/event frames.
// The codec is deliberately untyped about command semantics; callers pass
// method names and raw params, and the browser's open-ended command surface
// rides on top.
package protocol

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedFrame reports an inbound frame that is neither a well-formed
// command response nor an event notification. Malformed frames are dropped
// by the dispatcher; they never terminate the connection.
var ErrMalformedFrame = errors.New("protocol: malformed frame")

// RawMessage aliases the raw JSON type used for params and results so that
// callers do not need to import the codec implementation.
type RawMessage = jsoniter.RawMessage

// Command is an outbound request expecting exactly one response.
type Command struct {
	ID        int64      `json:"id"`
	Method    string     `json:"method"`
	Params    RawMessage `json:"params,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

// Response answers a previously issued Command, carrying either a result or
// a browser-reported error, never both.
type Response struct {
	ID        int64      `json:"id"`
	Result    RawMessage `json:"result,omitempty"`
	Error     *Error     `json:"error,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

// Event is an unsolicited notification from the browser.
type Event struct {
	Method    string     `json:"method"`
	Params    RawMessage `json:"params,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
}

// Error is the browser-side error object attached to a failed command.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("cdp error %d: %s (%s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

// Kind discriminates decoded inbound frames.
type Kind int

const (
	KindResponse Kind = iota + 1
	KindEvent
)

// Message is a decoded inbound frame. Exactly one of Response or Event is
// set, according to Kind.
type Message struct {
	Kind     Kind
	Response *Response
	Event    *Event
}

// envelope is the superset shape used to sniff the frame discriminator.
// A response echoes the command id; an event carries a method name. A frame
// claiming both (or neither) is malformed.
type envelope struct {
	ID        *int64     `json:"id"`
	Method    string     `json:"method"`
	Params    RawMessage `json:"params"`
	Result    RawMessage `json:"result"`
	Error     *Error     `json:"error"`
	SessionID string     `json:"sessionId"`
}

// Encode serializes an outbound command frame.
func Encode(id int64, method, sessionID string, params interface{}) ([]byte, error) {
	if method == "" {
		return nil, fmt.Errorf("protocol: encode: empty method")
	}

	cmd := Command{ID: id, Method: method, SessionID: sessionID}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode params for %s: %w", method, err)
		}
		cmd.Params = raw
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", method, err)
	}
	return data, nil
}

// Decode parses an inbound frame into a command response or an event
// notification. Failures wrap ErrMalformedFrame so the dispatch loop can
// drop the frame without tearing down the connection.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	hasID := env.ID != nil
	hasMethod := env.Method != ""

	switch {
	case hasID && hasMethod:
		return Message{}, fmt.Errorf("%w: frame carries both id and method", ErrMalformedFrame)
	case hasID:
		return Message{
			Kind: KindResponse,
			Response: &Response{
				ID:        *env.ID,
				Result:    env.Result,
				Error:     env.Error,
				SessionID: env.SessionID,
			},
		}, nil
	case hasMethod:
		return Message{
			Kind: KindEvent,
			Event: &Event{
				Method:    env.Method,
				Params:    env.Params,
				SessionID: env.SessionID,
			},
		}, nil
	default:
		return Message{}, fmt.Errorf("%w: frame carries neither id nor method", ErrMalformedFrame)
	}
}
