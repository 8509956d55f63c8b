// File: internal/client/session.go

// Package client implements the CDP protocol client: one WebSocket transport
// per attached target, request/response correlation over shared use by
// concurrent callers, event fan-out, and lifecycle waits with timeout and
// cancellation semantics.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

// State is the session lifecycle state. Closed is terminal; a Session is
// never reusable after it.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateAttached
	StateDetaching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAttached:
		return "attached"
	case StateDetaching:
		return "detaching"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is an active attachment to one debugging target. It owns exactly
// one Transport and binds the correlator, the event hub, and the wait engine
// into a single handle. Commands may be issued concurrently from any number
// of goroutines; exactly one internal reader goroutine drains inbound
// frames. There is no automatic reconnection: when the transport dies the
// Session is terminal and callers must attach a fresh one.
type Session struct {
	id     string
	logger *zap.Logger
	cfg    config.ClientConfig

	transport  Transport
	correlator *correlator
	hub        *eventHub

	state      atomic.Int32
	detachOnce sync.Once
	readerDone chan struct{}

	decodeAnomalies atomic.Uint64
}

// Attach dials the target's WebSocket debugger URL and returns an attached
// Session. On dial failure the error wraps ErrConnect and no Session exists.
func Attach(ctx context.Context, wsURL string, cfg config.ClientConfig, logger *zap.Logger) (*Session, error) {
	transport, err := Dial(ctx, wsURL, cfg.HandshakeTimeout)
	if err != nil {
		return nil, err
	}
	return NewSession(transport, cfg, logger), nil
}

// NewSession wraps an already-open Transport in a Session and starts the
// dispatch loop. Ownership of the transport passes to the Session.
func NewSession(transport Transport, cfg config.ClientConfig, logger *zap.Logger) *Session {
	sessionID := uuid.New().String()
	s := &Session{
		id:         sessionID,
		logger:     logger.Named("session").With(zap.String("session_id", sessionID)),
		cfg:        cfg,
		transport:  transport,
		readerDone: make(chan struct{}),
	}
	s.correlator = newCorrelator(s.logger)
	s.hub = newEventHub(s.logger, cfg.EventBufferSize)
	s.state.Store(int32(StateAttached))

	go s.readLoop()
	return s
}

// ID returns the client-local session identifier (logging handle, not a CDP
// protocol session id).
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Send issues a command with the configured default timeout.
func (s *Session) Send(ctx context.Context, method string, params interface{}) (protocol.RawMessage, error) {
	return s.SendTimeout(ctx, method, params, s.cfg.CommandTimeout)
}

// SendTimeout issues a command and blocks until the matching response
// arrives, the timeout elapses (ErrTimeout), the caller cancels
// (ErrCanceled), or the transport dies (ErrConnectionClosed). A browser
// error result is returned wrapping ErrProtocol. Canceling removes the
// pending registration promptly; a response arriving afterwards is dropped
// as an anomaly, never delivered twice.
func (s *Session) SendTimeout(ctx context.Context, method string, params interface{}, timeout time.Duration) (protocol.RawMessage, error) {
	if s.State() != StateAttached {
		return nil, fmt.Errorf("%w: session is %s", ErrConnectionClosed, s.State())
	}

	pending, err := s.correlator.register(method, timeout)
	if err != nil {
		return nil, err
	}

	frame, err := protocol.Encode(pending.id, method, "", params)
	if err != nil {
		s.correlator.discard(pending.id)
		return nil, err
	}

	if err := s.transport.WriteMessage(frame); err != nil {
		s.correlator.discard(pending.id)
		return nil, err
	}

	select {
	case out := <-pending.done:
		return out.result, out.err
	case <-ctx.Done():
		s.correlator.discard(pending.id)
		return nil, fmt.Errorf("%w: %s: %v", ErrCanceled, method, ctx.Err())
	}
}

// On subscribes to event notifications by method name; no names means every
// event. Events published before the subscription are never replayed.
func (s *Session) On(methods ...string) *Subscription {
	return s.hub.subscribe("", methods...)
}

// Detach closes the transport and transitions the session to Closed.
// Idempotent and safe to call concurrently; it returns once the dispatch
// loop has fully drained and every pending command and subscription has been
// resolved or closed.
func (s *Session) Detach() {
	s.detachOnce.Do(func() {
		s.state.CompareAndSwap(int32(StateAttached), int32(StateDetaching))
		if err := s.transport.Close(); err != nil {
			s.logger.Debug("transport close", zap.Error(err))
		}
	})
	<-s.readerDone
}

// Anomalies reports the number of inbound frames absorbed as protocol
// anomalies: malformed frames plus responses with unknown identifiers.
func (s *Session) Anomalies() uint64 {
	return s.decodeAnomalies.Load() + s.correlator.anomalyCount()
}

// readLoop is the single reader draining inbound frames. It is the only
// caller of correlator.resolve and hub.publish, which keeps the hot delivery
// path free of contention with anything but command registration. On
// transport death it fails every pending command with ErrConnectionClosed,
// closes every subscription, and marks the session Closed.
func (s *Session) readLoop() {
	defer close(s.readerDone)

	for {
		data, err := s.transport.ReadMessage()
		if err != nil {
			s.logger.Debug("transport terminated", zap.Error(err))
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed frames are dropped, never fatal.
			s.decodeAnomalies.Add(1)
			s.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}

		switch msg.Kind {
		case protocol.KindResponse:
			resp := msg.Response
			if resp.Error != nil {
				s.correlator.resolve(resp.ID, nil, fmt.Errorf("%w: %w", ErrProtocol, resp.Error))
			} else {
				s.correlator.resolve(resp.ID, resp.Result, nil)
			}
		case protocol.KindEvent:
			s.hub.publish(msg.Event)
		}
	}

	s.state.Store(int32(StateClosed))
	s.correlator.failAll(ErrConnectionClosed)
	s.hub.closeAll()
}
