// File: internal/client/hub.go
package client

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

// Subscription is a standing registration for event notifications matching a
// set of method names and an optional session scope. Events arrive on a
// buffered channel; historic events are never replayed. The channel is
// closed on Unsubscribe and when the session dies, which ends the consumer's
// range loop.
type Subscription struct {
	hub       *eventHub
	seq       uint64
	methods   map[string]struct{} // empty set matches every event
	sessionID string              // empty matches any session scope
	ch        chan *protocol.Event

	dropped atomic.Uint64
	closed  bool // guarded by hub.mu
}

// Events returns the subscription's delivery channel.
func (s *Subscription) Events() <-chan *protocol.Event { return s.ch }

// Dropped reports how many events were discarded because this subscriber's
// buffer was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Unsubscribe removes the registration and closes the delivery channel.
// Safe to call from the consuming goroutine and safe to call twice.
func (s *Subscription) Unsubscribe() { s.hub.unsubscribe(s) }

func (s *Subscription) matches(ev *protocol.Event) bool {
	if s.sessionID != "" && s.sessionID != ev.SessionID {
		return false
	}
	if len(s.methods) == 0 {
		return true
	}
	_, ok := s.methods[ev.Method]
	return ok
}

// eventHub fans inbound event notifications out to subscribers. Delivery is
// synchronous with respect to the dispatch loop and never blocks on a slow
// consumer: each subscriber owns a buffered channel, and when that buffer is
// full the newest event is dropped for that subscriber only (drop counter
// incremented). Siblings are unaffected.
type eventHub struct {
	logger     *zap.Logger
	bufferSize int

	mu      sync.Mutex
	subs    []*Subscription // delivery happens in subscription order
	nextSeq uint64
	closed  bool
}

func newEventHub(logger *zap.Logger, bufferSize int) *eventHub {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &eventHub{logger: logger, bufferSize: bufferSize}
}

// subscribe registers interest in the given method names (none = all
// events), optionally scoped to one protocol session. After the hub has shut
// down the returned subscription is already closed.
func (h *eventHub) subscribe(sessionID string, methods ...string) *Subscription {
	sub := &Subscription{
		hub:       h,
		sessionID: sessionID,
		ch:        make(chan *protocol.Event, h.bufferSize),
	}
	if len(methods) > 0 {
		sub.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			sub.methods[m] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}
	h.nextSeq++
	sub.seq = h.nextSeq
	h.subs = append(h.subs, sub)
	return sub
}

func (h *eventHub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	for i, candidate := range h.subs {
		if candidate.seq == sub.seq {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
	sub.closed = true
	close(sub.ch)
}

// publish delivers the event to every matching active subscription, in
// subscription order. The non-blocking send is what keeps one stalled
// consumer from starving its siblings.
func (h *eventHub) publish(ev *protocol.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for _, sub := range h.subs {
		if !sub.matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
			h.logger.Debug("subscriber buffer full, dropping event",
				zap.String("method", ev.Method),
				zap.Uint64("subscription", sub.seq))
		}
	}
}

// closeAll marks every live subscription inactive and closes its channel.
// Called once, when the session reaches its terminal state.
func (h *eventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, sub := range h.subs {
		sub.closed = true
		close(sub.ch)
	}
	h.subs = nil
}
