// File: internal/client/correlator.go
package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

// outcome is the single-resolution result of a pending command.
type outcome struct {
	result protocol.RawMessage
	err    error
}

// pendingCommand tracks one issued command identifier awaiting exactly one
// matching response. The done channel is buffered so the dispatch loop never
// blocks on a caller that has already given up.
type pendingCommand struct {
	id     int64
	method string
	issued time.Time
	done   chan outcome
	timer  *time.Timer
}

// correlator assigns monotonic command identifiers and matches responses to
// their originating commands. Identifiers are never reused within a
// session's lifetime, and every pending command resolves at most once: by
// matching response, by deadline, or by connection failure.
type correlator struct {
	logger *zap.Logger

	mu      sync.Mutex
	nextID  int64
	pending map[int64]*pendingCommand
	failed  error

	anomalies atomic.Uint64
}

func newCorrelator(logger *zap.Logger) *correlator {
	return &correlator{
		logger:  logger,
		pending: make(map[int64]*pendingCommand),
	}
}

// register issues the next command identifier and records a pending slot for
// it. A positive deadline arms a timer that resolves the slot with
// ErrTimeout when it elapses first. After failAll, register refuses new
// registrations with the failure reason.
func (c *correlator) register(method string, deadline time.Duration) (*pendingCommand, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return nil, c.failed
	}

	c.nextID++
	p := &pendingCommand{
		id:     c.nextID,
		method: method,
		issued: time.Now(),
		done:   make(chan outcome, 1),
	}
	c.pending[p.id] = p

	if deadline > 0 {
		id := p.id
		p.timer = time.AfterFunc(deadline, func() { c.expire(id, deadline) })
	}
	return p, nil
}

// resolve completes the pending command with the given result or error.
// An unknown identifier is a protocol anomaly: logged, counted, dropped.
func (c *correlator) resolve(id int64, result protocol.RawMessage, err error) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	c.mu.Unlock()

	if !ok {
		c.anomalies.Add(1)
		c.logger.Warn("dropping response for unknown command id", zap.Int64("id", id))
		return
	}
	p.done <- outcome{result: result, err: err}
}

// discard removes a registration without delivering a result. Used when the
// caller cancels or the outbound write fails, so a late response for the
// identifier becomes an anomaly instead of resolving into a dead future.
func (c *correlator) discard(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pending[id]; ok {
		delete(c.pending, id)
		if p.timer != nil {
			p.timer.Stop()
		}
	}
}

// expire resolves a pending command with ErrTimeout once its deadline has
// elapsed. A response that races the timer and loses is discarded later as
// an unknown-id anomaly.
func (c *correlator) expire(id int64, deadline time.Duration) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	p.done <- outcome{err: fmt.Errorf("%w: %s after %s", ErrTimeout, p.method, deadline)}
}

// failAll resolves every still-pending command with the given reason. Called
// exactly once, when the transport dies; afterwards register refuses new
// commands with the same reason.
func (c *correlator) failAll(reason error) {
	c.mu.Lock()
	if c.failed != nil {
		c.mu.Unlock()
		return
	}
	c.failed = reason
	stranded := c.pending
	c.pending = make(map[int64]*pendingCommand)
	c.mu.Unlock()

	for _, p := range stranded {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.done <- outcome{err: reason}
	}
}

// anomalyCount reports how many inbound responses matched no pending
// command.
func (c *correlator) anomalyCount() uint64 {
	return c.anomalies.Load()
}
