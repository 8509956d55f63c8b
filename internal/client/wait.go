// File: internal/client/wait.go
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

// Lifecycle event names. The counting and quiet-window algorithms below are
// generic; only this mapping is protocol-version specific.
const (
	eventDOMContentLoaded  = "Page.domContentEventFired"
	eventLoadFired         = "Page.loadEventFired"
	eventRequestWillBeSent = "Network.requestWillBeSent"
	eventLoadingFinished   = "Network.loadingFinished"
	eventLoadingFailed     = "Network.loadingFailed"
)

// Predicate inspects one event from the subscribed stream and reports
// whether the awaited condition has become true.
type Predicate func(ev *protocol.Event) bool

// Waiter is an armed lifecycle wait. Its subscription is installed at
// creation time, so a milestone that fires while the caller is still issuing
// commands is buffered instead of lost. Wait consumes the Waiter; call it at
// most once. A Waiter that is abandoned without waiting must be released with
// Cancel.
type Waiter struct {
	sub   *Subscription
	await func(ctx context.Context, timeout time.Duration) error
}

// Wait blocks until the armed condition becomes true, the timeout elapses
// (ErrTimeout), or the caller's context is canceled (ErrCanceled). The
// subscription is released on every exit path.
func (w *Waiter) Wait(ctx context.Context, timeout time.Duration) error {
	defer w.sub.Unsubscribe()
	return w.await(ctx, timeout)
}

// Cancel releases the subscription without waiting. Safe after Wait and safe
// to call twice.
func (w *Waiter) Cancel() { w.sub.Unsubscribe() }

// ArmDOMReady installs a subscription that resolves on the next
// DOMContentLoaded-equivalent event for the target's top frame.
func (s *Session) ArmDOMReady() *Waiter {
	return s.armFirst(eventDOMContentLoaded)
}

// ArmLoad installs a subscription that resolves on the next load-equivalent
// event for the top frame.
func (s *Session) ArmLoad() *Waiter {
	return s.armFirst(eventLoadFired)
}

func (s *Session) armFirst(method string) *Waiter {
	sub := s.hub.subscribe("", method)
	first := func(*protocol.Event) bool { return true }
	return &Waiter{
		sub: sub,
		await: func(ctx context.Context, timeout time.Duration) error {
			return s.waitOn(ctx, sub, timeout, first)
		},
	}
}

// ArmNetworkIdle installs the request-counting subscription for a network
// idle wait with the given quiet window. Request lifecycle events arriving
// before Wait begins are buffered and counted.
func (s *Session) ArmNetworkIdle(quiet time.Duration) *Waiter {
	sub := s.hub.subscribe("", eventRequestWillBeSent, eventLoadingFinished, eventLoadingFailed)
	return &Waiter{
		sub: sub,
		await: func(ctx context.Context, timeout time.Duration) error {
			return s.waitIdleOn(ctx, sub, timeout, quiet)
		},
	}
}

// WaitFor blocks until the predicate becomes true over the stream of the
// named events, the timeout elapses (ErrTimeout), or the caller's context is
// canceled (ErrCanceled). The subscription only exists while WaitFor runs;
// when the awaited events may fire before the wait begins, arm a Waiter
// first.
func (s *Session) WaitFor(ctx context.Context, timeout time.Duration, pred Predicate, methods ...string) error {
	sub := s.hub.subscribe("", methods...)
	defer sub.Unsubscribe()
	return s.waitOn(ctx, sub, timeout, pred)
}

// WaitForDOMReady resolves on the first DOMContentLoaded-equivalent event
// observed from now on.
func (s *Session) WaitForDOMReady(ctx context.Context, timeout time.Duration) error {
	return s.ArmDOMReady().Wait(ctx, timeout)
}

// WaitForLoad resolves on the first load-equivalent event observed from now
// on.
func (s *Session) WaitForLoad(ctx context.Context, timeout time.Duration) error {
	return s.ArmLoad().Wait(ctx, timeout)
}

// WaitForNetworkIdle resolves once the count of in-flight network requests
// has been zero for the full quiet window.
func (s *Session) WaitForNetworkIdle(ctx context.Context, timeout, quiet time.Duration) error {
	return s.ArmNetworkIdle(quiet).Wait(ctx, timeout)
}

// waitOn evaluates the predicate over events delivered on sub. The ephemeral
// subscription is owned by the caller; every exit path leaves it to the
// caller to release.
func (s *Session) waitOn(ctx context.Context, sub *Subscription, timeout time.Duration, pred Predicate) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return fmt.Errorf("%w: session ended during wait", ErrConnectionClosed)
			}
			if pred(ev) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("%w: condition not met within %s", ErrTimeout, timeout)
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
		}
	}
}

// waitIdleOn runs the in-flight counter over sub. The counter increments on
// request-start events and decrements on finish/failure; an unmatched finish
// (counter would go negative) is clamped to zero, guarding against
// event-ordering anomalies at connection start. Any new request while idle
// disarms the quiet timer.
func (s *Session) waitIdleOn(ctx context.Context, sub *Subscription, timeout, quiet time.Duration) error {
	overall := time.NewTimer(timeout)
	defer overall.Stop()

	// The connection starts idle, so the quiet window is armed from the
	// beginning.
	inflight := 0
	quietTimer := time.NewTimer(quiet)
	defer quietTimer.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return fmt.Errorf("%w: session ended during wait", ErrConnectionClosed)
			}
			switch ev.Method {
			case eventRequestWillBeSent:
				inflight++
				stopTimer(quietTimer)
			case eventLoadingFinished, eventLoadingFailed:
				if inflight > 0 {
					inflight--
				}
				if inflight == 0 {
					resetTimer(quietTimer, quiet)
				}
			}
		case <-quietTimer.C:
			if inflight == 0 {
				return nil
			}
			// A request-start raced the timer fire; stay armed-off until
			// the counter drains again.
		case <-overall.C:
			return fmt.Errorf("%w: network not idle within %s", ErrTimeout, timeout)
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrCanceled, ctx.Err())
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
