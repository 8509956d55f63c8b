// File: internal/client/hub_test.go
package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cdpctl/internal/client"
	"github.com/xkilldash9x/cdpctl/internal/protocol"
)

func waitEvent(t *testing.T, sub *client.Subscription) *protocol.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestSubscriptionFiltersByMethod(t *testing.T) {
	session, transport := newTestSession(t)

	loads := session.On("Page.loadEventFired")
	defer loads.Unsubscribe()
	all := session.On()
	defer all.Unsubscribe()

	transport.emit("Network.requestWillBeSent", `{"requestId":"R1"}`)
	transport.emit("Page.loadEventFired", `{"timestamp":1.0}`)

	// The filtered subscription only sees the load event.
	ev := waitEvent(t, loads)
	assert.Equal(t, "Page.loadEventFired", ev.Method)

	// The catch-all sees both, in arrival order.
	first := waitEvent(t, all)
	second := waitEvent(t, all)
	assert.Equal(t, "Network.requestWillBeSent", first.Method)
	assert.Equal(t, "Page.loadEventFired", second.Method)
}

func TestEventsBeforeSubscriptionAreNotReplayed(t *testing.T) {
	session, transport := newTestSession(t)

	transport.emit("Page.loadEventFired", `{}`)

	// Force the frame through the dispatch loop before subscribing: a
	// round-tripped command is ordered after the event on the inbound queue.
	go func() {
		cmd := transport.nextCommand(t)
		transport.respond(cmd.ID, `{}`)
	}()
	_, err := session.Send(context.Background(), "Browser.getVersion", nil)
	require.NoError(t, err)

	sub := session.On("Page.loadEventFired")
	defer sub.Unsubscribe()

	select {
	case ev := <-sub.Events():
		t.Fatalf("historic event replayed: %v", ev.Method)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsNewestWithoutStallingSiblings(t *testing.T) {
	transport := newFakeTransport()
	cfg := testClientConfig()
	cfg.EventBufferSize = 1
	session := client.NewSession(transport, cfg, zap.NewNop())
	defer session.Detach()

	stalled := session.On("Page.loadEventFired")
	defer stalled.Unsubscribe()
	healthy := session.On("Page.loadEventFired")
	defer healthy.Unsubscribe()

	// Three events into a buffer of one: the stalled subscriber keeps the
	// oldest and drops the two newest.
	for i := 0; i < 3; i++ {
		transport.emit("Page.loadEventFired", `{}`)
		// Drain the healthy sibling so its buffer never fills.
		waitEvent(t, healthy)
	}

	require.Eventually(t, func() bool {
		return stalled.Dropped() == 2
	}, 2*time.Second, 10*time.Millisecond)

	kept := waitEvent(t, stalled)
	assert.Equal(t, "Page.loadEventFired", kept.Method)
	assert.EqualValues(t, 0, healthy.Dropped())
}

func TestUnsubscribeFromConsumerGoroutine(t *testing.T) {
	session, transport := newTestSession(t)

	sub := session.On("Page.loadEventFired")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range sub.Events() {
			// Unsubscribing from inside the consuming loop must not
			// deadlock against a concurrent publish.
			sub.Unsubscribe()
		}
	}()

	for i := 0; i < 10; i++ {
		transport.emit("Page.loadEventFired", `{}`)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not exit after unsubscribing")
	}
	sub.Unsubscribe() // second call is a no-op
}

func TestSubscriptionsCloseWhenSessionDies(t *testing.T) {
	session, transport := newTestSession(t)

	sub := session.On()
	transport.Close()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "channel should be closed, not delivering")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed on session death")
	}

	// Subscribing after shutdown yields an already-closed subscription.
	require.Eventually(t, func() bool {
		return session.State() == client.StateClosed
	}, 2*time.Second, 10*time.Millisecond)
	late := session.On("Page.loadEventFired")
	_, ok := <-late.Events()
	assert.False(t, ok)
}
