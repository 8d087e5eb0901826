package core

import (
	"context"
	"testing"
	"time"
)

func startHub(t testing.TB) *Hub {
	t.Helper()

	hub := NewHub(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// connect registers a client and consumes the username event every
// fresh connection receives.
func connect(t testing.TB, hub *Hub, id, name string) *Client {
	t.Helper()

	c := NewClient(id, name)
	hub.RegisterClient(c)
	mustEvent(t, c.Events, EventUsername)
	return c
}

// disconnect mimics the transport tearing a connection down.
func disconnect(hub *Hub, c *Client) {
	close(c.Commands)
	hub.UnregisterClient(c)
}

// barrier waits until every command sent before it has been processed,
// by round-tripping a query through the hub loop.
func barrier(t testing.TB, hub *Hub) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := hub.PublicRooms(ctx); err != nil {
		t.Fatalf("hub barrier failed: %v", err)
	}
}

// mustEvent waits for the next event of the given kind, discarding
// events of other kinds along the way.
func mustEvent(t testing.TB, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("events channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts that no event of the given kind arrives within a
// short window.
func mustNoEvent(t testing.TB, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// drainEvents discards everything currently queued for a client.
func drainEvents(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}
