package session

import (
	"context"
	"testing"
	"time"
)

func TestRegistryAddRemoveCount(t *testing.T) {
	r := NewRegistry()

	c := New("sess-1", newFakeTransport(), newFakeConvo(), nil, nil, Config{})
	r.Add(c)

	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
	if r.Get("sess-1") != c {
		t.Error("Get did not return the registered coordinator")
	}

	r.Remove("sess-1")
	if r.Count() != 0 || r.Get("sess-1") != nil {
		t.Error("coordinator still present after Remove")
	}
}

func TestRegistryCloseWaitsForSessions(t *testing.T) {
	r := NewRegistry()

	transport := newFakeTransport()
	convo := newFakeConvo()
	coord := New("sess-1", transport, convo, nil, nil, Config{Greeting: "hi"})
	r.Add(coord)

	done := make(chan error, 1)
	go func() { done <- coord.Run(context.Background()) }()

	waitFor(t, func() bool { return len(transport.jsonFrames()) > 0 }, "session never started")

	// Close returns only after the coordinator has fully finished, so the
	// final session record is written before shared resources shut down.
	r.Close()

	if got := coord.State(); got != StateClosed {
		t.Errorf("state after registry close = %s, want closed", got)
	}
	if r.Count() != 0 {
		t.Errorf("Count after close = %d, want 0", r.Count())
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
