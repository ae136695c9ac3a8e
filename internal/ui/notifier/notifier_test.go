package notifier

import (
	"testing"
	"time"
)

func TestNotifier_SubscribeBroadcast(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Broadcast()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a ping")
	}
}

func TestNotifier_BroadcastIsNonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Fill the buffer, then broadcast twice more. Neither call may block.
	n.Broadcast()
	done := make(chan struct{})
	go func() {
		n.Broadcast()
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full listener")
	}

	// The listener still catches up with one pending ping.
	select {
	case <-ch:
	default:
		t.Fatal("expected a pending ping")
	}
}

func TestNotifier_UnsubscribeClosesChannel(t *testing.T) {
	n := New()

	ch := n.Subscribe()
	n.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after unsubscribe")
	}

	// Broadcasting after unsubscribe must not panic.
	n.Broadcast()
}

func TestNotifier_MultipleListeners(t *testing.T) {
	n := New()

	a := n.Subscribe()
	b := n.Subscribe()
	defer n.Unsubscribe(a)
	defer n.Unsubscribe(b)

	n.Broadcast()

	for name, ch := range map[string]chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("listener %s missed the ping", name)
		}
	}
}
