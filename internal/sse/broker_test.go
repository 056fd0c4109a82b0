package sse

import (
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	if n := b.ClientCount(); n != 2 {
		t.Fatalf("ClientCount = %d, want 2", n)
	}

	b.PublishNote(NoteCreated, "abc")

	for _, ch := range []chan []byte{ch1, ch2} {
		msg := receive(t, ch)
		if !strings.Contains(msg, "event: note.created") {
			t.Errorf("msg = %q", msg)
		}
		if !strings.Contains(msg, `"id":"abc"`) {
			t.Errorf("msg = %q", msg)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestPublishRegenerated(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.PublishRegenerated(7, 2)

	msg := receive(t, ch)
	if !strings.Contains(msg, "event: indexes.regenerated") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, `"indexed":7`) || !strings.Contains(msg, `"skipped":2`) {
		t.Errorf("msg = %q", msg)
	}
}

func TestCloseIsSafeToRepeat(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel not closed on shutdown")
	}
	// All operations are no-ops after Close.
	b.Publish(Event{Type: NoteUpdated, Data: nil})
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("late subscription returned open channel")
	}
}
