package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishNoteEventDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteEvent(EventNoteCreated, "20240115T103000")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"20240115T103000"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishLinkEventDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishLinkEvent(EventLinkCreated, "20240115T103000", "20240116T090000")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: link.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"source_id":"20240115T103000"`) {
			t.Errorf("missing source in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestGraphUpdatedThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First mutation triggers a graph.updated tail; the second, inside the
	// throttle window, does not.
	b.PublishNoteEvent(EventNoteCreated, "20240115T103000")
	b.PublishNoteEvent(EventNoteUpdated, "20240116T090000")

	var graphEvents int
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: graph.updated") {
				graphEvents++
			}
		case <-deadline:
			if graphEvents != 1 {
				t.Fatalf("graph.updated events = %d, want 1", graphEvents)
			}
			return
		}
	}
}

func TestPublishAfterClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	b.Close()

	// Must not panic or block.
	b.PublishNoteEvent(EventNoteDeleted, "20240115T103000")
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d", n)
	}
	ch := b.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("subscribe after close returned open channel")
	}
}
