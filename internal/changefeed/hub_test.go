package changefeed

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()

	sub, backlog, err := hub.Subscribe(RecordKPIEntry)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	if len(backlog) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(backlog))
	}

	hub.Publish(RecordKPIEntry, Event{RecordID: "1", Action: "update"})

	select {
	case event := <-sub.Events():
		if event.RecordID != "1" {
			t.Fatalf("expected record 1, got %s", event.RecordID)
		}
		if event.RecordType != RecordKPIEntry {
			t.Fatalf("expected record type %s, got %s", RecordKPIEntry, event.RecordType)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event delivery")
	}
}

func TestPublishDoesNotCrossRecordTypes(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(RecordRock)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	hub.Publish(RecordTodo, Event{RecordID: "9", Action: "create"})

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBacklogCapped(t *testing.T) {
	hub := NewHub()

	// Seed a stream so the buffer accumulates.
	seed, _, err := hub.Subscribe(RecordTodo)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer seed.Close()

	for i := 0; i < DefaultBufferSize*2; i++ {
		hub.Publish(RecordTodo, Event{RecordID: "x", Action: "update"})
	}

	_, backlog, err := hub.Subscribe(RecordTodo)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(backlog) != DefaultBufferSize {
		t.Fatalf("expected backlog capped at %d, got %d", DefaultBufferSize, len(backlog))
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(RecordMeeting)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < DefaultSubscriberBuffer*4; i++ {
			hub.Publish(RecordMeeting, Event{RecordID: "m", Action: "update"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}
