package services

import (
	"testing"
	"time"
)

func TestEventBusPublishNeverBlocks(t *testing.T) {
	t.Parallel()

	bus := NewEventBus(2)
	for i := 0; i < 10; i++ {
		// With no consumer, overflow must drop rather than block the caller.
		bus.Publish(DomainEvent{AthleteID: "a", Type: EventTierChanged})
	}

	if len(bus.Events()) != 2 {
		t.Errorf("buffered = %d, want 2", len(bus.Events()))
	}

	evt := <-bus.Events()
	if evt.OccurredAt.IsZero() {
		t.Error("OccurredAt not stamped on publish")
	}
}

func TestEventBusCloseEndsConsumer(t *testing.T) {
	t.Parallel()

	bus := NewEventBus(4)
	bus.Publish(DomainEvent{AthleteID: "a", Type: EventSubmissionVerdict})
	bus.Close()

	done := make(chan int)
	go func() {
		n := 0
		for range bus.Events() {
			n++
		}
		done <- n
	}()

	select {
	case n := <-done:
		if n != 1 {
			t.Errorf("drained %d events, want 1", n)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not terminate after Close")
	}
}

func TestEventBusNilSafe(t *testing.T) {
	t.Parallel()

	var bus *EventBus
	bus.Publish(DomainEvent{AthleteID: "a", Type: EventTierChanged}) // must not panic
}
