package services

import (
	"log"
	"time"
)

// EventType names the domain events the engine emits for the notification
// collaborator. Delivery and retry are the collaborator's problem.
type EventType string

const (
	EventSubmissionVerdict  EventType = "submission_verdict"
	EventTierChanged        EventType = "tier_changed"
	EventChallengeCompleted EventType = "challenge_completed"
	EventChallengeReopened  EventType = "challenge_reopened" // completion reversed by a report
)

type DomainEvent struct {
	AthleteID  string                 `json:"athlete_id"`
	Type       EventType              `json:"event_type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventBus is a buffered fan-out from the engine to the notifier worker.
// Publish never blocks a request: when the buffer is full the event is
// dropped and logged, since notifications are best-effort.
type EventBus struct {
	ch chan DomainEvent
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 256
	}
	return &EventBus{ch: make(chan DomainEvent, buffer)}
}

func (b *EventBus) Publish(evt DomainEvent) {
	if b == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	select {
	case b.ch <- evt:
	default:
		log.Printf("⚠️ [EVENTS] buffer full, dropping %s for athlete %s", evt.Type, evt.AthleteID)
	}
}

func (b *EventBus) Events() <-chan DomainEvent {
	return b.ch
}

func (b *EventBus) Close() {
	close(b.ch)
}
