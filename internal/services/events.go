package services

import (
	"context"
	"log"
)

const (
	EventAttemptStarted   = "attempt.started"
	EventQuotaExhausted   = "attempt.quota_exhausted"
	EventSessionSubmitted = "session.submitted"
	EventSessionAbandoned = "session.abandoned"
)

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// publish never fails the calling operation; the event stream is best effort.
func publish(ctx context.Context, p EventPublisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, payload); err != nil {
		log.Printf("event: publish %s failed: %v", eventType, err)
	}
}
