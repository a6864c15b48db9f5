// Package pubsub provides a generic publish/subscribe event system. The
// registry service publishes ledger events through a Broker so external
// indexers and the CLI can observe mutations without polling.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

// Topics published by the registry service. The values match the kind
// reported by the domain event itself, so subscribers can filter on
// either the broker type or the payload.
const (
	TransferEvent       EventType = "transfer"
	ApprovalEvent       EventType = "approval"
	ApprovalForAllEvent EventType = "approval_for_all"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
