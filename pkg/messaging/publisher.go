package messaging

import (
	"context"
)

const (
	// OrdersStreamSubjects is the subject filter captured by the orders stream.
	OrdersStreamSubjects = "orders.>"

	OrdersCreatedSubject       = "orders.created"
	OrdersStatusChangedSubject = "orders.status_changed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
