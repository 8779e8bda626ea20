package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

// OrderLine is the part of an order line carried by order events.
type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// OrderCreatedEvent is published once an order placement transaction has committed.
// Carrier holds the propagated trace context.
type OrderCreatedEvent struct {
	Carrier    map[string]string `json:"carrier,omitempty"`
	OrderID    uuid.UUID         `json:"order_id"`
	UserID     uuid.UUID         `json:"user_id"`
	TotalPrice int64             `json:"total_price"`
	Lines      []OrderLine       `json:"lines"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}

// OrderStatusChangedEvent is published after an administrator changes an order status.
type OrderStatusChangedEvent struct {
	Carrier   map[string]string `json:"carrier,omitempty"`
	OrderID   uuid.UUID         `json:"order_id"`
	UserID    uuid.UUID         `json:"user_id"`
	OldStatus string            `json:"old_status"`
	NewStatus string            `json:"new_status"`
	ChangedAt time.Time         `json:"changed_at"`
}

func (o OrderStatusChangedEvent) Subject() string {
	return messaging.OrdersStatusChangedSubject
}

func (o OrderStatusChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
