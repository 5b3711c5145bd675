package domain

import "time"

type EventType string

const (
	EventTableStatusChanged EventType = "table.status_changed"
	EventOrderOpened        EventType = "order.opened"
	EventOrderUpdated       EventType = "order.updated"
	EventOrderRemoved       EventType = "order.removed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderClosed        EventType = "order.closed"
	EventOrderCanceled      EventType = "order.canceled"
)

// FloorEvent is what the floor service emits after every successful ledger
// mutation. Order is a snapshot taken right after the mutation; it is nil for
// table-only changes.
type FloorEvent struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	OccurredAt  time.Time   `json:"occurred_at"`
	TableID     int         `json:"table_id"`
	TableStatus TableStatus `json:"table_status,omitempty"`
	Order       *Order      `json:"order,omitempty"`
}

// RoutingKey is used as the AMQP routing key on the floor topic exchange.
func (e FloorEvent) RoutingKey() string { return string(e.Type) }
