// Package notify carries order lifecycle events to out-of-band consumers
// such as the kitchen display. Delivery is best-effort: emitting never blocks
// or fails the operation that produced the event.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a lifecycle or payment event headed for the kitchen exchange.
type Event interface {
	// Name is the event type, e.g. "order.created".
	Name() string
	// Key is the routing key, scoped to the owning outlet.
	Key() string
}

// TicketLine is one order line on a kitchen ticket.
type TicketLine struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Modifiers []string `json:"modifiers,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// OrderCreated announces a freshly placed order with its lines.
type OrderCreated struct {
	OrderID     uuid.UUID    `json:"order_id"`
	Number      string       `json:"number"`
	OutletID    uuid.UUID    `json:"outlet_id"`
	OrderType   string       `json:"order_type"`
	TableNumber *int         `json:"table_number,omitempty"`
	Lines       []TicketLine `json:"lines"`
	Total       string       `json:"total"`
}

func (e OrderCreated) Name() string { return "order.created" }
func (e OrderCreated) Key() string {
	return fmt.Sprintf("kitchen.%s.%s", e.OutletID, e.OrderType)
}

// OrderUpdated announces a status change on an existing order.
type OrderUpdated struct {
	OrderID  uuid.UUID `json:"order_id"`
	Number   string    `json:"number"`
	OutletID uuid.UUID `json:"outlet_id"`
	Status   string    `json:"status"`
}

func (e OrderUpdated) Name() string { return "order.updated" }
func (e OrderUpdated) Key() string {
	return fmt.Sprintf("kitchen.%s.status", e.OutletID)
}

// envelope is the wire format shared by all events.
type envelope struct {
	Event     string    `json:"event"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   any       `json:"payload"`
}

// Emitter delivers events to interested consumers.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Noop discards all events. Used when no broker is configured and in tests.
type Noop struct{}

func (Noop) Emit(context.Context, Event) error { return nil }
