package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusServed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Type indicates how the order will be fulfilled.
type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeTakeaway Type = "takeaway"
	TypeDelivery Type = "delivery"
)

func (t Type) Valid() bool {
	return t == TypeDineIn || t == TypeTakeaway || t == TypeDelivery
}

// PrepStatus tracks a single line through the kitchen, independent of the
// order's overall status.
type PrepStatus string

const (
	PrepPending   PrepStatus = "pending"
	PrepPreparing PrepStatus = "preparing"
	PrepReady     PrepStatus = "ready"
	PrepServed    PrepStatus = "served"
)

func (p PrepStatus) Valid() bool {
	return p == PrepPending || p == PrepPreparing || p == PrepReady || p == PrepServed
}

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// SelectedModifier is a priced add-on chosen on a line, snapshotted at order
// time from the menu item's modifier groups.
type SelectedModifier struct {
	Group string          `json:"group"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Line is a single item on an order. Name and UnitPrice are snapshots of the
// menu item as of order time: later menu edits never alter historical orders.
type Line struct {
	ID         uuid.UUID          `json:"id"`
	OrderID    uuid.UUID          `json:"order_id"`
	MenuItemID uuid.UUID          `json:"menu_item_id"`
	Name       string             `json:"name"`
	UnitPrice  decimal.Decimal    `json:"unit_price"`
	Quantity   int                `json:"quantity"`
	Modifiers  []SelectedModifier `json:"modifiers,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	PrepStatus PrepStatus         `json:"prep_status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Order is a customer order at an outlet. All monetary fields are computed
// server-side from the lines at creation time.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OutletID        uuid.UUID       `json:"outlet_id"`
	Number          string          `json:"number"`
	Status          Status          `json:"status"`
	Type            Type            `json:"type"`
	TableNumber     *int            `json:"table_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountType    DiscountType    `json:"discount_type,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
	CreatedBy       uuid.UUID       `json:"created_by"`
	KitchenTicketAt *time.Time      `json:"kitchen_ticket_at,omitempty"`
	Lines           []*Line         `json:"lines,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ── Request/response DTOs ────────────────────────────────────────────────────

// ModifierSelection picks one option from a named group on a menu item.
type ModifierSelection struct {
	Group  string `json:"group"`
	Option string `json:"option"`
}

// LineRequest describes one requested line at creation time. Prices are never
// client-supplied; they are resolved from the menu.
type LineRequest struct {
	MenuItemID string              `json:"menu_item_id"`
	Quantity   int                 `json:"quantity"`
	Modifiers  []ModifierSelection `json:"modifiers,omitempty"`
	Notes      string              `json:"notes,omitempty"`
}

// DiscountRequest describes an order-level discount.
type DiscountRequest struct {
	Type  string          `json:"type"` // percentage | fixed
	Value decimal.Decimal `json:"value"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	Type        string           `json:"type"`
	TableNumber *int             `json:"table_number,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Discount    *DiscountRequest `json:"discount,omitempty"`
	Lines       []LineRequest    `json:"lines"`
}

// UpdateStatusRequest is the payload for moving an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Page is one page of an order listing.
type Page struct {
	Orders []*Order `json:"orders"`
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
	Pages  int      `json:"pages"`
}

const maxNotesLen = 500
