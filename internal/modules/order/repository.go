package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/menu"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/outlet"
)

// ListFilter narrows an order listing. Zero values mean "no filter".
type ListFilter struct {
	Status Status
	Table  *int
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// Repository defines order data access. Lookups are outlet-scoped: an order
// from another outlet is reported exactly like a missing one.
type Repository interface {
	// Create persists the order and its lines in one transaction and assigns
	// the order number from the outlet's daily sequence. A number collision
	// surfaces as a Conflict error.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, outletID, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, outletID uuid.UUID, number string) (*Order, error)

	// List returns one page of orders plus the total match count.
	List(ctx context.Context, outletID uuid.UUID, f ListFilter) ([]*Order, int, error)

	// UpdateStatus moves the order to status unless it is already terminal.
	// Returns NotFound for a missing order and InvalidTransition when the
	// terminal guard rejects the write.
	UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status Status) error

	// UpdateLinePrep sets the preparation status of one line.
	UpdateLinePrep(ctx context.Context, outletID, orderID, lineID uuid.UUID, prep PrepStatus) error
}

// Menu is the catalog collaborator consulted at order creation. Satisfied by
// menu.Repository.
type Menu interface {
	GetByID(ctx context.Context, outletID, id uuid.UUID) (*menu.MenuItem, error)
}

// Outlets resolves the acting outlet's tax configuration. Satisfied by
// outlet.Repository.
type Outlets interface {
	GetByID(ctx context.Context, id uuid.UUID) (*outlet.Outlet, error)
}
