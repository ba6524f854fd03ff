package menu

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines menu item data access. Every lookup is scoped to an
// outlet: an item belonging to another outlet is indistinguishable from a
// missing one.
type Repository interface {
	Create(ctx context.Context, item *MenuItem) error
	GetByID(ctx context.Context, outletID, id uuid.UUID) (*MenuItem, error)
	List(ctx context.Context, outletID uuid.UUID, category string, activeOnly bool) ([]*MenuItem, error)
	Update(ctx context.Context, item *MenuItem) error
	SetActive(ctx context.Context, outletID, id uuid.UUID, active bool) error
}
