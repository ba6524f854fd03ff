package outlet

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines outlet data access.
type Repository interface {
	Create(ctx context.Context, o *Outlet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Outlet, error)
	List(ctx context.Context) ([]*Outlet, error)
	Update(ctx context.Context, o *Outlet) error
}
