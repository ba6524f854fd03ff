package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Repository defines staff data access.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]*Staff, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
