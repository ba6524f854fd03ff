package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Staff represents an outlet employee who can sign in to the POS.
type Staff struct {
	ID           uuid.UUID `json:"id"`
	OutletID     uuid.UUID `json:"outlet_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         rbac.Role `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateStaffRequest is the payload for registering a staff member.
type CreateStaffRequest struct {
	OutletID string `json:"outlet_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UpdateRoleRequest changes a staff member's role. Admin-only.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
