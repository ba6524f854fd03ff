package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Service defines staff management business logic.
type Service interface {
	Create(ctx context.Context, req CreateStaffRequest) (*Staff, error)
	Get(ctx context.Context, id string) (*Staff, error)
	ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]*Staff, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*Staff, error)
	Deactivate(ctx context.Context, id string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req CreateStaffRequest) (*Staff, error) {
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if req.FullName == "" {
		fields["full_name"] = "is required"
	}
	role := rbac.Role(strings.ToLower(req.Role))
	if !role.Valid() {
		fields["role"] = "must be one of waiter, cashier, admin"
	}
	outletID, err := uuid.Parse(req.OutletID)
	if err != nil {
		fields["outlet_id"] = "must be a valid id"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	member := &Staff{
		ID:           uuid.New(),
		OutletID:     outletID,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) Get(ctx context.Context, id string) (*Staff, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("staff member")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]*Staff, error) {
	return s.repo.ListByOutlet(ctx, outletID)
}

// UpdateRole is the only path by which a role changes after assignment.
func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*Staff, error) {
	role := rbac.Role(strings.ToLower(req.Role))
	if !role.Valid() {
		return nil, apperr.Validation(map[string]string{"role": "must be one of waiter, cashier, admin"})
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, member.ID, role); err != nil {
		return nil, err
	}
	member.Role = role
	return member, nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("staff member")
	}
	return s.repo.SetActive(ctx, uid, false)
}
