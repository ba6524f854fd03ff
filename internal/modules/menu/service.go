package menu

import (
	"context"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Service defines menu business logic. All operations act within the
// principal's outlet.
type Service interface {
	CreateItem(ctx context.Context, p rbac.Principal, req UpsertItemRequest) (*MenuItem, error)
	GetItem(ctx context.Context, p rbac.Principal, id string) (*MenuItem, error)
	ListItems(ctx context.Context, p rbac.Principal, category string, activeOnly bool) ([]*MenuItem, error)
	UpdateItem(ctx context.Context, p rbac.Principal, id string, req UpsertItemRequest) (*MenuItem, error)
	SetItemActive(ctx context.Context, p rbac.Principal, id string, active bool) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateItem(ctx context.Context, p rbac.Principal, req UpsertItemRequest) (*MenuItem, error) {
	if err := validateItem(req); err != nil {
		return nil, err
	}
	item := &MenuItem{
		ID:             uuid.New(),
		OutletID:       p.OutletID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		ModifierGroups: req.ModifierGroups,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, p rbac.Principal, id string) (*MenuItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("menu item")
	}
	return s.repo.GetByID(ctx, p.OutletID, uid)
}

func (s *service) ListItems(ctx context.Context, p rbac.Principal, category string, activeOnly bool) ([]*MenuItem, error) {
	return s.repo.List(ctx, p.OutletID, category, activeOnly)
}

func (s *service) UpdateItem(ctx context.Context, p rbac.Principal, id string, req UpsertItemRequest) (*MenuItem, error) {
	if err := validateItem(req); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, p, id)
	if err != nil {
		return nil, err
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.Price = req.Price
	item.ModifierGroups = req.ModifierGroups
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) SetItemActive(ctx context.Context, p rbac.Principal, id string, active bool) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("menu item")
	}
	return s.repo.SetActive(ctx, p.OutletID, uid, active)
}

func validateItem(req UpsertItemRequest) error {
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "is required"
	}
	if req.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	for _, g := range req.ModifierGroups {
		if g.Name == "" {
			fields["modifier_groups"] = "group name is required"
		}
		for _, opt := range g.Options {
			if opt.Price.IsNegative() {
				fields["modifier_groups"] = "option price must not be negative"
			}
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
