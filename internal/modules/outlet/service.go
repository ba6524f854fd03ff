package outlet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

// Service defines outlet business logic.
type Service interface {
	Create(ctx context.Context, req CreateOutletRequest) (*Outlet, error)
	Get(ctx context.Context, id string) (*Outlet, error)
	List(ctx context.Context) ([]*Outlet, error)
	Update(ctx context.Context, id string, req CreateOutletRequest) (*Outlet, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, req CreateOutletRequest) (*Outlet, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	o := &Outlet{
		ID:             uuid.New(),
		Name:           req.Name,
		Address:        req.Address,
		TaxRatePercent: req.TaxRatePercent,
		Currency:       currency,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*Outlet, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("outlet")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) List(ctx context.Context) ([]*Outlet, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id string, req CreateOutletRequest) (*Outlet, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Name = req.Name
	o.Address = req.Address
	o.TaxRatePercent = req.TaxRatePercent
	if req.Currency != "" {
		o.Currency = req.Currency
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func validate(req CreateOutletRequest) error {
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "is required"
	}
	if req.TaxRatePercent.IsNegative() || req.TaxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		fields["tax_rate_percent"] = "must be between 0 and 100"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
