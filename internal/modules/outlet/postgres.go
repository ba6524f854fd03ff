package outlet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, o *Outlet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outlets (id, name, address, tax_rate_percent, currency, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.Name, o.Address, o.TaxRatePercent, o.Currency, o.IsActive)
	if err != nil {
		return fmt.Errorf("insert outlet: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Outlet, error) {
	o := &Outlet{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, tax_rate_percent, currency, is_active, created_at, updated_at
		FROM outlets WHERE id=$1`, id).
		Scan(&o.ID, &o.Name, &o.Address, &o.TaxRatePercent, &o.Currency, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("outlet")
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]*Outlet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, tax_rate_percent, currency, is_active, created_at, updated_at
		FROM outlets ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var outlets []*Outlet
	for rows.Next() {
		o := &Outlet{}
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.TaxRatePercent, &o.Currency, &o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		outlets = append(outlets, o)
	}
	return outlets, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, o *Outlet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE outlets SET name=$1, address=$2, tax_rate_percent=$3, currency=$4, is_active=$5, updated_at=$6
		WHERE id=$7`,
		o.Name, o.Address, o.TaxRatePercent, o.Currency, o.IsActive, time.Now(), o.ID)
	if err != nil {
		return fmt.Errorf("update outlet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("outlet")
	}
	return nil
}
