package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, item *MenuItem) error {
	groups, err := json.Marshal(item.ModifierGroups)
	if err != nil {
		return fmt.Errorf("marshal modifier groups: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, outlet_id, name, description, category, price, modifier_groups, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.OutletID, item.Name, item.Description, item.Category,
		item.Price, groups, item.IsActive)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*MenuItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT id, outlet_id, name, description, category, price, modifier_groups, is_active, created_at, updated_at
		FROM menu_items WHERE id=$1 AND outlet_id=$2`, id, outletID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("menu item")
	}
	return item, err
}

func (r *postgresRepo) List(ctx context.Context, outletID uuid.UUID, category string, activeOnly bool) ([]*MenuItem, error) {
	query := `SELECT id, outlet_id, name, description, category, price, modifier_groups, is_active, created_at, updated_at
	          FROM menu_items WHERE outlet_id=$1`
	args := []interface{}{outletID}
	if category != "" {
		query += fmt.Sprintf(` AND category=$%d`, len(args)+1)
		args = append(args, category)
	}
	if activeOnly {
		query += ` AND is_active=true`
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, item *MenuItem) error {
	groups, err := json.Marshal(item.ModifierGroups)
	if err != nil {
		return fmt.Errorf("marshal modifier groups: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name=$1, description=$2, category=$3, price=$4, modifier_groups=$5, updated_at=$6
		WHERE id=$7 AND outlet_id=$8`,
		item.Name, item.Description, item.Category, item.Price, groups,
		time.Now(), item.ID, item.OutletID)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("menu item")
	}
	return nil
}

func (r *postgresRepo) SetActive(ctx context.Context, outletID, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items SET is_active=$1, updated_at=$2 WHERE id=$3 AND outlet_id=$4`,
		active, time.Now(), id, outletID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("menu item")
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanItem(row rowScanner) (*MenuItem, error) {
	item := &MenuItem{}
	var groups []byte
	err := row.Scan(&item.ID, &item.OutletID, &item.Name, &item.Description,
		&item.Category, &item.Price, &groups, &item.IsActive,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &item.ModifierGroups); err != nil {
			return nil, fmt.Errorf("unmarshal modifier groups: %w", err)
		}
	}
	return item, nil
}
