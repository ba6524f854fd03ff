package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const staffColumns = `id, outlet_id, email, password_hash, full_name, role, is_active, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, s *Staff) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staff (id, outlet_id, email, password_hash, full_name, role, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.OutletID, s.Email, s.PasswordHash, s.FullName, s.Role, s.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return apperr.Conflict("email already registered", err)
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return r.getBy(ctx, `WHERE id=$1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return r.getBy(ctx, `WHERE email=$1`, email)
}

func (r *postgresRepo) getBy(ctx context.Context, where string, arg interface{}) (*Staff, error) {
	s := &Staff{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff `+where, arg).
		Scan(&s.ID, &s.OutletID, &s.Email, &s.PasswordHash, &s.FullName,
			&s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("staff member")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListByOutlet(ctx context.Context, outletID uuid.UUID) ([]*Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE outlet_id=$1 ORDER BY full_name`, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []*Staff
	for rows.Next() {
		s := &Staff{}
		if err := rows.Scan(&s.ID, &s.OutletID, &s.Email, &s.PasswordHash, &s.FullName,
			&s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, s)
	}
	return members, rows.Err()
}

func (r *postgresRepo) UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET role=$1, updated_at=$2 WHERE id=$3`, role, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("staff member")
	}
	return nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET is_active=$1, updated_at=$2 WHERE id=$3`, active, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("staff member")
	}
	return nil
}
