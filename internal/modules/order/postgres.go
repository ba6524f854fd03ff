package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, outlet_id, number, status, type, table_number, notes,
	subtotal, discount_type, discount_amount, tax_amount, total,
	created_by, kitchen_ticket_at, created_at, updated_at`

// Create assigns the order number and persists order plus lines in a single
// transaction. The per-outlet-per-day sequence row is incremented atomically
// inside the same transaction, so concurrent creations can never observe the
// same sequence value.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	day := time.Now().UTC().Format("20060102")
	var seq int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_sequences (outlet_id, day, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (outlet_id, day)
		DO UPDATE SET last_seq = order_sequences.last_seq + 1
		RETURNING last_seq`, o.OutletID, day).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next order sequence: %w", err)
	}
	o.Number = fmt.Sprintf("ORD-%s-%04d", day, seq)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, outlet_id, number, status, type, table_number, notes,
		   subtotal, discount_type, discount_amount, tax_amount, total,
		   created_by, kitchen_ticket_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		o.ID, o.OutletID, o.Number, o.Status, o.Type, o.TableNumber, o.Notes,
		o.Subtotal, o.DiscountType, o.DiscountAmount, o.TaxAmount, o.Total,
		o.CreatedBy, o.KitchenTicketAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return apperr.Conflict("order number collision", err)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range o.Lines {
		mods, err := json.Marshal(line.Modifiers)
		if err != nil {
			return fmt.Errorf("marshal line modifiers: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines
			  (id, order_id, menu_item_id, name, unit_price, quantity, modifiers, notes, prep_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			line.ID, o.ID, line.MenuItemID, line.Name, line.UnitPrice,
			line.Quantity, mods, line.Notes, line.PrepStatus)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1 AND outlet_id=$2`, id, outletID))
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.listLines(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetByNumber(ctx context.Context, outletID uuid.UUID, number string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number=$1 AND outlet_id=$2`, number, outletID))
	if err != nil {
		return nil, err
	}
	o.Lines, err = r.listLines(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) List(ctx context.Context, outletID uuid.UUID, f ListFilter) ([]*Order, int, error) {
	where := `WHERE outlet_id=$1`
	args := []interface{}{outletID}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where += fmt.Sprintf(` AND %s$%d`, cond, len(args))
	}
	if f.Status != "" {
		add(`status=`, f.Status)
	}
	if f.Table != nil {
		add(`table_number=`, *f.Table)
	}
	if f.From != nil {
		add(`created_at>=`, *f.From)
	}
	if f.To != nil {
		add(`created_at<`, *f.To)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, o := range orders {
		if o.Lines, err = r.listLines(ctx, o.ID); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

// UpdateStatus carries the terminal guard in SQL so a concurrent completion
// or cancellation cannot be overwritten.
func (r *postgresRepo) UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status=$1, updated_at=$2
		WHERE id=$3 AND outlet_id=$4 AND status NOT IN ($5, $6)`,
		status, time.Now(), id, outletID, StatusCompleted, StatusCancelled)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// Distinguish missing from terminal.
	var current Status
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id=$1 AND outlet_id=$2`, id, outletID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("order")
	}
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("order is %s", current))
}

func (r *postgresRepo) UpdateLinePrep(ctx context.Context, outletID, orderID, lineID uuid.UUID, prep PrepStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE order_lines SET prep_status=$1, updated_at=$2
		WHERE id=$3 AND order_id=$4
		  AND EXISTS (SELECT 1 FROM orders WHERE id=$4 AND outlet_id=$5)`,
		prep, time.Now(), lineID, orderID, outletID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("order line")
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var table sql.NullInt64
	var discountType sql.NullString
	var ticketAt sql.NullTime
	err := row.Scan(&o.ID, &o.OutletID, &o.Number, &o.Status, &o.Type, &table, &o.Notes,
		&o.Subtotal, &discountType, &o.DiscountAmount, &o.TaxAmount, &o.Total,
		&o.CreatedBy, &ticketAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, err
	}
	if table.Valid {
		n := int(table.Int64)
		o.TableNumber = &n
	}
	if discountType.Valid {
		o.DiscountType = DiscountType(discountType.String)
	}
	if ticketAt.Valid {
		t := ticketAt.Time
		o.KitchenTicketAt = &t
	}
	return o, nil
}

func (r *postgresRepo) listLines(ctx context.Context, orderID uuid.UUID) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, name, unit_price, quantity, modifiers, notes, prep_status, created_at, updated_at
		FROM order_lines WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []*Line
	for rows.Next() {
		line := &Line{}
		var mods []byte
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Name,
			&line.UnitPrice, &line.Quantity, &mods, &line.Notes, &line.PrepStatus,
			&line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		if len(mods) > 0 {
			if err := json.Unmarshal(mods, &line.Modifiers); err != nil {
				return nil, fmt.Errorf("unmarshal line modifiers: %w", err)
			}
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
