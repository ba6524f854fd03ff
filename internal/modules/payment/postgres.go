package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const paymentColumns = `id, order_id, outlet_id, method, amount, status,
	transaction_ref, processed_by, paid_at, created_at, updated_at`

// Record runs the whole reconciliation inside one transaction. The row lock
// on the order serializes concurrent payment attempts, so two payments can
// never both pass the balance check and jointly overpay.
func (r *postgresRepo) Record(ctx context.Context, p *Payment) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var total decimal.Decimal
	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT total, status FROM orders
		WHERE id=$1 AND outlet_id=$2
		FOR UPDATE`, p.OrderID, p.OutletID).Scan(&total, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apperr.NotFound("order")
	}
	if err != nil {
		return false, fmt.Errorf("lock order: %w", err)
	}
	if status == "cancelled" {
		return false, apperr.InvalidTransition("order is cancelled")
	}

	var paidSoFar decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE order_id=$1 AND status IN ($2, $3)`,
		p.OrderID, StatusCompleted, StatusProcessing).Scan(&paidSoFar)
	if err != nil {
		return false, fmt.Errorf("sum payments: %w", err)
	}

	remaining := total.Sub(paidSoFar)
	if p.Amount.GreaterThan(remaining) {
		return false, apperr.Overpayment(remaining)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments
		  (id, order_id, outlet_id, method, amount, status, transaction_ref, processed_by, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.OrderID, p.OutletID, p.Method, p.Amount, p.Status,
		p.TransactionRef, p.ProcessedBy, p.PaidAt)
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", err)
	}

	completed := false
	if paidSoFar.Add(p.Amount).GreaterThanOrEqual(total) {
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET status='completed', updated_at=$1 WHERE id=$2`,
			time.Now(), p.OrderID)
		if err != nil {
			return false, fmt.Errorf("complete order: %w", err)
		}
		completed = true
	}

	return completed, tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id=$1 AND outlet_id=$2`, id, outletID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("payment")
	}
	return p, err
}

func (r *postgresRepo) ListByOrder(ctx context.Context, outletID, orderID uuid.UUID) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE order_id=$1 AND outlet_id=$2 ORDER BY paid_at ASC`, orderID, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status=$1, updated_at=$2 WHERE id=$3 AND outlet_id=$4`,
		status, time.Now(), id, outletID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("payment")
	}
	return nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanPayment(row rowScanner) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(&p.ID, &p.OrderID, &p.OutletID, &p.Method, &p.Amount, &p.Status,
		&p.TransactionRef, &p.ProcessedBy, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
