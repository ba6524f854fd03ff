package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines payment data access.
type Repository interface {
	// Record reconciles and persists p against its order as one atomic unit:
	// it locks the order, sums the existing completed/processing payments,
	// rejects the amount if it exceeds the remaining balance, inserts the
	// payment, and marks the order completed when the balance reaches zero.
	// Returns whether the order was completed by this payment.
	Record(ctx context.Context, p *Payment) (orderCompleted bool, err error)

	GetByID(ctx context.Context, outletID, id uuid.UUID) (*Payment, error)
	ListByOrder(ctx context.Context, outletID, orderID uuid.UUID) ([]*Payment, error)
	UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status Status) error
}
