package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method represents how a payment was made.
type Method string

const (
	MethodCard   Method = "card"
	MethodUPI    Method = "upi"
	MethodCash   Method = "cash"
	MethodWallet Method = "wallet"
)

func (m Method) Valid() bool {
	return m == MethodCard || m == MethodUPI || m == MethodCash || m == MethodWallet
}

// Status represents the state of a payment. Only completed and processing
// payments count toward an order's paid balance.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// CountsTowardBalance reports whether a payment in status s reserves part of
// the order's total.
func (s Status) CountsTowardBalance() bool {
	return s == StatusCompleted || s == StatusProcessing
}

// Payment records money taken against an order. Split payment is supported:
// many payments may apply to one order, but their combined completed and
// processing amounts never exceed the order's total.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	OutletID       uuid.UUID       `json:"outlet_id"`
	Method         Method          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	Status         Status          `json:"status"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	ProcessedBy    uuid.UUID       `json:"processed_by"`
	PaidAt         time.Time       `json:"paid_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RecordPaymentRequest is the payload for taking a payment.
type RecordPaymentRequest struct {
	OrderID        string          `json:"order_id"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
}
