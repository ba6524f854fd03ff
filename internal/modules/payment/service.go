package payment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/notify"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/order"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Service defines payment business logic. Capture is synchronous: a recorded
// payment is completed immediately, with no gateway round-trip.
type Service interface {
	// Record takes a payment against an order, enforcing the remaining
	// balance and completing the order once fully paid.
	Record(ctx context.Context, p rbac.Principal, req RecordPaymentRequest) (*Payment, error)

	Get(ctx context.Context, p rbac.Principal, id string) (*Payment, error)
	ListByOrder(ctx context.Context, p rbac.Principal, orderID string) ([]*Payment, error)

	// Refund marks a completed payment refunded, releasing its amount from
	// the order's paid balance.
	Refund(ctx context.Context, p rbac.Principal, id string) (*Payment, error)
}

type service struct {
	repo    Repository
	orders  order.Repository
	emitter notify.Emitter
	log     *slog.Logger
}

// NewService creates a new payment service.
func NewService(repo Repository, orders order.Repository, emitter notify.Emitter, log *slog.Logger) Service {
	return &service{repo: repo, orders: orders, emitter: emitter, log: log}
}

func (s *service) Record(ctx context.Context, p rbac.Principal, req RecordPaymentRequest) (*Payment, error) {
	fields := map[string]string{}
	method := Method(strings.ToLower(req.Method))
	if !method.Valid() {
		fields["method"] = "must be one of card, upi, cash, wallet"
	}
	if !req.Amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		fields["order_id"] = "must be a valid id"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	pay := &Payment{
		ID:             uuid.New(),
		OrderID:        orderID,
		OutletID:       p.OutletID,
		Method:         method,
		Amount:         req.Amount,
		Status:         StatusCompleted,
		TransactionRef: req.TransactionRef,
		ProcessedBy:    p.ID,
		PaidAt:         time.Now().UTC(),
	}

	orderCompleted, err := s.repo.Record(ctx, pay)
	if err != nil {
		return nil, err
	}

	if orderCompleted {
		if o, err := s.orders.GetByID(ctx, p.OutletID, orderID); err == nil {
			s.emit(notify.OrderUpdated{
				OrderID:  o.ID,
				Number:   o.Number,
				OutletID: o.OutletID,
				Status:   string(order.StatusCompleted),
			})
		}
	}
	return pay, nil
}

func (s *service) Get(ctx context.Context, p rbac.Principal, id string) (*Payment, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("payment")
	}
	return s.repo.GetByID(ctx, p.OutletID, uid)
}

func (s *service) ListByOrder(ctx context.Context, p rbac.Principal, orderID string) ([]*Payment, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperr.NotFound("order")
	}
	return s.repo.ListByOrder(ctx, p.OutletID, oid)
}

func (s *service) Refund(ctx context.Context, p rbac.Principal, id string) (*Payment, error) {
	pay, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if pay.Status != StatusCompleted {
		return nil, apperr.InvalidTransition("only completed payments can be refunded")
	}
	if err := s.repo.UpdateStatus(ctx, p.OutletID, pay.ID, StatusRefunded); err != nil {
		return nil, err
	}
	pay.Status = StatusRefunded
	return pay, nil
}

func (s *service) emit(ev notify.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.emitter.Emit(ctx, ev); err != nil {
			s.log.Error("emit event failed", "event", ev.Name(), "key", ev.Key(), "error", err)
		}
	}()
}
