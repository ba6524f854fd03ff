package payment

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/notify"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/order"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// ── fakes ────────────────────────────────────────────────────────────────────

// ledger backs both the payment and order fakes so reconciliation sees one
// consistent store, the way the shared database does in production. Its
// mutex plays the part of the order row lock.
type ledger struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*order.Order
	payments map[uuid.UUID]*Payment
}

func newLedger() *ledger {
	return &ledger{orders: map[uuid.UUID]*order.Order{}, payments: map[uuid.UUID]*Payment{}}
}

func (l *ledger) addOrder(outletID uuid.UUID, total string) *order.Order {
	o := &order.Order{
		ID:       uuid.New(),
		OutletID: outletID,
		Number:   "ORD-20240115-0007",
		Status:   order.StatusServed,
		Total:    decimal.RequireFromString(total),
	}
	l.orders[o.ID] = o
	return o
}

func (l *ledger) paidSoFarLocked(orderID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.payments {
		if p.OrderID == orderID && p.Status.CountsTowardBalance() {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

type fakePaymentRepo struct{ l *ledger }

func (f *fakePaymentRepo) Record(_ context.Context, p *Payment) (bool, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	o, ok := f.l.orders[p.OrderID]
	if !ok || o.OutletID != p.OutletID {
		return false, apperr.NotFound("order")
	}
	if o.Status == order.StatusCancelled {
		return false, apperr.InvalidTransition("order is cancelled")
	}
	paidSoFar := f.l.paidSoFarLocked(p.OrderID)
	remaining := o.Total.Sub(paidSoFar)
	if p.Amount.GreaterThan(remaining) {
		return false, apperr.Overpayment(remaining)
	}
	f.l.payments[p.ID] = p
	if paidSoFar.Add(p.Amount).GreaterThanOrEqual(o.Total) {
		o.Status = order.StatusCompleted
		return true, nil
	}
	return false, nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, outletID, id uuid.UUID) (*Payment, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	p, ok := f.l.payments[id]
	if !ok || p.OutletID != outletID {
		return nil, apperr.NotFound("payment")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) ListByOrder(_ context.Context, outletID, orderID uuid.UUID) ([]*Payment, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	var out []*Payment
	for _, p := range f.l.payments {
		if p.OrderID == orderID && p.OutletID == outletID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, outletID, id uuid.UUID, status Status) error {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	p, ok := f.l.payments[id]
	if !ok || p.OutletID != outletID {
		return apperr.NotFound("payment")
	}
	p.Status = status
	return nil
}

type fakeOrderRepo struct{ l *ledger }

func (f *fakeOrderRepo) Create(context.Context, *order.Order) error { return nil }

func (f *fakeOrderRepo) GetByID(_ context.Context, outletID, id uuid.UUID) (*order.Order, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	o, ok := f.l.orders[id]
	if !ok || o.OutletID != outletID {
		return nil, apperr.NotFound("order")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetByNumber(context.Context, uuid.UUID, string) (*order.Order, error) {
	return nil, apperr.NotFound("order")
}

func (f *fakeOrderRepo) List(context.Context, uuid.UUID, order.ListFilter) ([]*order.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeOrderRepo) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, order.Status) error {
	return nil
}

func (f *fakeOrderRepo) UpdateLinePrep(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, order.PrepStatus) error {
	return nil
}

type captureEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureEmitter) Emit(_ context.Context, ev notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureEmitter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// ── fixtures ─────────────────────────────────────────────────────────────────

func newService(l *ledger) (Service, *captureEmitter) {
	emitter := &captureEmitter{}
	svc := NewService(&fakePaymentRepo{l: l}, &fakeOrderRepo{l: l}, emitter,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, emitter
}

func cashier(outletID uuid.UUID) rbac.Principal {
	return rbac.Principal{ID: uuid.New(), Role: rbac.RoleCashier, OutletID: outletID, Active: true}
}

func pay(amount string, orderID uuid.UUID) RecordPaymentRequest {
	return RecordPaymentRequest{
		OrderID: orderID.String(),
		Method:  "card",
		Amount:  decimal.RequireFromString(amount),
	}
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestSplitPaymentCompletesOrderExactly(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "29.40")
	svc, emitter := newService(l)

	first, err := svc.Record(context.Background(), p, pay("20.00", o.ID))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, first.Status)
	assert.Equal(t, order.StatusServed, l.orders[o.ID].Status, "partial payment leaves the order open")

	_, err = svc.Record(context.Background(), p, pay("9.40", o.ID))
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, l.orders[o.ID].Status, "exact balance completes the order")

	// Fully paid: any further positive amount is an overpayment with zero
	// remaining.
	_, err = svc.Record(context.Background(), p, pay("0.01", o.ID))
	require.Equal(t, apperr.KindOverpayment, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.Remaining.IsZero())

	assert.Eventually(t, func() bool { return emitter.count() == 1 }, time.Second, 10*time.Millisecond,
		"completion emits exactly one order.updated")
}

func TestOverpaymentRejectedAndLeavesPaymentsUnchanged(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "29.40")
	svc, _ := newService(l)

	_, err := svc.Record(context.Background(), p, pay("30.00", o.ID))
	require.Equal(t, apperr.KindOverpayment, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.Remaining.Equal(decimal.RequireFromString("29.40")))
	assert.Empty(t, l.payments, "rejected payment is never persisted")
}

func TestRecordPaymentValidation(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "10.00")
	svc, _ := newService(l)

	cases := []RecordPaymentRequest{
		{OrderID: o.ID.String(), Method: "cheque", Amount: decimal.NewFromInt(5)},
		{OrderID: o.ID.String(), Method: "cash", Amount: decimal.Zero},
		{OrderID: o.ID.String(), Method: "cash", Amount: decimal.NewFromInt(-5)},
		{OrderID: "not-a-uuid", Method: "cash", Amount: decimal.NewFromInt(5)},
	}
	for _, req := range cases {
		_, err := svc.Record(context.Background(), p, req)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "req=%+v", req)
	}
}

func TestPaymentAgainstUnknownOrCrossOutletOrder(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	other := l.addOrder(uuid.New(), "10.00") // different outlet
	svc, _ := newService(l)

	_, err := svc.Record(context.Background(), p, pay("5.00", uuid.New()))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Record(context.Background(), p, pay("5.00", other.ID))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "cross-outlet orders look missing")
}

func TestPaymentAgainstCancelledOrderRejected(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "10.00")
	o.Status = order.StatusCancelled
	svc, _ := newService(l)

	_, err := svc.Record(context.Background(), p, pay("5.00", o.ID))
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "100.00")
	svc, _ := newService(l)

	const attempts = 10
	each := decimal.RequireFromString("15.00")

	var wg sync.WaitGroup
	var accepted, rejected int32
	var mu sync.Mutex
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(context.Background(), p, pay("15.00", o.ID))
			mu.Lock()
			defer mu.Unlock()
			switch apperr.KindOf(err) {
			case "":
				accepted++
			case apperr.KindOverpayment:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 6 payments of 15.00 fit under 100.00; the seventh would overshoot.
	assert.EqualValues(t, 6, accepted)
	assert.EqualValues(t, 4, rejected)

	l.mu.Lock()
	defer l.mu.Unlock()
	paid := l.paidSoFarLocked(o.ID)
	assert.True(t, paid.Equal(each.Mul(decimal.NewFromInt(6))))
	assert.True(t, paid.LessThanOrEqual(o.Total), "paid sum never exceeds the total")
}

func TestRefundReleasesBalance(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "10.00")
	svc, _ := newService(l)

	first, err := svc.Record(context.Background(), p, pay("10.00", o.ID))
	require.NoError(t, err)

	refunded, err := svc.Refund(context.Background(), p, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)

	// A refunded payment no longer reserves balance, so a replacement
	// payment fits again.
	_, err = svc.Record(context.Background(), p, pay("10.00", o.ID))
	require.NoError(t, err)

	// Refunding twice is illegal.
	_, err = svc.Refund(context.Background(), p, first.ID.String())
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestListByOrder(t *testing.T) {
	l := newLedger()
	p := cashier(uuid.New())
	o := l.addOrder(p.OutletID, "30.00")
	svc, _ := newService(l)

	_, err := svc.Record(context.Background(), p, pay("10.00", o.ID))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), p, RecordPaymentRequest{
		OrderID: o.ID.String(), Method: "upi", Amount: decimal.RequireFromString("20.00"),
	})
	require.NoError(t, err)

	payments, err := svc.ListByOrder(context.Background(), p, o.ID.String())
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}
