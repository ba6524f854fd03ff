package order

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/tkaseba/mesa-pos-backend/internal/modules/menu"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/notify"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/outlet"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeMenu struct {
	items map[uuid.UUID]*menu.MenuItem
}

func (f *fakeMenu) GetByID(_ context.Context, outletID, id uuid.UUID) (*menu.MenuItem, error) {
	item, ok := f.items[id]
	if !ok || item.OutletID != outletID {
		return nil, apperr.NotFound("menu item")
	}
	return item, nil
}

type fakeOutlets struct{ outlets map[uuid.UUID]*outlet.Outlet }

func (f *fakeOutlets) GetByID(_ context.Context, id uuid.UUID) (*outlet.Outlet, error) {
	o, ok := f.outlets[id]
	if !ok {
		return nil, apperr.NotFound("outlet")
	}
	return o, nil
}

// fakeOrderRepo mirrors the postgres repo's semantics in memory: numbering
// through an atomic per-outlet-per-day counter and a terminal guard on
// status writes.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
	seqs   map[string]int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*Order{}, seqs: map[string]int{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := time.Now().UTC().Format("20060102")
	key := o.OutletID.String() + day
	f.seqs[key]++
	o.Number = fmt.Sprintf("ORD-%s-%04d", day, f.seqs[key])
	o.CreatedAt = time.Now()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, outletID, id uuid.UUID) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.OutletID != outletID {
		return nil, apperr.NotFound("order")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetByNumber(_ context.Context, outletID uuid.UUID, number string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Number == number && o.OutletID == outletID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("order")
}

func (f *fakeOrderRepo) List(_ context.Context, outletID uuid.UUID, fl ListFilter) ([]*Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*Order
	for _, o := range f.orders {
		if o.OutletID != outletID {
			continue
		}
		if fl.Status != "" && o.Status != fl.Status {
			continue
		}
		matched = append(matched, o)
	}
	total := len(matched)
	start := (fl.Page - 1) * fl.Limit
	if start > total {
		start = total
	}
	end := start + fl.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, outletID, id uuid.UUID, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.OutletID != outletID {
		return apperr.NotFound("order")
	}
	if o.Status.Terminal() {
		return apperr.InvalidTransition(fmt.Sprintf("order is %s", o.Status))
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) UpdateLinePrep(_ context.Context, outletID, orderID, lineID uuid.UUID, prep PrepStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.OutletID != outletID {
		return apperr.NotFound("order line")
	}
	for _, l := range o.Lines {
		if l.ID == lineID {
			l.PrepStatus = prep
			return nil
		}
	}
	return apperr.NotFound("order line")
}

type captureEmitter struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (c *captureEmitter) Emit(_ context.Context, ev notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broker unreachable")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *captureEmitter) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Name()
	}
	return out
}

// ── fixtures ─────────────────────────────────────────────────────────────────

type fixture struct {
	svc     Service
	repo    *fakeOrderRepo
	emitter *captureEmitter
	p       rbac.Principal
	burger  *menu.MenuItem
	fries   *menu.MenuItem
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	outletID := uuid.New()
	p := rbac.Principal{ID: uuid.New(), Role: rbac.RoleWaiter, OutletID: outletID, Active: true}

	burger := &menu.MenuItem{
		ID: uuid.New(), OutletID: outletID, Name: "Burger",
		Price: decimal.RequireFromString("10.00"), IsActive: true,
	}
	fries := &menu.MenuItem{
		ID: uuid.New(), OutletID: outletID, Name: "Fries",
		Price: decimal.RequireFromString("4.00"), IsActive: true,
		ModifierGroups: []menu.ModifierGroup{{
			Name: "Extras", MaxSelect: 2,
			Options: []menu.ModifierOption{{Name: "Cheese", Price: decimal.RequireFromString("1.00")}},
		}},
	}

	repo := newFakeOrderRepo()
	emitter := &captureEmitter{}
	svc := NewService(repo,
		&fakeMenu{items: map[uuid.UUID]*menu.MenuItem{burger.ID: burger, fries.ID: fries}},
		&fakeOutlets{outlets: map[uuid.UUID]*outlet.Outlet{outletID: {
			ID: outletID, Name: "Main Street", TaxRatePercent: decimal.RequireFromString("5"), Currency: "INR",
		}}},
		emitter,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		strict)

	return &fixture{svc: svc, repo: repo, emitter: emitter, p: p, burger: burger, fries: fries}
}

func (f *fixture) createRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Type: "takeaway",
		Discount: &DiscountRequest{Type: "fixed", Value: decimal.RequireFromString("1.00")},
		Lines: []LineRequest{
			{MenuItemID: f.burger.ID.String(), Quantity: 2},
			{MenuItemID: f.fries.ID.String(), Quantity: 1,
				Modifiers: []ModifierSelection{{Group: "Extras", Option: "Cheese"}}},
		},
	}
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestCreateOrderComputesTotalsAndSnapshots(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("29.00")))
	assert.True(t, o.DiscountAmount.Equal(decimal.RequireFromString("1.00")))
	assert.True(t, o.TaxAmount.Equal(decimal.RequireFromString("1.40")))
	assert.True(t, o.Total.Equal(decimal.RequireFromString("29.40")))
	assert.Regexp(t, `^ORD-\d{8}-0001$`, o.Number)
	assert.NotNil(t, o.KitchenTicketAt)
	assert.Equal(t, f.p.ID, o.CreatedBy)

	// Prices are snapshots: bumping the menu price later must not change the
	// stored line.
	require.Len(t, o.Lines, 2)
	f.burger.Price = decimal.RequireFromString("99.00")
	stored, err := f.svc.Get(context.Background(), f.p, o.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, "Burger", stored.Lines[0].Name)
	assert.Equal(t, PrepPending, stored.Lines[0].PrepStatus)
}

func TestCreateOrderUnknownItemPersistsNothing(t *testing.T) {
	f := newFixture(t, false)
	req := f.createRequest()
	req.Lines = append(req.Lines, LineRequest{MenuItemID: uuid.NewString(), Quantity: 1})

	_, err := f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.repo.orders, "no partial order may be visible")
}

func TestCreateOrderInactiveItemRejected(t *testing.T) {
	f := newFixture(t, false)
	f.burger.IsActive = false
	_, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateOrderCrossOutletItemRejected(t *testing.T) {
	f := newFixture(t, false)
	f.burger.OutletID = uuid.New()
	_, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t, false)

	req := f.createRequest()
	req.Lines[0].Quantity = 0
	_, err := f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	req = f.createRequest()
	req.Type = "drive_through"
	_, err = f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	req = f.createRequest()
	req.Lines = nil
	_, err = f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	req = f.createRequest()
	req.Type = "dine_in" // no table number
	_, err = f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	req = f.createRequest()
	req.Lines[1].Modifiers = []ModifierSelection{{Group: "Extras", Option: "Bacon"}}
	_, err = f.svc.Create(context.Background(), f.p, req)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateOrderEmitterFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t, false)
	f.emitter.fail = true
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, o.Number)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t, false)
	const n = 16

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
			if assert.NoError(t, err) {
				numbers <- o.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	day := time.Now().UTC().Format("20060102")
	assert.True(t, seen[fmt.Sprintf("ORD-%s-0001", day)])
	assert.True(t, seen[fmt.Sprintf("ORD-%s-%04d", day, n)])
}

func TestSetStatusPermissiveFlow(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	// Permissive machine: any non-terminal hop is fine, even backwards.
	for _, status := range []string{"ready", "confirmed", "served", "completed"} {
		o, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, Status(status), o.Status)
	}

	_, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "pending"})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), "completed is terminal")
}

func TestSetStatusTerminalStates(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	for _, status := range []string{"pending", "completed", "cancelled"} {
		_, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: status})
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	}
}

func TestSetStatusStrictFlow(t *testing.T) {
	f := newFixture(t, true)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "ready"})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), "skipping ahead is rejected")

	o, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	// Cancellation stays allowed from any active state.
	o, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestSetStatusUnknownOrderAndCrossOutlet(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.SetStatus(context.Background(), f.p, uuid.NewString(), UpdateStatusRequest{Status: "confirmed"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	intruder := rbac.Principal{ID: uuid.New(), Role: rbac.RoleAdmin, OutletID: uuid.New(), Active: true}
	_, err = f.svc.SetStatus(context.Background(), intruder, o.ID.String(), UpdateStatusRequest{Status: "confirmed"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), "cross-outlet orders look missing")
}

func TestSetStatusEmitsUpdateEvent(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), f.p, o.ID.String(), UpdateStatusRequest{Status: "preparing"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		names := f.emitter.names()
		return len(names) == 2 && names[0] == "order.created" && names[1] == "order.updated"
	}, time.Second, 10*time.Millisecond)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t, false)
	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(context.Background(), f.p, f.createRequest())
		require.NoError(t, err)
	}

	page, err := f.svc.List(context.Background(), f.p, ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Orders, 2)

	page, err = f.svc.List(context.Background(), f.p, ListFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)

	// Defaults kick in for a zero filter.
	page, err = f.svc.List(context.Background(), f.p, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestSetLinePrep(t *testing.T) {
	f := newFixture(t, false)
	o, err := f.svc.Create(context.Background(), f.p, f.createRequest())
	require.NoError(t, err)

	lineID := o.Lines[0].ID.String()
	require.NoError(t, f.svc.SetLinePrep(context.Background(), f.p, o.ID.String(), lineID, "ready"))

	err = f.svc.SetLinePrep(context.Background(), f.p, o.ID.String(), lineID, "burnt")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = f.svc.SetLinePrep(context.Background(), f.p, o.ID.String(), uuid.NewString(), "ready")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
