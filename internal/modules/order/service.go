package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/notify"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Service defines the order lifecycle business logic. Every operation acts
// within the principal's outlet.
type Service interface {
	// Create validates the requested lines against the menu, snapshots
	// prices, computes totals, and persists the order atomically.
	Create(ctx context.Context, p rbac.Principal, req CreateOrderRequest) (*Order, error)

	// SetStatus moves an order to a new lifecycle status.
	SetStatus(ctx context.Context, p rbac.Principal, id string, req UpdateStatusRequest) (*Order, error)

	Get(ctx context.Context, p rbac.Principal, id string) (*Order, error)
	GetByNumber(ctx context.Context, p rbac.Principal, number string) (*Order, error)
	List(ctx context.Context, p rbac.Principal, f ListFilter) (*Page, error)

	// SetLinePrep updates the kitchen preparation status of a single line.
	SetLinePrep(ctx context.Context, p rbac.Principal, orderID, lineID, prep string) error
}

type service struct {
	repo    Repository
	menu    Menu
	outlets Outlets
	emitter notify.Emitter
	log     *slog.Logger

	// strictFlow switches the permissive state machine (any non-terminal →
	// any non-terminal) to forward-only + cancellable.
	strictFlow bool
}

// NewService creates a new order service.
func NewService(repo Repository, menuRepo Menu, outlets Outlets, emitter notify.Emitter, log *slog.Logger, strictFlow bool) Service {
	return &service{repo: repo, menu: menuRepo, outlets: outlets, emitter: emitter, log: log, strictFlow: strictFlow}
}

// forwardTransitions is the tightened state machine used when strictFlow is
// on. Cancellation from non-terminal states is always allowed and handled
// separately.
var forwardTransitions = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
	StatusServed:    StatusCompleted,
}

func (s *service) Create(ctx context.Context, p rbac.Principal, req CreateOrderRequest) (*Order, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	out, err := s.outlets.GetByID(ctx, p.OutletID)
	if err != nil {
		return nil, err
	}

	discount := DiscountSpec{}
	if req.Discount != nil {
		discount = DiscountSpec{Type: DiscountType(req.Discount.Type), Value: req.Discount.Value}
	}

	// Resolve every line against the menu before anything is persisted, so a
	// single bad reference creates nothing.
	lines := make([]*Line, 0, len(req.Lines))
	priced := make([]PricedLine, 0, len(req.Lines))
	for i, lr := range req.Lines {
		itemID, err := uuid.Parse(lr.MenuItemID)
		if err != nil {
			return nil, apperr.Validation(map[string]string{
				fmt.Sprintf("lines[%d].menu_item_id", i): "must be a valid id",
			})
		}
		item, err := s.menu.GetByID(ctx, p.OutletID, itemID)
		if err != nil {
			return nil, err
		}
		if !item.IsActive {
			return nil, apperr.NotFound("menu item")
		}

		mods := make([]SelectedModifier, 0, len(lr.Modifiers))
		modPrices := make([]decimal.Decimal, 0, len(lr.Modifiers))
		for _, sel := range lr.Modifiers {
			group, ok := item.Group(sel.Group)
			if !ok {
				return nil, apperr.Validation(map[string]string{
					fmt.Sprintf("lines[%d].modifiers", i): fmt.Sprintf("unknown modifier group %q", sel.Group),
				})
			}
			opt, ok := group.Option(sel.Option)
			if !ok {
				return nil, apperr.Validation(map[string]string{
					fmt.Sprintf("lines[%d].modifiers", i): fmt.Sprintf("unknown option %q in group %q", sel.Option, sel.Group),
				})
			}
			mods = append(mods, SelectedModifier{Group: group.Name, Name: opt.Name, Price: opt.Price})
			modPrices = append(modPrices, opt.Price)
		}

		lines = append(lines, &Line{
			ID:         uuid.New(),
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  item.Price,
			Quantity:   lr.Quantity,
			Modifiers:  mods,
			Notes:      lr.Notes,
			PrepStatus: PrepPending,
		})
		priced = append(priced, PricedLine{UnitPrice: item.Price, Quantity: lr.Quantity, Modifiers: modPrices})
	}

	totals := ComputeTotals(priced, discount, out.TaxRatePercent)

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New(),
		OutletID:        p.OutletID,
		Status:          StatusPending,
		Type:            Type(req.Type),
		TableNumber:     req.TableNumber,
		Notes:           req.Notes,
		Subtotal:        totals.Subtotal,
		DiscountType:    discount.Type,
		DiscountAmount:  totals.DiscountAmount,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		CreatedBy:       p.ID,
		KitchenTicketAt: &now,
		Lines:           lines,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.emit(notify.OrderCreated{
		OrderID:     o.ID,
		Number:      o.Number,
		OutletID:    o.OutletID,
		OrderType:   string(o.Type),
		TableNumber: o.TableNumber,
		Lines:       ticketLines(o.Lines),
		Total:       o.Total.StringFixed(2),
	})
	return o, nil
}

func (s *service) SetStatus(ctx context.Context, p rbac.Principal, id string, req UpdateStatusRequest) (*Order, error) {
	next := Status(strings.ToLower(req.Status))
	if !next.Valid() {
		return nil, apperr.Validation(map[string]string{"status": "unknown status"})
	}

	o, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, apperr.InvalidTransition(fmt.Sprintf("order is %s", o.Status))
	}
	if s.strictFlow && next != StatusCancelled && forwardTransitions[o.Status] != next {
		return nil, apperr.InvalidTransition(fmt.Sprintf("cannot move order from %s to %s", o.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, p.OutletID, o.ID, next); err != nil {
		return nil, err
	}
	o.Status = next

	s.emit(notify.OrderUpdated{
		OrderID:  o.ID,
		Number:   o.Number,
		OutletID: o.OutletID,
		Status:   string(next),
	})
	return o, nil
}

func (s *service) Get(ctx context.Context, p rbac.Principal, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("order")
	}
	return s.repo.GetByID(ctx, p.OutletID, uid)
}

func (s *service) GetByNumber(ctx context.Context, p rbac.Principal, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, p.OutletID, number)
}

func (s *service) List(ctx context.Context, p rbac.Principal, f ListFilter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	orders, total, err := s.repo.List(ctx, p.OutletID, f)
	if err != nil {
		return nil, err
	}
	pages := (total + f.Limit - 1) / f.Limit
	return &Page{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit, Pages: pages}, nil
}

func (s *service) SetLinePrep(ctx context.Context, p rbac.Principal, orderID, lineID, prep string) error {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return apperr.NotFound("order")
	}
	lid, err := uuid.Parse(lineID)
	if err != nil {
		return apperr.NotFound("order line")
	}
	status := PrepStatus(strings.ToLower(prep))
	if !status.Valid() {
		return apperr.Validation(map[string]string{"prep_status": "unknown preparation status"})
	}
	return s.repo.UpdateLinePrep(ctx, p.OutletID, oid, lid, status)
}

// emit delivers ev off the request path. A broker failure is logged and never
// reaches the caller.
func (s *service) emit(ev notify.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.emitter.Emit(ctx, ev); err != nil {
			s.log.Error("emit event failed", "event", ev.Name(), "key", ev.Key(), "error", err)
		}
	}()
}

func ticketLines(lines []*Line) []notify.TicketLine {
	out := make([]notify.TicketLine, len(lines))
	for i, l := range lines {
		names := make([]string, len(l.Modifiers))
		for j, m := range l.Modifiers {
			names[j] = m.Name
		}
		out[i] = notify.TicketLine{Name: l.Name, Quantity: l.Quantity, Modifiers: names, Notes: l.Notes}
	}
	return out
}

func validateCreate(req CreateOrderRequest) error {
	fields := map[string]string{}
	if !Type(req.Type).Valid() {
		fields["type"] = "must be one of dine_in, takeaway, delivery"
	}
	if Type(req.Type) == TypeDineIn && req.TableNumber == nil {
		fields["table_number"] = "is required for dine_in orders"
	}
	if len(req.Lines) == 0 {
		fields["lines"] = "order must contain at least one line"
	}
	for i, l := range req.Lines {
		if l.Quantity < 1 {
			fields[fmt.Sprintf("lines[%d].quantity", i)] = "must be at least 1"
		}
	}
	if len(req.Notes) > maxNotesLen {
		fields["notes"] = fmt.Sprintf("must be at most %d characters", maxNotesLen)
	}
	if req.Discount != nil {
		switch DiscountType(req.Discount.Type) {
		case DiscountPercentage:
			if req.Discount.Value.IsNegative() || req.Discount.Value.GreaterThan(decimal.NewFromInt(100)) {
				fields["discount.value"] = "percentage must be between 0 and 100"
			}
		case DiscountFixed:
			if req.Discount.Value.IsNegative() {
				fields["discount.value"] = "must not be negative"
			}
		default:
			fields["discount.type"] = "must be percentage or fixed"
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
