package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/summary"
)

const publishTimeout = 5 * time.Second

type FloorServiceInterface interface {
	Tables(ctx context.Context) []domain.Table
	Table(ctx context.Context, tableID int) (domain.Table, error)
	SetTableStatus(ctx context.Context, tableID int, req domain.SetTableStatusRequest) (domain.Table, error)

	CurrentOrder(ctx context.Context, tableID int) (domain.Order, error)
	AddItem(ctx context.Context, tableID int, req domain.AddItemRequest) (domain.Order, error)
	UpdateQuantity(ctx context.Context, tableID, menuItemID int, req domain.UpdateQuantityRequest) (domain.Order, error)
	RemoveItem(ctx context.Context, tableID, menuItemID int) (order domain.Order, removed bool, err error)
	CloseOrder(ctx context.Context, tableID int, req domain.CloseOrderRequest) (domain.Order, error)
	CancelOrder(ctx context.Context, tableID int) (domain.Order, error)
	SetOrderStatus(ctx context.Context, tableID int, req domain.SetOrderStatusRequest) (domain.Order, error)
	AnnotateOrder(ctx context.Context, tableID int, req domain.AnnotateOrderRequest) (domain.Order, error)
	Orders(ctx context.Context) []domain.Order

	Menu(ctx context.Context) []domain.MenuItem
	AddMenuItem(ctx context.Context, req domain.CreateMenuItemRequest) (domain.MenuItem, error)
	MenuItemName(menuItemID int) string

	Today() time.Time
	Summary(ctx context.Context, date time.Time) (summary.DailySummary, bool)
}

// FloorService serializes access to the ledger and announces every
// successful mutation. Events are published while the lock is held so that
// their order on the wire matches the ledger's.
type FloorService struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	pub    Publisher
	lg     *logger.Logger
	loc    *time.Location
	newID  func() string
}

func NewFloorService(l *ledger.Ledger, pub Publisher, lg *logger.Logger, loc *time.Location) *FloorService {
	if loc == nil {
		loc = time.Local
	}
	return &FloorService{
		ledger: l,
		pub:    pub,
		lg:     lg,
		loc:    loc,
		newID:  uuid.NewString,
	}
}

func (fs *FloorService) Tables(ctx context.Context) []domain.Table {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.Tables()
}

func (fs *FloorService) Table(ctx context.Context, tableID int) (domain.Table, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.SelectTable(tableID)
}

func (fs *FloorService) SetTableStatus(ctx context.Context, tableID int, req domain.SetTableStatusRequest) (domain.Table, error) {
	status, err := domain.ParseTableStatus(req.Status)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", ledger.ErrInvalidStatus, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	var t domain.Table
	if status == domain.TableReserved && req.Reservation != nil {
		t, err = fs.ledger.ReserveTable(tableID, *req.Reservation)
	} else {
		t, err = fs.ledger.SetTableStatus(tableID, status)
	}
	if err != nil {
		return domain.Table{}, err
	}
	fs.emit(ctx, domain.FloorEvent{Type: domain.EventTableStatusChanged, TableID: t.ID, TableStatus: t.Status})
	fs.lg.Info("table_status_changed", map[string]any{"table_id": t.ID, "status": t.Status})
	return t, nil
}

func (fs *FloorService) CurrentOrder(ctx context.Context, tableID int) (domain.Order, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, err := fs.ledger.SelectTable(tableID); err != nil {
		return domain.Order{}, err
	}
	o, ok := fs.ledger.CurrentOrder(tableID)
	if !ok {
		return domain.Order{}, fmt.Errorf("table %d: %w", tableID, ledger.ErrNoOpenOrder)
	}
	return o, nil
}

func (fs *FloorService) AddItem(ctx context.Context, tableID int, req domain.AddItemRequest) (domain.Order, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, opened, err := fs.ledger.AddItem(tableID, req.MenuItemID)
	if err != nil {
		return domain.Order{}, err
	}
	typ := domain.EventOrderUpdated
	if opened {
		typ = domain.EventOrderOpened
		fs.lg.Info("order_opened", map[string]any{"order_id": o.ID, "table_id": tableID})
	}
	fs.emitOrder(ctx, typ, o)
	fs.lg.Debug("order_item_added", map[string]any{"order_id": o.ID, "menu_item_id": req.MenuItemID, "total": domain.Money(o.Total)})
	return o, nil
}

func (fs *FloorService) UpdateQuantity(ctx context.Context, tableID, menuItemID int, req domain.UpdateQuantityRequest) (domain.Order, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, err := fs.ledger.UpdateQuantity(tableID, menuItemID, req.Delta)
	if err != nil {
		return domain.Order{}, err
	}
	fs.emitOrder(ctx, domain.EventOrderUpdated, o)
	fs.lg.Debug("order_quantity_updated", map[string]any{"order_id": o.ID, "menu_item_id": menuItemID, "delta": req.Delta})
	return o, nil
}

func (fs *FloorService) RemoveItem(ctx context.Context, tableID, menuItemID int) (domain.Order, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, removed, err := fs.ledger.RemoveItem(tableID, menuItemID)
	if err != nil {
		return domain.Order{}, false, err
	}
	if removed {
		fs.emitOrder(ctx, domain.EventOrderRemoved, o)
		fs.lg.Info("order_removed", map[string]any{"order_id": o.ID, "table_id": tableID})
		return o, true, nil
	}
	fs.emitOrder(ctx, domain.EventOrderUpdated, o)
	return o, false, nil
}

func (fs *FloorService) CloseOrder(ctx context.Context, tableID int, req domain.CloseOrderRequest) (domain.Order, error) {
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ledger.ErrInvalidPaymentMethod, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, err := fs.ledger.CloseOrder(tableID, method)
	if err != nil {
		return domain.Order{}, err
	}
	fs.emitOrder(ctx, domain.EventOrderClosed, o)
	fs.lg.Info("order_closed", map[string]any{
		"order_id":       o.ID,
		"table_id":       tableID,
		"payment_method": o.PaymentMethod,
		"total":          domain.Money(o.Total),
	})
	fs.refreshSummary(ctx)
	return o, nil
}

func (fs *FloorService) CancelOrder(ctx context.Context, tableID int) (domain.Order, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, err := fs.ledger.CancelOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	fs.emitOrder(ctx, domain.EventOrderCanceled, o)
	fs.lg.Info("order_canceled", map[string]any{"order_id": o.ID, "table_id": tableID})
	fs.refreshSummary(ctx)
	return o, nil
}

func (fs *FloorService) SetOrderStatus(ctx context.Context, tableID int, req domain.SetOrderStatusRequest) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ledger.ErrInvalidStatus, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, err := fs.ledger.SetOrderStatus(tableID, status)
	if err != nil {
		return domain.Order{}, err
	}
	fs.emitOrder(ctx, domain.EventOrderStatusChanged, o)
	return o, nil
}

func (fs *FloorService) AnnotateOrder(ctx context.Context, tableID int, req domain.AnnotateOrderRequest) (domain.Order, error) {
	d := ledger.OrderDetails{Waiter: req.Waiter, Notes: req.Notes}
	var err error
	if d.Discount, err = parseAmount(req.Discount); err != nil {
		return domain.Order{}, err
	}
	if d.ServiceCharge, err = parseAmount(req.ServiceCharge); err != nil {
		return domain.Order{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	o, err := fs.ledger.AnnotateOrder(tableID, d)
	if err != nil {
		return domain.Order{}, err
	}
	fs.emitOrder(ctx, domain.EventOrderUpdated, o)
	return o, nil
}

func parseAmount(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", *s, ledger.ErrInvalidAmount)
	}
	return &d, nil
}

func (fs *FloorService) Orders(ctx context.Context) []domain.Order {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.Orders()
}

func (fs *FloorService) Menu(ctx context.Context) []domain.MenuItem {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.Menu()
}

func (fs *FloorService) AddMenuItem(ctx context.Context, req domain.CreateMenuItemRequest) (domain.MenuItem, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("price %q: %w", req.Price, ledger.ErrInvalidMenuItem)
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %v", ledger.ErrInvalidMenuItem, err)
	}
	m := domain.MenuItem{
		Name:        req.Name,
		Price:       price,
		Category:    category,
		Description: req.Description,
		PrepMinutes: req.PrepMinutes,
		Allergens:   req.Allergens,
		Available:   true,
	}
	if req.Available != nil {
		m.Available = *req.Available
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	m, err = fs.ledger.AddMenuItem(m)
	if err != nil {
		return domain.MenuItem{}, err
	}
	fs.lg.Info("menu_item_added", map[string]any{"menu_item_id": m.ID, "name": m.Name, "price": domain.Money(m.Price)})
	return m, nil
}

func (fs *FloorService) MenuItemName(menuItemID int) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.MenuItemName(menuItemID)
}

// Today is the current date in the floor's time zone.
func (fs *FloorService) Today() time.Time {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ledger.Now().In(fs.loc)
}

// Summary aggregates the ledger's orders for the calendar day of date, read
// in date's location.
func (fs *FloorService) Summary(ctx context.Context, date time.Time) (summary.DailySummary, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return summary.Summarize(fs.ledger.Orders(), date)
}

// Called with mu held.
func (fs *FloorService) emitOrder(ctx context.Context, typ domain.EventType, o domain.Order) {
	fs.emit(ctx, domain.FloorEvent{Type: typ, TableID: o.TableID, Order: &o})
}

// Called with mu held.
func (fs *FloorService) emit(ctx context.Context, ev domain.FloorEvent) {
	ev.ID = fs.newID()
	ev.OccurredAt = fs.ledger.Now().UTC()
	if ev.TableStatus == "" {
		if t, err := fs.ledger.SelectTable(ev.TableID); err == nil {
			ev.TableStatus = t.Status
		}
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := fs.pub.PublishEvent(pctx, ev); err != nil {
		fs.lg.Error("event_publish_failed", err, map[string]any{"event_id": ev.ID, "type": ev.Type, "table_id": ev.TableID})
		return
	}
	fs.lg.Debug("event_published", map[string]any{"event_id": ev.ID, "type": ev.Type})
}

// Called with mu held. Recomputes today's report after money has moved.
func (fs *FloorService) refreshSummary(ctx context.Context) {
	today := fs.ledger.Now().In(fs.loc)
	s, ok := summary.Summarize(fs.ledger.Orders(), today)
	if !ok {
		return
	}
	fs.lg.Info("daily_summary_refreshed", map[string]any{
		"date":        s.Date,
		"total":       domain.Money(s.TotalAmount),
		"order_count": s.OrderCount,
		"canceled":    s.CanceledOrders,
	})

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := fs.pub.PublishSummary(pctx, summary.NewReport(s, fs.ledger.MenuItemName)); err != nil {
		fs.lg.Error("summary_publish_failed", err, map[string]any{"date": s.Date})
	}
}
