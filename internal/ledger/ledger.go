// Package ledger is the in-memory authority over tables, the menu catalog
// and orders.
//
// A Ledger is not safe for concurrent use. Exactly one goroutine (or one
// caller holding a lock) may drive it; every method runs to completion and
// leaves the invariants restored before it returns:
//
//   - a table has at most one open order
//   - an order always has at least one line
//   - order.Total equals the sum of price × quantity over its lines
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/domain"
)

type Ledger struct {
	clock clock.Clock

	tables   map[int]*domain.Table
	tableIDs []int

	menu    map[int]*domain.MenuItem
	menuIDs []int

	// creation order
	orders      []*domain.Order
	nextOrderID int
}

// New builds a ledger over the given roster and catalog. Input slices are
// copied.
func New(c clock.Clock, tables []domain.Table, menu []domain.MenuItem) (*Ledger, error) {
	if c == nil {
		c = clock.Real()
	}
	l := &Ledger{
		clock:       c,
		tables:      make(map[int]*domain.Table, len(tables)),
		menu:        make(map[int]*domain.MenuItem, len(menu)),
		nextOrderID: 1,
	}
	for _, t := range tables {
		if _, dup := l.tables[t.ID]; dup {
			return nil, fmt.Errorf("duplicate table id %d", t.ID)
		}
		if t.Status == "" {
			t.Status = domain.TableAvailable
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("table %d status %q: %w", t.ID, t.Status, ErrInvalidStatus)
		}
		tc := t.Clone()
		l.tables[t.ID] = &tc
		l.tableIDs = append(l.tableIDs, t.ID)
	}
	sort.Ints(l.tableIDs)
	for _, m := range menu {
		if _, dup := l.menu[m.ID]; dup {
			return nil, fmt.Errorf("duplicate menu item id %d", m.ID)
		}
		if err := validateMenuItem(m); err != nil {
			return nil, fmt.Errorf("menu item %d: %w", m.ID, err)
		}
		mc := m.Clone()
		l.menu[m.ID] = &mc
		l.menuIDs = append(l.menuIDs, m.ID)
	}
	return l, nil
}

// Now is the ledger's notion of the current time.
func (l *Ledger) Now() time.Time { return l.clock.Now() }

func (l *Ledger) table(id int) (*domain.Table, error) {
	t, ok := l.tables[id]
	if !ok {
		return nil, fmt.Errorf("table %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (l *Ledger) openOrder(tableID int) *domain.Order {
	for _, o := range l.orders {
		if o.TableID == tableID && o.IsOpen() {
			return o
		}
	}
	return nil
}

// requireOpenOrder resolves the table first so an unknown table reports
// ErrNotFound rather than ErrNoOpenOrder.
func (l *Ledger) requireOpenOrder(tableID int) (*domain.Order, error) {
	if _, err := l.table(tableID); err != nil {
		return nil, err
	}
	o := l.openOrder(tableID)
	if o == nil {
		return nil, fmt.Errorf("table %d: %w", tableID, ErrNoOpenOrder)
	}
	return o, nil
}

// SelectTable looks a table up without changing anything.
func (l *Ledger) SelectTable(tableID int) (domain.Table, error) {
	t, err := l.table(tableID)
	if err != nil {
		return domain.Table{}, err
	}
	return t.Clone(), nil
}

// Tables lists the roster ordered by table id.
func (l *Ledger) Tables() []domain.Table {
	out := make([]domain.Table, 0, len(l.tableIDs))
	for _, id := range l.tableIDs {
		out = append(out, l.tables[id].Clone())
	}
	return out
}

// SetTableStatus overwrites the status unconditionally. Any status can move
// to any other; leaving reserved drops the reservation details.
func (l *Ledger) SetTableStatus(tableID int, status domain.TableStatus) (domain.Table, error) {
	if !status.Valid() {
		return domain.Table{}, fmt.Errorf("table status %q: %w", status, ErrInvalidStatus)
	}
	t, err := l.table(tableID)
	if err != nil {
		return domain.Table{}, err
	}
	t.Status = status
	if status != domain.TableReserved {
		t.Reservation = nil
	}
	return t.Clone(), nil
}

// ReserveTable marks the table reserved and records who it is held for.
func (l *Ledger) ReserveTable(tableID int, r domain.Reservation) (domain.Table, error) {
	if r.Guests < 0 {
		return domain.Table{}, fmt.Errorf("reservation guests %d: %w", r.Guests, ErrInvalidAmount)
	}
	t, err := l.table(tableID)
	if err != nil {
		return domain.Table{}, err
	}
	t.Status = domain.TableReserved
	t.Reservation = &r
	return t.Clone(), nil
}

// Orders returns every order the ledger holds, open and historical, in
// creation order.
func (l *Ledger) Orders() []domain.Order {
	out := make([]domain.Order, 0, len(l.orders))
	for _, o := range l.orders {
		out = append(out, o.Clone())
	}
	return out
}

// CurrentOrder returns the open order for a table, if any.
func (l *Ledger) CurrentOrder(tableID int) (domain.Order, bool) {
	o := l.openOrder(tableID)
	if o == nil {
		return domain.Order{}, false
	}
	return o.Clone(), true
}

// AddItem puts one unit of a menu item on the table's open order, opening a
// pending order when the table has none. opened reports whether a new order
// was created.
func (l *Ledger) AddItem(tableID, menuItemID int) (order domain.Order, opened bool, err error) {
	if _, err := l.table(tableID); err != nil {
		return domain.Order{}, false, err
	}
	item, ok := l.menu[menuItemID]
	if !ok {
		return domain.Order{}, false, fmt.Errorf("menu item %d: %w", menuItemID, ErrNotFound)
	}

	o := l.openOrder(tableID)
	if o == nil {
		o = &domain.Order{
			ID:        l.nextOrderID,
			TableID:   tableID,
			Lines:     []domain.OrderLine{{MenuItemID: item.ID, Quantity: 1, Price: item.Price}},
			Status:    domain.OrderPending,
			CreatedAt: l.clock.Now(),
			Total:     item.Price,
		}
		l.nextOrderID++
		l.orders = append(l.orders, o)
		return o.Clone(), true, nil
	}

	// A single line changes here, so adding the price keeps Total exact.
	if i := o.LineIndex(item.ID); i >= 0 {
		if o.Lines[i].Quantity >= MaxQuantity {
			return domain.Order{}, false, fmt.Errorf("menu item %d: %w", item.ID, ErrQuantityTooLarge)
		}
		o.Lines[i].Quantity++
		o.Total = o.Total.Add(o.Lines[i].Price)
	} else {
		o.Lines = append(o.Lines, domain.OrderLine{MenuItemID: item.ID, Quantity: 1, Price: item.Price})
		o.Total = o.Total.Add(item.Price)
	}
	return o.Clone(), false, nil
}

// UpdateQuantity moves a line's quantity by delta. A result below 1 or above
// MaxQuantity is rejected with ErrInvalidQuantity; lines leave an order only
// via RemoveItem.
func (l *Ledger) UpdateQuantity(tableID, menuItemID, delta int) (domain.Order, error) {
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	i := o.LineIndex(menuItemID)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("menu item %d on order %d: %w", menuItemID, o.ID, ErrNotFound)
	}
	cur := o.Lines[i].Quantity
	if delta > MaxQuantity-cur {
		return domain.Order{}, fmt.Errorf("menu item %d quantity %d%+d: %w", menuItemID, cur, delta, ErrQuantityTooLarge)
	}
	next := cur + delta
	if next < 1 {
		return domain.Order{}, fmt.Errorf("menu item %d quantity %d%+d is below 1: %w", menuItemID, cur, delta, ErrInvalidQuantity)
	}
	o.Lines[i].Quantity = next
	o.Total = o.LineSum()
	return o.Clone(), nil
}

// RemoveItem drops a line. When it was the last line the order itself is
// deleted and removed is true; the returned snapshot then has no lines.
func (l *Ledger) RemoveItem(tableID, menuItemID int) (order domain.Order, removed bool, err error) {
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, false, err
	}
	i := o.LineIndex(menuItemID)
	if i < 0 {
		return domain.Order{}, false, fmt.Errorf("menu item %d on order %d: %w", menuItemID, o.ID, ErrNotFound)
	}
	o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
	o.Total = o.LineSum()
	if len(o.Lines) == 0 {
		l.deleteOrder(o.ID)
		return o.Clone(), true, nil
	}
	return o.Clone(), false, nil
}

func (l *Ledger) deleteOrder(id int) {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return
		}
	}
}

// CloseOrder settles the table's open order and frees the table. With no
// open order it changes nothing and returns ErrNoOpenOrder. Unknown payment
// methods are rejected before anything is touched.
func (l *Ledger) CloseOrder(tableID int, method domain.PaymentMethod) (domain.Order, error) {
	if !method.Valid() {
		return domain.Order{}, fmt.Errorf("payment method %q: %w", method, ErrInvalidPaymentMethod)
	}
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	now := l.clock.Now()
	o.Status = domain.OrderClosed
	o.ClosedAt = &now
	o.PaymentMethod = method
	o.Total = o.LineSum()
	l.tables[tableID].Status = domain.TableAvailable
	l.tables[tableID].Reservation = nil
	return o.Clone(), nil
}

// CancelOrder voids the open order. It stays in history, stamped with the
// cancel time, and the table is freed.
func (l *Ledger) CancelOrder(tableID int) (domain.Order, error) {
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	now := l.clock.Now()
	o.Status = domain.OrderCanceled
	o.ClosedAt = &now
	l.tables[tableID].Status = domain.TableAvailable
	l.tables[tableID].Reservation = nil
	return o.Clone(), nil
}

// SetOrderStatus moves the open order through the kitchen states. Closed and
// canceled are reachable only through CloseOrder and CancelOrder.
func (l *Ledger) SetOrderStatus(tableID int, status domain.OrderStatus) (domain.Order, error) {
	if !status.IsOpen() {
		return domain.Order{}, fmt.Errorf("order status %q: %w", status, ErrInvalidStatus)
	}
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = status
	return o.Clone(), nil
}

// OrderDetails carries the optional order fields. Nil fields are left as
// they are.
type OrderDetails struct {
	Waiter        *string
	Notes         *string
	Discount      *decimal.Decimal
	ServiceCharge *decimal.Decimal
}

// AnnotateOrder sets the free-text and adjustment fields of the open order.
// Discount and service charge are reported separately and never fold into
// Total.
func (l *Ledger) AnnotateOrder(tableID int, d OrderDetails) (domain.Order, error) {
	if d.Discount != nil && !validAmount(*d.Discount) {
		return domain.Order{}, fmt.Errorf("discount %s: %w", d.Discount, ErrInvalidAmount)
	}
	if d.ServiceCharge != nil && !validAmount(*d.ServiceCharge) {
		return domain.Order{}, fmt.Errorf("service charge %s: %w", d.ServiceCharge, ErrInvalidAmount)
	}
	o, err := l.requireOpenOrder(tableID)
	if err != nil {
		return domain.Order{}, err
	}
	if d.Waiter != nil {
		o.Waiter = *d.Waiter
	}
	if d.Notes != nil {
		o.Notes = *d.Notes
	}
	if d.Discount != nil {
		o.Discount = *d.Discount
	}
	if d.ServiceCharge != nil {
		o.ServiceCharge = *d.ServiceCharge
	}
	return o.Clone(), nil
}

// validAmount accepts non-negative amounts in whole cents, so the archive's
// cent columns hold them exactly.
func validAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}
