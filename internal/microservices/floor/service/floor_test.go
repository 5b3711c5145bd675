package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
	"restaurant-floor/internal/seed"
	"restaurant-floor/internal/summary"
)

type fakePublisher struct {
	events    []domain.FloorEvent
	summaries []summary.Report
	err       error
}

func (f *fakePublisher) PublishEvent(_ context.Context, ev domain.FloorEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) PublishSummary(_ context.Context, r summary.Report) error {
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, r)
	return nil
}

func (f *fakePublisher) types() []domain.EventType {
	out := make([]domain.EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(t *testing.T) (*FloorService, *fakePublisher, *clock.FakeClock, *bytes.Buffer) {
	t.Helper()
	c := clock.Fake(time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC))
	floor, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := floor.Ledger(c)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	pub := &fakePublisher{}
	var buf bytes.Buffer
	fs := NewFloorService(l, pub, logger.NewWriter("floor-service", &buf), time.UTC)
	n := 0
	fs.newID = func() string { n++; return "ev-" + string(rune('a'+n-1)) }
	return fs, pub, c, &buf
}

func TestFloorService_OrderLifecycleEmitsEvents(t *testing.T) {
	fs, pub, c, _ := newTestService(t)
	ctx := context.Background()

	o, err := fs.AddItem(ctx, 5, domain.AddItemRequest{MenuItemID: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := fs.AddItem(ctx, 5, domain.AddItemRequest{MenuItemID: 8}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := fs.UpdateQuantity(ctx, 5, 1, domain.UpdateQuantityRequest{Delta: 1}); err != nil {
		t.Fatalf("qty: %v", err)
	}
	c.Advance(40 * time.Minute)
	closed, err := fs.CloseOrder(ctx, 5, domain.CloseOrderRequest{PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.ID != o.ID || closed.Total.String() != "84.7" {
		t.Errorf("unexpected closed order %d total %s", closed.ID, closed.Total)
	}

	want := []domain.EventType{
		domain.EventOrderOpened,
		domain.EventOrderUpdated,
		domain.EventOrderUpdated,
		domain.EventOrderClosed,
	}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	last := pub.events[len(pub.events)-1]
	if last.ID != "ev-d" || last.TableID != 5 || last.TableStatus != domain.TableAvailable {
		t.Errorf("unexpected close event %+v", last)
	}
	if !last.OccurredAt.Equal(time.Date(2024, 3, 15, 13, 10, 0, 0, time.UTC)) {
		t.Errorf("unexpected event time %s", last.OccurredAt)
	}

	if len(pub.summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(pub.summaries))
	}
	if s := pub.summaries[0]; s.TotalAmount != "84.70" || s.PaymentMethods[domain.PaymentCard] != "84.70" {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestFloorService_RemovingLastItemEmitsRemoved(t *testing.T) {
	fs, pub, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := fs.AddItem(ctx, 2, domain.AddItemRequest{MenuItemID: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, removed, err := fs.RemoveItem(ctx, 2, 3)
	if err != nil || !removed {
		t.Fatalf("expected the order to be removed, got removed=%v err=%v", removed, err)
	}
	if got := pub.types(); got[len(got)-1] != domain.EventOrderRemoved {
		t.Errorf("expected order.removed last, got %v", got)
	}
	if _, err := fs.CurrentOrder(ctx, 2); !errors.Is(err, ledger.ErrNoOpenOrder) {
		t.Errorf("expected ErrNoOpenOrder, got %v", err)
	}
}

func TestFloorService_RejectionsEmitNothing(t *testing.T) {
	fs, pub, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := fs.CloseOrder(ctx, 1, domain.CloseOrderRequest{PaymentMethod: "cash"}); !errors.Is(err, ledger.ErrNoOpenOrder) {
		t.Errorf("close without order: expected ErrNoOpenOrder, got %v", err)
	}
	if _, err := fs.AddItem(ctx, 1, domain.AddItemRequest{MenuItemID: 99}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unknown item: expected ErrNotFound, got %v", err)
	}
	if _, err := fs.AddItem(ctx, 1, domain.AddItemRequest{MenuItemID: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := len(pub.events)
	if _, err := fs.CloseOrder(ctx, 1, domain.CloseOrderRequest{PaymentMethod: "cheque"}); !errors.Is(err, ledger.ErrInvalidPaymentMethod) {
		t.Errorf("bad method: expected ErrInvalidPaymentMethod, got %v", err)
	}
	if _, err := fs.UpdateQuantity(ctx, 1, 2, domain.UpdateQuantityRequest{Delta: -1}); !errors.Is(err, ledger.ErrInvalidQuantity) {
		t.Errorf("qty to zero: expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := fs.SetTableStatus(ctx, 1, domain.SetTableStatusRequest{Status: "closed"}); !errors.Is(err, ledger.ErrInvalidStatus) {
		t.Errorf("bad table status: expected ErrInvalidStatus, got %v", err)
	}
	if _, err := fs.SetOrderStatus(ctx, 1, domain.SetOrderStatusRequest{Status: "paid!"}); !errors.Is(err, ledger.ErrInvalidStatus) {
		t.Errorf("bad order status: expected ErrInvalidStatus, got %v", err)
	}
	if _, err := fs.AnnotateOrder(ctx, 1, domain.AnnotateOrderRequest{Discount: strPtr("ten")}); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Errorf("bad discount: expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.events) != before {
		t.Errorf("rejected calls published %d events", len(pub.events)-before)
	}
	o, _ := fs.CurrentOrder(ctx, 1)
	if o.Lines[0].Quantity != 1 || !o.IsOpen() {
		t.Errorf("order changed by rejected calls: %+v", o)
	}
}

func TestFloorService_PublishFailureKeepsLedgerChange(t *testing.T) {
	fs, pub, _, buf := newTestService(t)
	pub.err = errors.New("broker down")

	o, err := fs.AddItem(context.Background(), 7, domain.AddItemRequest{MenuItemID: 4})
	if err != nil {
		t.Fatalf("add should succeed despite publish failure: %v", err)
	}
	if cur, err := fs.CurrentOrder(context.Background(), 7); err != nil || cur.ID != o.ID {
		t.Errorf("order not kept: %v", err)
	}
	if !strings.Contains(buf.String(), `"event_publish_failed"`) {
		t.Errorf("expected the failure to be logged, got %s", buf.String())
	}
}

func TestFloorService_ReserveAndStatus(t *testing.T) {
	fs, pub, c, _ := newTestService(t)
	ctx := context.Background()

	res := domain.Reservation{CustomerName: "Ana", Guests: 4, Date: c.Now().Add(2 * time.Hour)}
	tbl, err := fs.SetTableStatus(ctx, 9, domain.SetTableStatusRequest{Status: "reserved", Reservation: &res})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if tbl.Status != domain.TableReserved || tbl.Reservation == nil || tbl.Reservation.CustomerName != "Ana" {
		t.Errorf("unexpected table %+v", tbl)
	}
	tbl, err = fs.SetTableStatus(ctx, 9, domain.SetTableStatusRequest{Status: "occupied"})
	if err != nil {
		t.Fatalf("occupy: %v", err)
	}
	if tbl.Reservation != nil {
		t.Errorf("reservation should be cleared")
	}
	if len(pub.events) != 2 || pub.events[1].TableStatus != domain.TableOccupied {
		t.Errorf("unexpected events %+v", pub.events)
	}
	if _, err := fs.Table(ctx, 42); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFloorService_AnnotateAndSummary(t *testing.T) {
	fs, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := fs.AddItem(ctx, 3, domain.AddItemRequest{MenuItemID: 4}); err != nil {
		t.Fatalf("add: %v", err)
	}
	o, err := fs.AnnotateOrder(ctx, 3, domain.AnnotateOrderRequest{
		Waiter:        strPtr("Carlos"),
		Discount:      strPtr("10.00"),
		ServiceCharge: strPtr("9.29"),
	})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if o.Waiter != "Carlos" || o.Total.String() != "92.9" {
		t.Errorf("unexpected order %+v", o)
	}
	if _, err := fs.CloseOrder(ctx, 3, domain.CloseOrderRequest{PaymentMethod: "pix"}); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, ok := fs.Summary(ctx, fs.Today())
	if !ok {
		t.Fatal("expected sales today")
	}
	if s.TotalDiscount.String() != "10" || s.TotalServiceCharge.String() != "9.29" {
		t.Errorf("unexpected adjustments %s / %s", s.TotalDiscount, s.TotalServiceCharge)
	}
	if _, ok := fs.Summary(ctx, fs.Today().AddDate(0, 0, -1)); ok {
		t.Error("expected no sales yesterday")
	}
}

func TestFloorService_AddMenuItem(t *testing.T) {
	fs, _, _, _ := newTestService(t)
	ctx := context.Background()

	m, err := fs.AddMenuItem(ctx, domain.CreateMenuItemRequest{Name: "Espresso", Price: "7.50", Category: "beverage"})
	if err != nil {
		t.Fatalf("add menu item: %v", err)
	}
	if m.ID != 9 || !m.Available || fs.MenuItemName(9) != "Espresso" {
		t.Errorf("unexpected item %+v", m)
	}
	if _, err := fs.AddMenuItem(ctx, domain.CreateMenuItemRequest{Name: "Bad", Price: "abc", Category: "main"}); !errors.Is(err, ledger.ErrInvalidMenuItem) {
		t.Errorf("expected ErrInvalidMenuItem, got %v", err)
	}
	if _, err := fs.AddMenuItem(ctx, domain.CreateMenuItemRequest{Name: "Bad", Price: "1", Category: "snack"}); !errors.Is(err, ledger.ErrInvalidMenuItem) {
		t.Errorf("expected ErrInvalidMenuItem, got %v", err)
	}
	if len(fs.Menu(ctx)) != 9 {
		t.Errorf("expected 9 menu items")
	}
}

func strPtr(s string) *string { return &s }
