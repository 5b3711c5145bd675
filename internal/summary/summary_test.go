package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

var day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func closedOrder(id int, total string, method domain.PaymentMethod, at time.Time, lines ...domain.OrderLine) domain.Order {
	o := domain.Order{
		ID:            id,
		TableID:       id,
		Status:        domain.OrderClosed,
		CreatedAt:     at.Add(-time.Hour),
		ClosedAt:      &at,
		PaymentMethod: method,
		Total:         dec(total),
		Lines:         lines,
	}
	if len(lines) == 0 {
		o.Lines = []domain.OrderLine{{MenuItemID: 1, Quantity: 1, Price: dec(total)}}
	}
	return o
}

func TestSummarize_TwoOrdersExample(t *testing.T) {
	orders := []domain.Order{
		closedOrder(1, "50.00", domain.PaymentCash, day.Add(12*time.Hour)),
		closedOrder(2, "30.00", domain.PaymentPix, day.Add(13*time.Hour)),
	}
	s, ok := Summarize(orders, day)
	if !ok {
		t.Fatal("expected a report")
	}
	if !s.TotalAmount.Equal(dec("80.00")) {
		t.Errorf("total: expected 80.00, got %s", s.TotalAmount)
	}
	if s.OrderCount != 2 {
		t.Errorf("count: expected 2, got %d", s.OrderCount)
	}
	want := map[domain.PaymentMethod]string{domain.PaymentCash: "50", domain.PaymentPix: "30", domain.PaymentCard: "0"}
	for m, v := range want {
		got, ok := s.PaymentMethods[m]
		if !ok {
			t.Errorf("missing bucket %q", m)
			continue
		}
		if !got.Equal(dec(v)) {
			t.Errorf("%s: expected %s, got %s", m, v, got)
		}
	}
	if !s.AverageTicket.Equal(dec("40.00")) {
		t.Errorf("average: expected 40.00, got %s", s.AverageTicket)
	}
	if s.Date != "2024-03-15" {
		t.Errorf("date: expected 2024-03-15, got %s", s.Date)
	}
	if len(s.Orders) != 2 {
		t.Errorf("expected 2 orders listed, got %d", len(s.Orders))
	}
}

func TestSummarize_NoSales(t *testing.T) {
	if _, ok := Summarize(nil, day); ok {
		t.Error("expected no report for empty history")
	}

	yesterday := day.Add(-2 * time.Hour)
	open := domain.Order{ID: 3, Status: domain.OrderPending, Total: dec("10")}
	canceledAt := day.Add(10 * time.Hour)
	canceled := domain.Order{ID: 4, Status: domain.OrderCanceled, ClosedAt: &canceledAt, Total: dec("10")}
	orders := []domain.Order{
		closedOrder(1, "20.00", domain.PaymentCash, yesterday),
		open,
		canceled,
	}
	if _, ok := Summarize(orders, day); ok {
		t.Error("expected no report when nothing was closed on the day")
	}
}

func TestSummarize_LocalCalendarDay(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	localDay := time.Date(2024, 3, 15, 0, 0, 0, 0, saoPaulo)

	// 23:30 local on the 15th is already the 16th in UTC.
	late := time.Date(2024, 3, 16, 2, 30, 0, 0, time.UTC)
	// 01:00 UTC on the 15th is still the 14th locally.
	early := time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		closedOrder(1, "10.00", domain.PaymentCash, late),
		closedOrder(2, "99.00", domain.PaymentCash, early),
	}
	s, ok := Summarize(orders, localDay)
	if !ok {
		t.Fatal("expected a report")
	}
	if s.OrderCount != 1 || !s.TotalAmount.Equal(dec("10")) {
		t.Errorf("expected only the late order, got count %d total %s", s.OrderCount, s.TotalAmount)
	}
	if h, _ := s.PeakHour(); h.Hour != 23 {
		t.Errorf("expected local hour 23, got %d", h.Hour)
	}
}

func TestSummarize_PeakHoursSortedByCount(t *testing.T) {
	orders := []domain.Order{
		closedOrder(1, "10", domain.PaymentCash, day.Add(12*time.Hour)),
		closedOrder(2, "10", domain.PaymentCash, day.Add(19*time.Hour+10*time.Minute)),
		closedOrder(3, "10", domain.PaymentCash, day.Add(19*time.Hour+40*time.Minute)),
		closedOrder(4, "10", domain.PaymentCard, day.Add(20*time.Hour)),
		closedOrder(5, "10", domain.PaymentCard, day.Add(12*time.Hour+5*time.Minute)),
		closedOrder(6, "10", domain.PaymentCard, day.Add(19*time.Hour+55*time.Minute)),
	}
	s, _ := Summarize(orders, day)
	want := []HourCount{{19, 3}, {12, 2}, {20, 1}}
	if len(s.PeakHours) != len(want) {
		t.Fatalf("expected %d hours, got %+v", len(want), s.PeakHours)
	}
	for i := range want {
		if s.PeakHours[i] != want[i] {
			t.Errorf("peak[%d]: expected %+v, got %+v", i, want[i], s.PeakHours[i])
		}
	}
}

func TestSummarize_TopSellingItems(t *testing.T) {
	at := day.Add(20 * time.Hour)
	orders := []domain.Order{
		closedOrder(1, "155.70", domain.PaymentCash, at,
			domain.OrderLine{MenuItemID: 1, Quantity: 2, Price: dec("32.90")},
			domain.OrderLine{MenuItemID: 3, Quantity: 1, Price: dec("89.90")},
		),
		closedOrder(2, "98.70", domain.PaymentPix, at,
			domain.OrderLine{MenuItemID: 1, Quantity: 3, Price: dec("32.90")},
		),
		closedOrder(3, "89.90", domain.PaymentCard, at,
			domain.OrderLine{MenuItemID: 3, Quantity: 1, Price: dec("89.90")},
		),
	}
	s, _ := Summarize(orders, day)
	if len(s.TopSellingItems) != 2 {
		t.Fatalf("expected 2 items, got %+v", s.TopSellingItems)
	}
	top := s.TopSellingItems[0]
	if top.MenuItemID != 1 || top.Quantity != 5 || !top.Revenue.Equal(dec("164.50")) {
		t.Errorf("unexpected top item %+v", top)
	}
	second := s.TopSellingItems[1]
	if second.MenuItemID != 3 || second.Quantity != 2 || !second.Revenue.Equal(dec("179.80")) {
		t.Errorf("unexpected second item %+v", second)
	}
}

func TestSummarize_CanceledDiscountsAndGap(t *testing.T) {
	at := day.Add(21 * time.Hour)
	withExtras := closedOrder(1, "100.00", domain.PaymentCard, at)
	withExtras.Discount = dec("10.00")
	withExtras.ServiceCharge = dec("10.00")
	noMethod := closedOrder(2, "25.00", "", at)
	canceled := domain.Order{ID: 3, Status: domain.OrderCanceled, ClosedAt: &at, Total: dec("40")}

	s, ok := Summarize([]domain.Order{withExtras, noMethod, canceled}, day)
	if !ok {
		t.Fatal("expected a report")
	}
	if s.CanceledOrders != 1 {
		t.Errorf("expected 1 canceled, got %d", s.CanceledOrders)
	}
	if !s.TotalDiscount.Equal(dec("10")) || !s.TotalServiceCharge.Equal(dec("10")) {
		t.Errorf("unexpected adjustments: discount %s service %s", s.TotalDiscount, s.TotalServiceCharge)
	}
	if !s.TotalAmount.Equal(dec("125")) {
		t.Errorf("expected total 125, got %s", s.TotalAmount)
	}
	if !s.Unattributed.Equal(dec("25")) {
		t.Errorf("expected 25 unattributed, got %s", s.Unattributed)
	}
	bucketSum := decimal.Zero
	for _, v := range s.PaymentMethods {
		bucketSum = bucketSum.Add(v)
	}
	if !bucketSum.Add(s.Unattributed).Equal(s.TotalAmount) {
		t.Errorf("buckets %s + gap %s do not reconcile with total %s", bucketSum, s.Unattributed, s.TotalAmount)
	}
}

func TestSummarize_DoesNotAliasInput(t *testing.T) {
	orders := []domain.Order{closedOrder(1, "10", domain.PaymentCash, day.Add(time.Hour))}
	s, _ := Summarize(orders, day)
	s.Orders[0].Lines[0].Quantity = 42
	if orders[0].Lines[0].Quantity != 1 {
		t.Error("summary shares line storage with the input")
	}
}

func TestShare(t *testing.T) {
	orders := []domain.Order{
		closedOrder(1, "75.00", domain.PaymentCash, day.Add(time.Hour)),
		closedOrder(2, "25.00", domain.PaymentCard, day.Add(time.Hour)),
	}
	s, _ := Summarize(orders, day)
	if got := s.Share(domain.PaymentCash); !got.Equal(dec("75")) {
		t.Errorf("expected 75%%, got %s", got)
	}
	if got := s.Share(domain.PaymentPix); !got.IsZero() {
		t.Errorf("expected 0%%, got %s", got)
	}
}

func TestNewReport(t *testing.T) {
	orders := []domain.Order{
		closedOrder(1, "50.00", domain.PaymentCash, day.Add(12*time.Hour)),
		closedOrder(2, "30.00", domain.PaymentPix, day.Add(13*time.Hour)),
	}
	s, _ := Summarize(orders, day)
	r := NewReport(s, func(id int) string { return "item-" + string(rune('0'+id)) })

	if r.TotalAmount != "80.00" || r.AverageTicket != "40.00" {
		t.Errorf("unexpected amounts %s / %s", r.TotalAmount, r.AverageTicket)
	}
	if r.PaymentMethods[domain.PaymentCard] != "0.00" || r.PaymentShares[domain.PaymentCash] != "62.5" {
		t.Errorf("unexpected payment breakdown %v %v", r.PaymentMethods, r.PaymentShares)
	}
	if len(r.TopSellingItems) != 1 || r.TopSellingItems[0].Name != "item-1" || r.TopSellingItems[0].Quantity != 2 {
		t.Errorf("unexpected items %+v", r.TopSellingItems)
	}
	if len(r.Orders) != 2 || r.Orders[0].Total != "50.00" {
		t.Errorf("unexpected orders %+v", r.Orders)
	}
}
