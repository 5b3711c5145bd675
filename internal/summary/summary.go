// Package summary derives the daily sales report from order history.
//
// Summarize holds no state: every call re-reads the full order list, so the
// report can never drift from the ledger it was computed from.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

const DateLayout = "2006-01-02"

type HourCount struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

type ItemSales struct {
	MenuItemID int             `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type DailySummary struct {
	Date        string          `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderCount  int             `json:"order_count"`
	// Always holds cash, card and pix, zero when unused.
	PaymentMethods map[domain.PaymentMethod]decimal.Decimal `json:"payment_methods"`
	// Unattributed is closed revenue with no recognised payment method. It
	// is the reconciliation gap between TotalAmount and the method buckets.
	Unattributed       decimal.Decimal `json:"unattributed"`
	AverageTicket      decimal.Decimal `json:"average_ticket"`
	PeakHours          []HourCount     `json:"peak_hours"`
	TopSellingItems    []ItemSales     `json:"top_selling_items"`
	CanceledOrders     int             `json:"canceled_orders"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	TotalServiceCharge decimal.Decimal `json:"total_service_charge"`
	Orders             []domain.Order  `json:"orders"`
}

// SameDay compares calendar days in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Summarize reports the closed orders whose closing time falls on date's
// calendar day, in date's location. ok is false when nothing was closed that
// day: there is no report, not a zero-filled one.
func Summarize(orders []domain.Order, date time.Time) (DailySummary, bool) {
	loc := date.Location()

	var closed []domain.Order
	canceled := 0
	for _, o := range orders {
		if o.ClosedAt == nil || !SameDay(*o.ClosedAt, date, loc) {
			continue
		}
		switch o.Status {
		case domain.OrderClosed:
			closed = append(closed, o.Clone())
		case domain.OrderCanceled:
			canceled++
		case domain.OrderPending, domain.OrderPreparing, domain.OrderReady, domain.OrderDelivered, domain.OrderPaid:
		}
	}
	if len(closed) == 0 {
		return DailySummary{}, false
	}

	s := DailySummary{
		Date:               date.In(loc).Format(DateLayout),
		TotalAmount:        decimal.Zero,
		OrderCount:         len(closed),
		PaymentMethods:     make(map[domain.PaymentMethod]decimal.Decimal, len(domain.PaymentMethods)),
		Unattributed:       decimal.Zero,
		CanceledOrders:     canceled,
		TotalDiscount:      decimal.Zero,
		TotalServiceCharge: decimal.Zero,
		Orders:             closed,
	}
	for _, m := range domain.PaymentMethods {
		s.PaymentMethods[m] = decimal.Zero
	}

	hours := map[int]int{}
	items := map[int]*ItemSales{}
	for _, o := range closed {
		s.TotalAmount = s.TotalAmount.Add(o.Total)
		if o.PaymentMethod.Valid() {
			s.PaymentMethods[o.PaymentMethod] = s.PaymentMethods[o.PaymentMethod].Add(o.Total)
		} else {
			s.Unattributed = s.Unattributed.Add(o.Total)
		}
		s.TotalDiscount = s.TotalDiscount.Add(o.Discount)
		s.TotalServiceCharge = s.TotalServiceCharge.Add(o.ServiceCharge)
		hours[o.ClosedAt.In(loc).Hour()]++

		for _, l := range o.Lines {
			it, ok := items[l.MenuItemID]
			if !ok {
				it = &ItemSales{MenuItemID: l.MenuItemID, Revenue: decimal.Zero}
				items[l.MenuItemID] = it
			}
			it.Quantity += l.Quantity
			it.Revenue = it.Revenue.Add(l.Subtotal())
		}
	}
	s.AverageTicket = s.TotalAmount.Div(decimal.NewFromInt(int64(s.OrderCount)))

	s.PeakHours = make([]HourCount, 0, len(hours))
	for h, n := range hours {
		s.PeakHours = append(s.PeakHours, HourCount{Hour: h, Orders: n})
	}
	sort.Slice(s.PeakHours, func(i, j int) bool {
		a, b := s.PeakHours[i], s.PeakHours[j]
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		return a.Hour < b.Hour
	})

	s.TopSellingItems = make([]ItemSales, 0, len(items))
	for _, it := range items {
		s.TopSellingItems = append(s.TopSellingItems, *it)
	}
	sort.Slice(s.TopSellingItems, func(i, j int) bool {
		a, b := s.TopSellingItems[i], s.TopSellingItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.MenuItemID < b.MenuItemID
	})
	return s, true
}

// PeakHour is the busiest closing hour.
func (s DailySummary) PeakHour() (HourCount, bool) {
	if len(s.PeakHours) == 0 {
		return HourCount{}, false
	}
	return s.PeakHours[0], true
}

// Share is the percentage of TotalAmount paid with m.
func (s DailySummary) Share(m domain.PaymentMethod) decimal.Decimal {
	if s.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return s.PaymentMethods[m].Div(s.TotalAmount).Mul(decimal.NewFromInt(100))
}
