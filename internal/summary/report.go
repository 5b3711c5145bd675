package summary

import "restaurant-floor/internal/domain"

// Report is the presentation form of a DailySummary: amounts are rounded to
// two places and items carry their names.
type Report struct {
	Date               string                          `json:"date"`
	TotalAmount        string                          `json:"total_amount"`
	OrderCount         int                             `json:"order_count"`
	PaymentMethods     map[domain.PaymentMethod]string `json:"payment_methods"`
	PaymentShares      map[domain.PaymentMethod]string `json:"payment_shares"`
	Unattributed       string                          `json:"unattributed"`
	AverageTicket      string                          `json:"average_ticket"`
	PeakHours          []HourCount                     `json:"peak_hours"`
	TopSellingItems    []ReportItem                    `json:"top_selling_items"`
	CanceledOrders     int                             `json:"canceled_orders"`
	TotalDiscount      string                          `json:"total_discount"`
	TotalServiceCharge string                          `json:"total_service_charge"`
	Orders             []domain.OrderResponse          `json:"orders"`
}

type ReportItem struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	Revenue    string `json:"revenue"`
}

// NewReport renders s. names may be nil.
func NewReport(s DailySummary, names func(menuItemID int) string) Report {
	r := Report{
		Date:               s.Date,
		TotalAmount:        domain.Money(s.TotalAmount),
		OrderCount:         s.OrderCount,
		PaymentMethods:     make(map[domain.PaymentMethod]string, len(domain.PaymentMethods)),
		PaymentShares:      make(map[domain.PaymentMethod]string, len(domain.PaymentMethods)),
		Unattributed:       domain.Money(s.Unattributed),
		AverageTicket:      domain.Money(s.AverageTicket),
		PeakHours:          s.PeakHours,
		TopSellingItems:    make([]ReportItem, 0, len(s.TopSellingItems)),
		CanceledOrders:     s.CanceledOrders,
		TotalDiscount:      domain.Money(s.TotalDiscount),
		TotalServiceCharge: domain.Money(s.TotalServiceCharge),
		Orders:             make([]domain.OrderResponse, 0, len(s.Orders)),
	}
	for _, m := range domain.PaymentMethods {
		r.PaymentMethods[m] = domain.Money(s.PaymentMethods[m])
		r.PaymentShares[m] = s.Share(m).StringFixed(1)
	}
	for _, it := range s.TopSellingItems {
		ri := ReportItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Revenue: domain.Money(it.Revenue)}
		if names != nil {
			ri.Name = names(it.MenuItemID)
		}
		r.TopSellingItems = append(r.TopSellingItems, ri)
	}
	for _, o := range s.Orders {
		r.Orders = append(r.Orders, domain.NewOrderResponse(o, names))
	}
	return r
}
