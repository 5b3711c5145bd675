package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Requests

type SetTableStatusRequest struct {
	Status      string       `json:"status"`
	Reservation *Reservation `json:"reservation,omitempty"`
}

type AddItemRequest struct {
	MenuItemID int `json:"menu_item_id"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta"`
}

type CloseOrderRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status"`
}

// AnnotateOrderRequest leaves a field untouched when it is nil.
type AnnotateOrderRequest struct {
	Waiter        *string `json:"waiter,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Discount      *string `json:"discount,omitempty"`
	ServiceCharge *string `json:"service_charge,omitempty"`
}

type CreateMenuItemRequest struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	PrepMinutes *int     `json:"prep_minutes,omitempty"`
	Allergens   []string `json:"allergens,omitempty"`
	Available   *bool    `json:"available,omitempty"`
}

// Responses. Money goes out as fixed two-place strings.

type OrderLineResponse struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	Subtotal   string `json:"subtotal"`
}

type OrderResponse struct {
	ID            int                 `json:"id"`
	TableID       int                 `json:"table_id"`
	Status        OrderStatus         `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
	PaymentMethod PaymentMethod       `json:"payment_method,omitempty"`
	Total         string              `json:"total"`
	Discount      string              `json:"discount"`
	ServiceCharge string              `json:"service_charge"`
	Waiter        string              `json:"waiter,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Lines         []OrderLineResponse `json:"lines"`
}

// NewOrderResponse renders o; names resolves menu item names and may be nil.
func NewOrderResponse(o Order, names func(menuItemID int) string) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		ClosedAt:      o.ClosedAt,
		PaymentMethod: o.PaymentMethod,
		Total:         Money(o.Total),
		Discount:      Money(o.Discount),
		ServiceCharge: Money(o.ServiceCharge),
		Waiter:        o.Waiter,
		Notes:         o.Notes,
		Lines:         make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		line := OrderLineResponse{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      Money(l.Price),
			Subtotal:   Money(l.Subtotal()),
		}
		if names != nil {
			line.Name = names(l.MenuItemID)
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}

type MenuItemResponse struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	PrepMinutes *int     `json:"prep_minutes,omitempty"`
	Allergens   []string `json:"allergens,omitempty"`
	Available   bool     `json:"available"`
}

func NewMenuItemResponse(m MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Price:       Money(m.Price),
		Category:    m.Category,
		Description: m.Description,
		PrepMinutes: m.PrepMinutes,
		Allergens:   m.Allergens,
		Available:   m.Available,
	}
}

// Money formats an amount for presentation.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }
