package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Reservation struct {
	CustomerName string    `json:"customer_name" yaml:"customer_name"`
	Phone        string    `json:"phone" yaml:"phone"`
	Date         time.Time `json:"date" yaml:"date"`
	Guests       int       `json:"guests" yaml:"guests"`
}

type Table struct {
	ID          int          `json:"id" yaml:"id"`
	Number      int          `json:"number" yaml:"number"`
	Seats       int          `json:"seats" yaml:"seats"`
	Status      TableStatus  `json:"status" yaml:"status"`
	Reservation *Reservation `json:"reservation,omitempty" yaml:"reservation,omitempty"`
}

func (t Table) Clone() Table {
	if t.Reservation != nil {
		r := *t.Reservation
		t.Reservation = &r
	}
	return t
}

type MenuItem struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    Category        `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
	PrepMinutes *int            `json:"prep_minutes,omitempty" yaml:"prep_minutes,omitempty"`
	Allergens   []string        `json:"allergens,omitempty" yaml:"allergens,omitempty"`
	Available   bool            `json:"available" yaml:"available"`
}

func (m MenuItem) Clone() MenuItem {
	if m.PrepMinutes != nil {
		p := *m.PrepMinutes
		m.PrepMinutes = &p
	}
	if m.Allergens != nil {
		m.Allergens = append([]string(nil), m.Allergens...)
	}
	return m
}

// OrderLine carries the price the item had when the line was created.
type OrderLine struct {
	MenuItemID int             `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID            int             `json:"id"`
	TableID       int             `json:"table_id"`
	Lines         []OrderLine     `json:"lines"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Discount      decimal.Decimal `json:"discount"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Waiter        string          `json:"waiter,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

func (o *Order) IsOpen() bool { return o.Status.IsOpen() }

// LineIndex returns the index of the line for menuItemID, or -1.
func (o *Order) LineIndex(menuItemID int) int {
	for i := range o.Lines {
		if o.Lines[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// LineSum is Σ price × quantity over every line.
func (o *Order) LineSum() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (o Order) Clone() Order {
	o.Lines = append([]OrderLine(nil), o.Lines...)
	if o.ClosedAt != nil {
		t := *o.ClosedAt
		o.ClosedAt = &t
	}
	return o
}
