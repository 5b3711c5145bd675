package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a string does not name a known status,
// category or payment method.
var ErrUnknownValue = errors.New("unknown value")

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableMaintenance TableStatus = "maintenance"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableMaintenance:
		return true
	default:
		return false
	}
}

func ParseTableStatus(s string) (TableStatus, error) {
	st := TableStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("table status %q: %w", s, ErrUnknownValue)
	}
	return st, nil
}

func (s TableStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("table status %q: %w", string(s), ErrUnknownValue)
	}
	return []byte(s), nil
}

func (s *TableStatus) UnmarshalText(b []byte) error {
	st, err := ParseTableStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderPaid      OrderStatus = "paid"
	OrderClosed    OrderStatus = "closed"
	OrderCanceled  OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderPaid, OrderClosed, OrderCanceled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether an order in this status still belongs to its table.
// Closed and canceled orders are history.
func (s OrderStatus) IsOpen() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderPaid:
		return true
	case OrderClosed, OrderCanceled:
		return false
	default:
		return false
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("order status %q: %w", s, ErrUnknownValue)
	}
	return st, nil
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("order status %q: %w", string(s), ErrUnknownValue)
	}
	return []byte(s), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	st, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

type Category string

const (
	CategoryStarter  Category = "starter"
	CategoryMain     Category = "main"
	CategoryDessert  Category = "dessert"
	CategoryBeverage Category = "beverage"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStarter, CategoryMain, CategoryDessert, CategoryBeverage:
		return true
	default:
		return false
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("category %q: %w", s, ErrUnknownValue)
	}
	return c, nil
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("category %q: %w", string(c), ErrUnknownValue)
	}
	return []byte(c), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// PaymentMethod is empty on orders that have not been closed yet.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

// PaymentMethods lists the fixed summary buckets in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentPix}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix:
		return true
	default:
		return false
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("payment method %q: %w", s, ErrUnknownValue)
	}
	return m, nil
}

func (m PaymentMethod) MarshalText() ([]byte, error) {
	if m != "" && !m.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", string(m), ErrUnknownValue)
	}
	return []byte(m), nil
}

func (m *PaymentMethod) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = ""
		return nil
	}
	v, err := ParsePaymentMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
