package ledger

import (
	"errors"
	"testing"

	"restaurant-floor/internal/domain"
)

func TestStation_RequiresSelection(t *testing.T) {
	l, _ := newTestLedger(t)
	s := NewStation(l)

	if _, _, err := s.AddItem(1); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("AddItem: expected ErrNoActiveTable, got %v", err)
	}
	if _, err := s.UpdateQuantity(1, 1); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("UpdateQuantity: expected ErrNoActiveTable, got %v", err)
	}
	if _, _, err := s.RemoveItem(1); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("RemoveItem: expected ErrNoActiveTable, got %v", err)
	}
	if _, err := s.CloseOrder(domain.PaymentCash); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("CloseOrder: expected ErrNoActiveTable, got %v", err)
	}
	if _, err := s.SetStatus(domain.TableReserved); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("SetStatus: expected ErrNoActiveTable, got %v", err)
	}
	if _, ok := s.CurrentOrder(); ok {
		t.Error("expected no current order without selection")
	}
	if len(l.Orders()) != 0 {
		t.Error("commands without selection must not touch the ledger")
	}
}

func TestStation_SelectUnknownKeepsSelection(t *testing.T) {
	l, _ := newTestLedger(t)
	s := NewStation(l)
	s.Select(2)

	if _, err := s.Select(77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	tb, err := s.Selected()
	if err != nil || tb.ID != 2 {
		t.Errorf("expected table 2 still selected, got %+v, %v", tb, err)
	}
}

func TestStation_OrderFlow(t *testing.T) {
	l, _ := newTestLedger(t)
	s := NewStation(l)
	if _, err := s.Select(3); err != nil {
		t.Fatalf("Select: %v", err)
	}

	s.AddItem(1)
	s.AddItem(2)
	if _, err := s.UpdateQuantity(2, 2); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	o, ok := s.CurrentOrder()
	if !ok {
		t.Fatal("expected current order")
	}
	// 32.90 + 3 × 28.90
	if !o.Total.Equal(dec("119.60")) {
		t.Errorf("expected 119.60, got %s", o.Total)
	}

	if _, err := s.CloseOrder(domain.PaymentCard); err != nil {
		t.Fatalf("CloseOrder: %v", err)
	}
	tb, _ := s.Selected()
	if tb.Status != domain.TableAvailable {
		t.Errorf("expected available, got %q", tb.Status)
	}

	s.Deselect()
	if _, err := s.Selected(); !errors.Is(err, ErrNoActiveTable) {
		t.Errorf("expected ErrNoActiveTable after deselect, got %v", err)
	}
}
