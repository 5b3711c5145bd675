package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

func TestDefault(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(f.Tables) != 12 {
		t.Errorf("expected 12 tables, got %d", len(f.Tables))
	}
	if len(f.Menu) != 8 {
		t.Fatalf("expected 8 menu items, got %d", len(f.Menu))
	}
	if !f.Menu[0].Price.Equal(decimal.RequireFromString("32.90")) {
		t.Errorf("unexpected price %s", f.Menu[0].Price)
	}
	if f.Menu[7].Category != domain.CategoryBeverage {
		t.Errorf("unexpected category %q", f.Menu[7].Category)
	}

	l, err := f.Ledger(nil)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	for _, tb := range l.Tables() {
		if tb.Status != domain.TableAvailable {
			t.Errorf("table %d: expected available, got %q", tb.ID, tb.Status)
		}
	}
}

func TestParse_RejectsUnknownCategory(t *testing.T) {
	doc := []byte(`
tables:
  - {id: 1, number: 1, seats: 2}
menu:
  - {id: 1, name: Suco, price: "9.90", category: bebida}
`)
	if _, err := Parse(doc); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.yaml")
	doc := []byte(`
tables:
  - {id: 1, number: 10, seats: 8, status: reserved}
menu:
  - {id: 1, name: Espresso, price: "7.50", category: beverage, available: true}
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Tables[0].Status != domain.TableReserved || f.Tables[0].Seats != 8 {
		t.Errorf("unexpected table %+v", f.Tables[0])
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMenuName(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := f.MenuName(3); got != "Salmão Grelhado" {
		t.Errorf("unexpected name %q", got)
	}
	if got := f.MenuName(99); got != "" {
		t.Errorf("expected empty name for unknown item, got %q", got)
	}
}
