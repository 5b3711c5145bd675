package ledger

import (
	"fmt"
	"strings"

	"restaurant-floor/internal/domain"
)

func validateMenuItem(m domain.MenuItem) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if !validAmount(m.Price) {
		return fmt.Errorf("%w: price %s must be non-negative whole cents", ErrInvalidMenuItem, m.Price)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidMenuItem, m.Category)
	}
	if m.PrepMinutes != nil && *m.PrepMinutes < 0 {
		return fmt.Errorf("%w: prep time %d", ErrInvalidMenuItem, *m.PrepMinutes)
	}
	return nil
}

// Menu lists the catalog in the order items were added.
func (l *Ledger) Menu() []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(l.menuIDs))
	for _, id := range l.menuIDs {
		out = append(out, l.menu[id].Clone())
	}
	return out
}

func (l *Ledger) MenuItem(id int) (domain.MenuItem, error) {
	m, ok := l.menu[id]
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("menu item %d: %w", id, ErrNotFound)
	}
	return m.Clone(), nil
}

// MenuItemName returns the item's name, or "" for unknown ids.
func (l *Ledger) MenuItemName(id int) string {
	if m, ok := l.menu[id]; ok {
		return m.Name
	}
	return ""
}

// AddMenuItem appends an item to the catalog and assigns it the next id.
// The catalog is append-only; existing order lines keep their own price.
func (l *Ledger) AddMenuItem(m domain.MenuItem) (domain.MenuItem, error) {
	if err := validateMenuItem(m); err != nil {
		return domain.MenuItem{}, err
	}
	next := 1
	for _, id := range l.menuIDs {
		if id >= next {
			next = id + 1
		}
	}
	m.ID = next
	mc := m.Clone()
	l.menu[m.ID] = &mc
	l.menuIDs = append(l.menuIDs, m.ID)
	return mc.Clone(), nil
}
