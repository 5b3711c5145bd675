package ledger

import "restaurant-floor/internal/domain"

// Station is a point-of-sale cursor over a Ledger: commands act on whichever
// table was last selected. Without a selection they fail with
// ErrNoActiveTable.
type Station struct {
	ledger   *Ledger
	selected int
	active   bool
}

func NewStation(l *Ledger) *Station { return &Station{ledger: l} }

func (s *Station) Ledger() *Ledger { return s.ledger }

// Select makes tableID the target of later commands. An unknown id leaves
// the previous selection in place.
func (s *Station) Select(tableID int) (domain.Table, error) {
	t, err := s.ledger.SelectTable(tableID)
	if err != nil {
		return domain.Table{}, err
	}
	s.selected, s.active = tableID, true
	return t, nil
}

func (s *Station) Deselect() { s.selected, s.active = 0, false }

func (s *Station) tableID() (int, error) {
	if !s.active {
		return 0, ErrNoActiveTable
	}
	return s.selected, nil
}

// Selected returns the currently selected table.
func (s *Station) Selected() (domain.Table, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Table{}, err
	}
	return s.ledger.SelectTable(id)
}

func (s *Station) SetStatus(status domain.TableStatus) (domain.Table, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Table{}, err
	}
	return s.ledger.SetTableStatus(id, status)
}

func (s *Station) AddItem(menuItemID int) (domain.Order, bool, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, false, err
	}
	return s.ledger.AddItem(id, menuItemID)
}

func (s *Station) UpdateQuantity(menuItemID, delta int) (domain.Order, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, err
	}
	return s.ledger.UpdateQuantity(id, menuItemID, delta)
}

func (s *Station) RemoveItem(menuItemID int) (domain.Order, bool, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, false, err
	}
	return s.ledger.RemoveItem(id, menuItemID)
}

func (s *Station) CloseOrder(method domain.PaymentMethod) (domain.Order, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, err
	}
	return s.ledger.CloseOrder(id, method)
}

func (s *Station) CancelOrder() (domain.Order, error) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, err
	}
	return s.ledger.CancelOrder(id)
}

// CurrentOrder reports the selected table's open order. ok is false when
// there is no selection or no open order.
func (s *Station) CurrentOrder() (domain.Order, bool) {
	id, err := s.tableID()
	if err != nil {
		return domain.Order{}, false
	}
	return s.ledger.CurrentOrder(id)
}
