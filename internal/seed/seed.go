// Package seed loads the starting roster and catalog.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"restaurant-floor/internal/common/clock"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/ledger"
)

//go:embed floor.yaml
var defaultFloor []byte

type Floor struct {
	Tables  []domain.Table    `yaml:"tables"`
	Menu    []domain.MenuItem `yaml:"menu"`
	Waiters []string          `yaml:"waiters"`
}

// Default returns the embedded floor.
func Default() (Floor, error) { return Parse(defaultFloor) }

// Load reads a floor file. An empty path means the embedded default.
func Load(path string) (Floor, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Floor{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (Floor, error) {
	var f Floor
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Floor{}, fmt.Errorf("parse seed: %w", err)
	}
	if len(f.Tables) == 0 {
		return Floor{}, fmt.Errorf("parse seed: no tables")
	}
	return f, nil
}

// Ledger builds a fresh ledger over this floor.
func (f Floor) Ledger(c clock.Clock) (*ledger.Ledger, error) {
	return ledger.New(c, f.Tables, f.Menu)
}

// MenuName resolves an item name from the seed catalog, "" when unknown.
func (f Floor) MenuName(menuItemID int) string {
	for _, m := range f.Menu {
		if m.ID == menuItemID {
			return m.Name
		}
	}
	return ""
}
