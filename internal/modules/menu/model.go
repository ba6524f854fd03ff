package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModifierOption is a single priced add-on within a group.
type ModifierOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ModifierGroup is a named group of options on a menu item. MinSelect and
// MaxSelect describe the intended selection bounds; they are stored and
// surfaced to clients but not enforced at pricing time.
type ModifierGroup struct {
	Name      string           `json:"name"`
	MinSelect int              `json:"min_select"`
	MaxSelect int              `json:"max_select"`
	Options   []ModifierOption `json:"options"`
}

// Option looks up an option by name within the group.
func (g ModifierGroup) Option(name string) (ModifierOption, bool) {
	for _, opt := range g.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return ModifierOption{}, false
}

// MenuItem is a sellable item on an outlet's menu.
type MenuItem struct {
	ID             uuid.UUID       `json:"id"`
	OutletID       uuid.UUID       `json:"outlet_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Group looks up a modifier group by name.
func (m *MenuItem) Group(name string) (ModifierGroup, bool) {
	for _, g := range m.ModifierGroups {
		if g.Name == name {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// UpsertItemRequest holds the data for creating or updating a menu item.
type UpsertItemRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	ModifierGroups []ModifierGroup `json:"modifier_groups,omitempty"`
}
