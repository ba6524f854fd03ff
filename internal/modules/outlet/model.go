package outlet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outlet is a single restaurant location and the tenant boundary for every
// order, menu item, and payment in the system.
type Outlet struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address,omitempty"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Currency       string          `json:"currency"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateOutletRequest is the payload for registering an outlet.
type CreateOutletRequest struct {
	Name           string          `json:"name"`
	Address        string          `json:"address,omitempty"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Currency       string          `json:"currency,omitempty"`
}
