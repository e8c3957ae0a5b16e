package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation sources written by the lifecycle operations
const (
	SourceInitial      = "Initial"
	SourceManualUpdate = "Manual Update"
	SourceManual       = "Manual"
)

// Valuation is a dated value sample of an asset.
// It is never modified once appended to an asset's history.
type Valuation struct {
	ID            string
	AssetID       string
	Value         decimal.Decimal
	ValuationDate time.Time
	Currency      string
	Source        string
}

// Validate ensures the valuation adheres to domain rules
func (v *Valuation) Validate() error {
	if v.Value.IsNegative() {
		return NewValidationError("value", "valuation value must not be negative")
	}
	if v.Currency != "" {
		return validateCurrency(v.Currency)
	}
	return nil
}
