package domain

import (
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// AssetType represents what kind of holding an asset is
type AssetType string

const (
	AssetTypeRealEstate    AssetType = "REAL_ESTATE"
	AssetTypeBankAccount   AssetType = "BANK_ACCOUNT"
	AssetTypeStock         AssetType = "STOCK"
	AssetTypeBond          AssetType = "BOND"
	AssetTypeMutualFund    AssetType = "MUTUAL_FUND"
	AssetTypeETF           AssetType = "ETF"
	AssetTypeCrypto        AssetType = "CRYPTO"
	AssetTypePreciousMetal AssetType = "PRECIOUS_METAL"
	AssetTypeVehicle       AssetType = "VEHICLE"
	AssetTypeArt           AssetType = "ART"
	AssetTypeInsurance     AssetType = "INSURANCE"
	AssetTypeRetirement    AssetType = "RETIREMENT"
	AssetTypeLoan          AssetType = "LOAN"
	AssetTypeOther         AssetType = "OTHER"
)

// AllAssetTypes lists every AssetType in declaration order
var AllAssetTypes = []AssetType{
	AssetTypeRealEstate,
	AssetTypeBankAccount,
	AssetTypeStock,
	AssetTypeBond,
	AssetTypeMutualFund,
	AssetTypeETF,
	AssetTypeCrypto,
	AssetTypePreciousMetal,
	AssetTypeVehicle,
	AssetTypeArt,
	AssetTypeInsurance,
	AssetTypeRetirement,
	AssetTypeLoan,
	AssetTypeOther,
}

// Valid reports whether t is one of the declared asset types
func (t AssetType) Valid() bool {
	for _, known := range AllAssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseAssetType converts a symbolic name into an AssetType
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(s)
	if !t.Valid() {
		return "", NewValidationError("type", fmt.Sprintf("invalid asset type %q", s))
	}
	return t, nil
}

// AssetCategory groups asset types for aggregation purposes
type AssetCategory string

const (
	AssetCategoryLiquid     AssetCategory = "LIQUID"
	AssetCategoryInvestment AssetCategory = "INVESTMENT"
	AssetCategoryTangible   AssetCategory = "TANGIBLE"
	AssetCategoryRetirement AssetCategory = "RETIREMENT"
	AssetCategoryInsurance  AssetCategory = "INSURANCE"
	AssetCategoryLiability  AssetCategory = "LIABILITY"
	AssetCategoryOther      AssetCategory = "OTHER"
)

// AllAssetCategories lists every AssetCategory in declaration order
var AllAssetCategories = []AssetCategory{
	AssetCategoryLiquid,
	AssetCategoryInvestment,
	AssetCategoryTangible,
	AssetCategoryRetirement,
	AssetCategoryInsurance,
	AssetCategoryLiability,
	AssetCategoryOther,
}

// BalanceSide tells on which side of the balance sheet a category sits
type BalanceSide int

const (
	SideUnknown BalanceSide = iota
	SideAsset
	SideLiability
)

// Side is the single place that decides how a category contributes to net worth.
// Every aggregation groups through it, so a new category must be added here.
func (c AssetCategory) Side() BalanceSide {
	switch c {
	case AssetCategoryLiquid,
		AssetCategoryInvestment,
		AssetCategoryTangible,
		AssetCategoryRetirement,
		AssetCategoryInsurance,
		AssetCategoryOther:
		return SideAsset
	case AssetCategoryLiability:
		return SideLiability
	default:
		return SideUnknown
	}
}

// IsLiability reports whether values in this category are subtracted from net worth
func (c AssetCategory) IsLiability() bool {
	return c.Side() == SideLiability
}

// Valid reports whether c is one of the declared categories
func (c AssetCategory) Valid() bool {
	return c.Side() != SideUnknown
}

// ParseAssetCategory converts a symbolic name into an AssetCategory
func ParseAssetCategory(s string) (AssetCategory, error) {
	c := AssetCategory(s)
	if !c.Valid() {
		return "", NewValidationError("category", fmt.Sprintf("invalid asset category %q", s))
	}
	return c, nil
}

// Asset represents a tracked holding or liability of an owner.
// ValuationHistory is kept in append order, which is not necessarily date order.
type Asset struct {
	ID               string
	OwnerID          string
	Name             string
	Description      string
	Type             AssetType
	Category         AssetCategory
	Currency         string
	CurrentValue     decimal.NullDecimal
	AcquisitionValue decimal.NullDecimal
	AcquisitionDate  *time.Time
	LastUpdateDate   *time.Time
	Attributes       map[string]string
	ValuationHistory []Valuation
	Version          int64 // optimistic concurrency token, 0 until first save
}

// Validate ensures the asset adheres to domain rules
func (a *Asset) Validate() error {
	if a.Name == "" {
		return NewValidationError("name", "asset name cannot be empty")
	}
	if !a.Type.Valid() {
		return NewValidationError("type", fmt.Sprintf("invalid asset type %q", a.Type))
	}
	if !a.Category.Valid() {
		return NewValidationError("category", fmt.Sprintf("invalid asset category %q", a.Category))
	}
	if err := validateCurrency(a.Currency); err != nil {
		return err
	}
	if !a.CurrentValue.Valid && !a.AcquisitionValue.Valid {
		return NewValidationError("currentValue", "either current value or acquisition value must be set")
	}
	return a.ValidateAmounts()
}

// ValidateAmounts rejects negative decimals on the asset and its history
func (a *Asset) ValidateAmounts() error {
	if a.CurrentValue.Valid && a.CurrentValue.Decimal.IsNegative() {
		return NewValidationError("currentValue", "current value must not be negative")
	}
	if a.AcquisitionValue.Valid && a.AcquisitionValue.Decimal.IsNegative() {
		return NewValidationError("acquisitionValue", "acquisition value must not be negative")
	}
	for i := range a.ValuationHistory {
		if a.ValuationHistory[i].Value.IsNegative() {
			return NewValidationError("valuationHistory", "valuation value must not be negative")
		}
	}
	return nil
}

// LatestValuation returns the valuation with the greatest date
func (a *Asset) LatestValuation() (*Valuation, bool) {
	var latest *Valuation
	for i := range a.ValuationHistory {
		v := &a.ValuationHistory[i]
		// >= so that, among equal dates, the last appended wins
		if latest == nil || !v.ValuationDate.Before(latest.ValuationDate) {
			latest = v
		}
	}
	return latest, latest != nil
}

// ValuationAt returns the valuation with the greatest date at or before t.
// Among records sharing that date the one appended last wins.
func (a *Asset) ValuationAt(t time.Time) (*Valuation, bool) {
	var found *Valuation
	for i := range a.ValuationHistory {
		v := &a.ValuationHistory[i]
		if v.ValuationDate.After(t) {
			continue
		}
		if found == nil || !v.ValuationDate.Before(found.ValuationDate) {
			found = v
		}
	}
	return found, found != nil
}

// ValueAt reconstructs what the asset was worth at t.
// It falls back to the acquisition value once the asset was acquired and
// reports false when the asset has no known value at t.
func (a *Asset) ValueAt(t time.Time) (decimal.Decimal, bool) {
	if v, ok := a.ValuationAt(t); ok {
		return v.Value, true
	}
	if a.AcquisitionDate != nil && !a.AcquisitionDate.After(t) && a.AcquisitionValue.Valid {
		return a.AcquisitionValue.Decimal, true
	}
	return decimal.Zero, false
}

// Clone returns a deep copy of the asset
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	out := *a
	if a.AcquisitionDate != nil {
		d := *a.AcquisitionDate
		out.AcquisitionDate = &d
	}
	if a.LastUpdateDate != nil {
		d := *a.LastUpdateDate
		out.LastUpdateDate = &d
	}
	if a.Attributes != nil {
		out.Attributes = make(map[string]string, len(a.Attributes))
		for k, v := range a.Attributes {
			out.Attributes[k] = v
		}
	}
	if a.ValuationHistory != nil {
		out.ValuationHistory = make([]Valuation, len(a.ValuationHistory))
		copy(out.ValuationHistory, a.ValuationHistory)
	}
	return &out
}

func validateCurrency(code string) error {
	if code == "" {
		return NewValidationError("currency", "currency cannot be empty")
	}
	if money.GetCurrency(code) == nil {
		return NewValidationError("currency", fmt.Sprintf("unknown currency %q", code))
	}
	return nil
}
