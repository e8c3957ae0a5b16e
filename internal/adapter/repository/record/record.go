// Package record defines the storage schema of assets and the explicit
// encode/decode boundary between it and the domain types.
// Decimals travel as canonical strings, enums by symbolic name and
// timestamps as RFC 3339 with nanoseconds in UTC.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/patrimony-backend/internal/domain"
)

// Asset is the stored shape of a domain.Asset without its history
type Asset struct {
	ID               string
	OwnerID          string
	Name             string
	Description      string
	Type             string
	Category         string
	Currency         string
	CurrentValue     *string
	AcquisitionValue *string
	AcquisitionDate  *string
	LastUpdateDate   *string
	Attributes       string // JSON object
	Version          int64
}

// Valuation is the stored shape of a domain.Valuation
type Valuation struct {
	ID            string
	AssetID       string
	Position      int // index in the asset's history
	Value         string
	ValuationDate string
	Currency      string
	Source        string
}

// EncodeAsset converts a domain asset into its stored rows
func EncodeAsset(a *domain.Asset) (Asset, []Valuation, error) {
	attrs := a.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrJSON, err := json.Marshal(attrs)
	if err != nil {
		return Asset{}, nil, fmt.Errorf("failed to encode attributes: %w", err)
	}

	rec := Asset{
		ID:               a.ID,
		OwnerID:          a.OwnerID,
		Name:             a.Name,
		Description:      a.Description,
		Type:             string(a.Type),
		Category:         string(a.Category),
		Currency:         a.Currency,
		CurrentValue:     encodeNullDecimal(a.CurrentValue),
		AcquisitionValue: encodeNullDecimal(a.AcquisitionValue),
		AcquisitionDate:  encodeTimePtr(a.AcquisitionDate),
		LastUpdateDate:   encodeTimePtr(a.LastUpdateDate),
		Attributes:       string(attrJSON),
		Version:          a.Version,
	}

	vals := make([]Valuation, 0, len(a.ValuationHistory))
	for i, v := range a.ValuationHistory {
		assetID := v.AssetID
		if assetID == "" {
			assetID = a.ID
		}
		vals = append(vals, Valuation{
			ID:            v.ID,
			AssetID:       assetID,
			Position:      i,
			Value:         v.Value.String(),
			ValuationDate: EncodeTime(v.ValuationDate),
			Currency:      v.Currency,
			Source:        v.Source,
		})
	}
	return rec, vals, nil
}

// DecodeAsset rebuilds a domain asset from its stored rows.
// vals must already be in position order.
func DecodeAsset(rec Asset, vals []Valuation) (*domain.Asset, error) {
	typ, err := domain.ParseAssetType(rec.Type)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseAssetCategory(rec.Category)
	if err != nil {
		return nil, err
	}

	a := &domain.Asset{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Name:        rec.Name,
		Description: rec.Description,
		Type:        typ,
		Category:    category,
		Currency:    rec.Currency,
		Version:     rec.Version,
	}

	if a.CurrentValue, err = decodeNullDecimal(rec.CurrentValue); err != nil {
		return nil, fmt.Errorf("failed to parse current_value: %w", err)
	}
	if a.AcquisitionValue, err = decodeNullDecimal(rec.AcquisitionValue); err != nil {
		return nil, fmt.Errorf("failed to parse acquisition_value: %w", err)
	}
	if a.AcquisitionDate, err = decodeTimePtr(rec.AcquisitionDate); err != nil {
		return nil, fmt.Errorf("failed to parse acquisition_date: %w", err)
	}
	if a.LastUpdateDate, err = decodeTimePtr(rec.LastUpdateDate); err != nil {
		return nil, fmt.Errorf("failed to parse last_update_date: %w", err)
	}

	a.Attributes = map[string]string{}
	if rec.Attributes != "" {
		if err := json.Unmarshal([]byte(rec.Attributes), &a.Attributes); err != nil {
			return nil, fmt.Errorf("failed to parse attributes: %w", err)
		}
	}

	a.ValuationHistory = make([]domain.Valuation, 0, len(vals))
	for _, v := range vals {
		value, err := decimal.NewFromString(v.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse valuation value: %w", err)
		}
		date, err := DecodeTime(v.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse valuation_date: %w", err)
		}
		a.ValuationHistory = append(a.ValuationHistory, domain.Valuation{
			ID:            v.ID,
			AssetID:       v.AssetID,
			Value:         value,
			ValuationDate: date,
			Currency:      v.Currency,
			Source:        v.Source,
		})
	}

	return a, nil
}

// EncodeTime formats t in the storage timestamp format
func EncodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeTime parses a storage timestamp
func DecodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encodeNullDecimal(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func decodeNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func encodeTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := EncodeTime(*t)
	return &s
}

func decodeTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := DecodeTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
