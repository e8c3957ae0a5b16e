package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullDec(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestAsset_Validate(t *testing.T) {
	valid := func() Asset {
		return Asset{
			OwnerID:      "owner-1",
			Name:         "Checking",
			Type:         AssetTypeBankAccount,
			Category:     AssetCategoryLiquid,
			Currency:     "EUR",
			CurrentValue: nullDec(100),
		}
	}

	tests := []struct {
		name    string
		mutate  func(a *Asset)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "Complete asset should pass",
			mutate: func(a *Asset) {},
		},
		{
			name: "Acquisition value alone should pass",
			mutate: func(a *Asset) {
				a.CurrentValue = decimal.NullDecimal{}
				a.AcquisitionValue = nullDec(50)
			},
		},
		{
			name:    "Empty name should fail",
			mutate:  func(a *Asset) { a.Name = "" },
			wantErr: true,
			errMsg:  "asset name cannot be empty",
		},
		{
			name:    "Unknown type should fail",
			mutate:  func(a *Asset) { a.Type = "YACHT" },
			wantErr: true,
			errMsg:  "invalid asset type",
		},
		{
			name:    "Missing category should fail",
			mutate:  func(a *Asset) { a.Category = "" },
			wantErr: true,
			errMsg:  "invalid asset category",
		},
		{
			name:    "Unknown currency should fail",
			mutate:  func(a *Asset) { a.Currency = "ZZZ" },
			wantErr: true,
			errMsg:  "unknown currency",
		},
		{
			name:    "No value at all should fail",
			mutate:  func(a *Asset) { a.CurrentValue = decimal.NullDecimal{} },
			wantErr: true,
			errMsg:  "either current value or acquisition value must be set",
		},
		{
			name:    "Negative current value should fail",
			mutate:  func(a *Asset) { a.CurrentValue = nullDec(-1) },
			wantErr: true,
			errMsg:  "current value must not be negative",
		},
		{
			name:    "Negative acquisition value should fail",
			mutate:  func(a *Asset) { a.AcquisitionValue = nullDec(-10) },
			wantErr: true,
			errMsg:  "acquisition value must not be negative",
		},
		{
			name: "Zero current value should pass",
			mutate: func(a *Asset) {
				a.CurrentValue = decimal.NewNullDecimal(decimal.Zero)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsValidationError(err))
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssetCategory_SideCoversEveryCategory(t *testing.T) {
	for _, c := range AllAssetCategories {
		assert.NotEqual(t, SideUnknown, c.Side(), "category %s has no balance side", c)
	}
	assert.True(t, AssetCategoryLiability.IsLiability())
	assert.False(t, AssetCategoryLiquid.IsLiability())
	assert.False(t, AssetCategory("BOGUS").Valid())
}

func TestParseEnums(t *testing.T) {
	for _, typ := range AllAssetTypes {
		parsed, err := ParseAssetType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	_, err := ParseAssetType("stock")
	assert.Error(t, err)

	c, err := ParseAssetCategory("LIABILITY")
	require.NoError(t, err)
	assert.Equal(t, AssetCategoryLiability, c)
	_, err = ParseAssetCategory("")
	assert.Error(t, err)
}

func TestAsset_ValuationAt(t *testing.T) {
	asset := Asset{
		ValuationHistory: []Valuation{
			{ID: "june", Value: decimal.NewFromInt(150), ValuationDate: day(2024, 6, 1)},
			{ID: "jan", Value: decimal.NewFromInt(100), ValuationDate: day(2024, 1, 1)},
			{ID: "june-late-insert", Value: decimal.NewFromInt(160), ValuationDate: day(2024, 6, 1)},
			{ID: "march", Value: decimal.NewFromInt(120), ValuationDate: day(2024, 3, 1)},
		},
	}

	t.Run("Before any valuation", func(t *testing.T) {
		_, ok := asset.ValuationAt(day(2023, 12, 31))
		assert.False(t, ok)
	})

	t.Run("Exact date is inclusive", func(t *testing.T) {
		v, ok := asset.ValuationAt(day(2024, 3, 1))
		require.True(t, ok)
		assert.Equal(t, "march", v.ID)
	})

	t.Run("Out of order history is scanned for the max date", func(t *testing.T) {
		v, ok := asset.ValuationAt(day(2024, 5, 31))
		require.True(t, ok)
		assert.Equal(t, "march", v.ID)
	})

	t.Run("Equal dates resolve to the last appended", func(t *testing.T) {
		v, ok := asset.ValuationAt(day(2024, 12, 1))
		require.True(t, ok)
		assert.Equal(t, "june-late-insert", v.ID)

		latest, ok := asset.LatestValuation()
		require.True(t, ok)
		assert.Equal(t, "june-late-insert", latest.ID)
	})
}

func TestAsset_ValueAt(t *testing.T) {
	acquired := day(2024, 1, 1)

	t.Run("Falls back to acquisition value", func(t *testing.T) {
		asset := Asset{AcquisitionDate: &acquired, AcquisitionValue: nullDec(1000)}
		v, ok := asset.ValueAt(day(2024, 2, 1))
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("Nothing before acquisition", func(t *testing.T) {
		asset := Asset{AcquisitionDate: &acquired, AcquisitionValue: nullDec(1000)}
		_, ok := asset.ValueAt(day(2023, 6, 1))
		assert.False(t, ok)
	})

	t.Run("Valuation wins over acquisition value", func(t *testing.T) {
		asset := Asset{
			AcquisitionDate:  &acquired,
			AcquisitionValue: nullDec(1000),
			ValuationHistory: []Valuation{{Value: decimal.NewFromInt(1100), ValuationDate: day(2024, 1, 15)}},
		}
		v, ok := asset.ValueAt(day(2024, 2, 1))
		require.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(1100)))
	})

	t.Run("No acquisition value means no contribution", func(t *testing.T) {
		asset := Asset{AcquisitionDate: &acquired}
		_, ok := asset.ValueAt(day(2024, 2, 1))
		assert.False(t, ok)
	})
}

func TestAsset_Clone(t *testing.T) {
	acquired := day(2024, 1, 1)
	original := &Asset{
		ID:               "a1",
		AcquisitionDate:  &acquired,
		Attributes:       map[string]string{"iban": "FR76"},
		ValuationHistory: []Valuation{{ID: "v1", Value: decimal.NewFromInt(1)}},
	}

	clone := original.Clone()
	clone.Attributes["iban"] = "changed"
	clone.ValuationHistory[0].ID = "changed"
	*clone.AcquisitionDate = day(2030, 1, 1)

	assert.Equal(t, "FR76", original.Attributes["iban"])
	assert.Equal(t, "v1", original.ValuationHistory[0].ID)
	assert.Equal(t, acquired, *original.AcquisitionDate)
}

func TestValuation_Validate(t *testing.T) {
	v := Valuation{Value: decimal.NewFromInt(-5)}
	err := v.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "valuation value must not be negative")

	v = Valuation{Value: decimal.NewFromInt(5), Currency: "USD"}
	assert.NoError(t, v.Validate())

	v = Valuation{Value: decimal.NewFromInt(5), Currency: "NOPE"}
	assert.Error(t, v.Validate())
}
