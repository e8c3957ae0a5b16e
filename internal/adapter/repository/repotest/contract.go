// Package repotest holds the behaviour every domain.AssetRepository must show.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/patrimony-backend/internal/domain"
)

// Factory returns an empty repository for one subtest
type Factory func(t *testing.T) domain.AssetRepository

// NewAsset builds a valid, unsaved asset for owner
func NewAsset(owner, name string, value int64) *domain.Asset {
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Asset{
		OwnerID:         owner,
		Name:            name,
		Type:            domain.AssetTypeBankAccount,
		Category:        domain.AssetCategoryLiquid,
		Currency:        "EUR",
		CurrentValue:    decimal.NewNullDecimal(decimal.NewFromInt(value)),
		AcquisitionDate: &date,
		LastUpdateDate:  &date,
		Attributes:      map[string]string{"bank": "ACME"},
		ValuationHistory: []domain.Valuation{
			{ID: name + "-v1", Value: decimal.NewFromInt(value), ValuationDate: date, Currency: "EUR", Source: domain.SourceInitial},
		},
	}
}

// RunAssetRepositoryContract runs the shared store behaviour against newRepo
func RunAssetRepositoryContract(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("Save assigns id and version", func(t *testing.T) {
		repo := newRepo(t)

		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, int64(1), saved.Version)
		require.Len(t, saved.ValuationHistory, 1)
		assert.Equal(t, saved.ID, saved.ValuationHistory[0].AssetID)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Checking", found.Name)
		assert.Equal(t, "ACME", found.Attributes["bank"])
		assert.True(t, found.CurrentValue.Decimal.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, saved.ID, found.ValuationHistory[0].AssetID)
	})

	t.Run("Decimals round trip at full precision", func(t *testing.T) {
		repo := newRepo(t)
		asset := NewAsset("owner-1", "Precise", 0)
		precise := decimal.RequireFromString("98765432109876543210.123456789012345678")
		asset.CurrentValue = decimal.NewNullDecimal(precise)
		asset.ValuationHistory[0].Value = precise

		saved, err := repo.Save(ctx, asset)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, precise.String(), found.CurrentValue.Decimal.String())
		assert.Equal(t, precise.String(), found.ValuationHistory[0].Value.String())
	})

	t.Run("FindByID unknown returns not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("Save with stale version conflicts", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)

		first := saved.Clone()
		first.Name = "First"
		updated, err := repo.Save(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)

		stale := saved.Clone()
		stale.Name = "Stale"
		_, err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "First", found.Name)
	})

	t.Run("Save of deleted asset conflicts", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)
		require.NoError(t, repo.DeleteByID(ctx, saved.ID))

		_, err = repo.Save(ctx, saved)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})

	t.Run("History keeps append order and stored rows", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)

		// Appended out of date order on purpose
		saved.ValuationHistory = append(saved.ValuationHistory,
			domain.Valuation{ID: "late", AssetID: saved.ID, Value: decimal.NewFromInt(300), ValuationDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Currency: "EUR", Source: "Manual"},
			domain.Valuation{ID: "early", AssetID: saved.ID, Value: decimal.NewFromInt(50), ValuationDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Currency: "EUR", Source: "Manual"},
		)
		// A caller cannot rewrite a stored valuation
		saved.ValuationHistory[0].Value = decimal.NewFromInt(999)

		_, err = repo.Save(ctx, saved)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.Len(t, found.ValuationHistory, 3)
		assert.Equal(t, "late", found.ValuationHistory[1].ID)
		assert.Equal(t, "early", found.ValuationHistory[2].ID)
		assert.True(t, found.ValuationHistory[0].Value.Equal(decimal.NewFromInt(100)))
	})

	t.Run("FindByOwner isolates owners", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Save(ctx, NewAsset("owner-1", "A", 1))
		require.NoError(t, err)
		_, err = repo.Save(ctx, NewAsset("owner-1", "B", 2))
		require.NoError(t, err)
		_, err = repo.Save(ctx, NewAsset("owner-2", "C", 3))
		require.NoError(t, err)

		assets, err := repo.FindByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, assets, 2)
		names := []string{assets[0].Name, assets[1].Name}
		assert.ElementsMatch(t, []string{"A", "B"}, names)
		for _, a := range assets {
			assert.Len(t, a.ValuationHistory, 1)
		}

		none, err := repo.FindByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Delete removes asset and history", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, saved.ID))
		_, err = repo.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)

		assert.NoError(t, repo.DeleteByID(ctx, saved.ID), "deleting twice is a no-op")
	})

	t.Run("Returned assets are copies", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)

		saved.Attributes["bank"] = "mutated"
		saved.ValuationHistory[0].Source = "mutated"

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACME", found.Attributes["bank"])
		assert.Equal(t, domain.SourceInitial, found.ValuationHistory[0].Source)
	})

	t.Run("Concurrent saves of one version let exactly one win", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.Save(ctx, NewAsset("owner-1", "Checking", 100))
		require.NoError(t, err)

		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Save(ctx, saved.Clone())
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		wins := 0
		for err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrVersionConflict)
		}
		assert.Equal(t, 1, wins)
	})
}
