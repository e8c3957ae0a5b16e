package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/repotest"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

func TestAssetRepository_Contract(t *testing.T) {
	repotest.RunAssetRepositoryContract(t, func(t *testing.T) domain.AssetRepository {
		return NewAssetRepository()
	})
}

func TestAssetRepository_SaveHonoursCancelledContext(t *testing.T) {
	repo := NewAssetRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Save(ctx, repotest.NewAsset("owner-1", "Checking", 100))

	var pe *domain.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.Canceled)
}
