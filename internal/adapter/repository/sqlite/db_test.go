package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/repotest"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

func newTestRepo(t *testing.T) domain.AssetRepository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAssetRepository(db)
}

func TestAssetRepository_Contract(t *testing.T) {
	repotest.RunAssetRepositoryContract(t, newTestRepo)
}

func TestOpen_MigrationIsIdempotent(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, migrate(db))
}

func TestAssetRepository_StoresDecimalsAsCanonicalText(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	repo := NewAssetRepository(db)

	saved, err := repo.Save(context.Background(), repotest.NewAsset("owner-1", "Checking", 1250))
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT current_value FROM assets WHERE id = ?`, saved.ID).Scan(&stored))
	assert.Equal(t, "1250", stored)

	var category string
	require.NoError(t, db.QueryRow(`SELECT category FROM assets WHERE id = ?`, saved.ID).Scan(&category))
	assert.Equal(t, "LIQUID", category)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}))
	assert.False(t, isUniqueViolation(errors.New("disk full")))
}
