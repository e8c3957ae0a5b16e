package domain

import (
	"context"
)

// AssetRepository defines the interface for asset persistence operations.
// Implementations return copies: mutating a returned asset never changes stored state.
type AssetRepository interface {
	// Save inserts the asset when its ID is empty, assigning an ID and version 1.
	// Otherwise it overwrites the stored asset if the stored version equals
	// asset.Version, returning ErrVersionConflict when it does not.
	// Valuations already stored are never rewritten.
	Save(ctx context.Context, asset *Asset) (*Asset, error)

	// FindByID retrieves an asset with its history, or ErrAssetNotFound
	FindByID(ctx context.Context, id string) (*Asset, error)

	// FindByOwner retrieves every asset of an owner with their histories
	FindByOwner(ctx context.Context, ownerID string) ([]*Asset, error)

	// DeleteByID removes an asset and its history. Deleting an unknown id is a no-op.
	DeleteByID(ctx context.Context, id string) error
}
