// Package memory provides an in-process Asset Store. Assets are kept in
// their encoded storage form so every read hands out a fresh copy.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/patrimony-backend/internal/adapter/repository/record"
	"github.com/simaogato/patrimony-backend/internal/domain"
)

type storedAsset struct {
	asset      record.Asset
	valuations []record.Valuation
	seq        uint64 // insertion order, keeps FindByOwner stable
}

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	mu     sync.RWMutex
	assets map[string]*storedAsset
	seq    uint64
}

// NewAssetRepository creates an empty in-memory asset repository
func NewAssetRepository() domain.AssetRepository {
	return &assetRepository{assets: make(map[string]*storedAsset)}
}

// Save inserts or compare-and-swaps an asset
func (r *assetRepository) Save(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewPersistenceError("save asset", err)
	}

	toStore := asset.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *storedAsset
	if toStore.ID == "" {
		toStore.ID = uuid.NewString()
		toStore.Version = 1
	} else {
		previous = r.assets[toStore.ID]
		if previous == nil || previous.asset.Version != toStore.Version {
			return nil, fmt.Errorf("save asset %s: %w", toStore.ID, domain.ErrVersionConflict)
		}
		toStore.Version++
	}

	rec, vals, err := record.EncodeAsset(toStore)
	if err != nil {
		return nil, domain.NewPersistenceError("encode asset", err)
	}

	if previous != nil {
		// Valuations already stored are never rewritten, new ones go after them
		stored := make(map[string]bool, len(previous.valuations))
		merged := make([]record.Valuation, len(previous.valuations), len(previous.valuations)+len(vals))
		copy(merged, previous.valuations)
		for _, v := range previous.valuations {
			stored[v.ID] = true
		}
		for _, v := range vals {
			if stored[v.ID] {
				continue
			}
			v.Position = len(merged)
			merged = append(merged, v)
		}
		vals = merged
	}

	entry := &storedAsset{asset: rec, valuations: vals}
	if previous != nil {
		entry.seq = previous.seq
	} else {
		r.seq++
		entry.seq = r.seq
	}
	r.assets[rec.ID] = entry

	return decode(entry)
}

// FindByID retrieves an asset by its ID
func (r *assetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
	}
	return decode(entry)
}

// FindByOwner retrieves every asset of an owner in insertion order
func (r *assetRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	r.mu.RLock()
	entries := make([]*storedAsset, 0)
	for _, entry := range r.assets {
		if entry.asset.OwnerID == ownerID {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	assets := make([]*domain.Asset, 0, len(entries))
	for _, entry := range entries {
		a, err := decode(entry)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// DeleteByID removes an asset and its history
func (r *assetRepository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assets, id)
	return nil
}

func decode(entry *storedAsset) (*domain.Asset, error) {
	a, err := record.DecodeAsset(entry.asset, entry.valuations)
	if err != nil {
		return nil, domain.NewPersistenceError("decode asset", err)
	}
	return a, nil
}
