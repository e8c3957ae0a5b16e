package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/metrics"
)

// AssetService handles asset lifecycle operations and keeps each asset's
// valuation history consistent with its current value
type AssetService struct {
	AssetRepo domain.AssetRepository
	Metrics   *metrics.Metrics
	Log       zerolog.Logger

	// Now and NewID are replaceable for deterministic tests
	Now   func() time.Time
	NewID func() string

	locks *keyedMutex
}

// NewAssetService creates a new AssetService instance
func NewAssetService(assetRepo domain.AssetRepository, m *metrics.Metrics, log zerolog.Logger) *AssetService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &AssetService{
		AssetRepo: assetRepo,
		Metrics:   m,
		Log:       log.With().Str("component", "lifecycle").Logger(),
		Now:       time.Now,
		NewID:     func() string { return uuid.NewString() },
		locks:     newKeyedMutex(),
	}
}

// Create persists a new asset
// Logic:
//   - acquisition and last update dates default to now
//   - a missing current value is taken from the acquisition value
//   - an "Initial" valuation dated at the last update date is appended whenever
//     the current value is not already the latest history entry
//   - the store assigns the asset id, valuations are attributed to it on save
func (s *AssetService) Create(ctx context.Context, input *domain.Asset) (out *domain.Asset, err error) {
	defer s.observe("create", &err)

	if input == nil {
		return nil, domain.NewValidationError("asset", "asset is required")
	}
	if input.ID != "" {
		return nil, domain.NewValidationError("id", "a new asset must not carry an id")
	}

	asset := input.Clone()
	asset.Currency = normalizeCurrency(asset.Currency)
	asset.Version = 0

	now := s.Now()
	if asset.AcquisitionDate == nil {
		asset.AcquisitionDate = &now
	}
	if asset.LastUpdateDate == nil {
		asset.LastUpdateDate = &now
	}
	if !asset.CurrentValue.Valid && asset.AcquisitionValue.Valid {
		asset.CurrentValue = asset.AcquisitionValue
	}

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	// Caller supplied history is kept but identifiers are ours
	for i := range asset.ValuationHistory {
		v := &asset.ValuationHistory[i]
		v.ID = s.NewID()
		v.AssetID = ""
		if v.Currency == "" {
			v.Currency = asset.Currency
		}
	}

	latest, hasHistory := asset.LatestValuation()
	if asset.CurrentValue.Valid && (!hasHistory || !latest.Value.Equal(asset.CurrentValue.Decimal)) {
		date := *asset.LastUpdateDate
		if hasHistory && latest.ValuationDate.After(date) {
			// never older than the history it supersedes
			date = latest.ValuationDate
		}
		asset.ValuationHistory = append(asset.ValuationHistory, domain.Valuation{
			ID:            s.NewID(),
			Value:         asset.CurrentValue.Decimal,
			ValuationDate: date,
			Currency:      asset.Currency,
			Source:        domain.SourceInitial,
		})
		s.Metrics.ValuationsAppendedTotal.WithLabelValues(domain.SourceInitial).Inc()
	}

	saved, err := s.AssetRepo.Save(ctx, asset)
	if err != nil {
		return nil, err
	}

	for i := range saved.ValuationHistory {
		if saved.ValuationHistory[i].AssetID == "" {
			saved.ValuationHistory[i].AssetID = saved.ID
		}
	}

	s.Log.Info().
		Str("asset_id", saved.ID).
		Str("owner_id", saved.OwnerID).
		Str("category", string(saved.Category)).
		Int("valuations", len(saved.ValuationHistory)).
		Msg("asset created")

	return saved, nil
}

// Get retrieves an asset by id
func (s *AssetService) Get(ctx context.Context, id string) (*domain.Asset, error) {
	return s.AssetRepo.FindByID(ctx, id)
}

// List retrieves every asset of an owner
func (s *AssetService) List(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	return s.AssetRepo.FindByOwner(ctx, ownerID)
}

// Update overwrites an existing asset with the caller's fields
// Logic:
//   - the caller's valuation history is discarded, the stored history is kept
//   - owner and acquisition date (when omitted) are kept from the stored asset
//   - a changed, non-null current value appends a "Manual Update" valuation dated now
//   - last update date is set to now
func (s *AssetService) Update(ctx context.Context, input *domain.Asset) (out *domain.Asset, err error) {
	defer s.observe("update", &err)

	if input == nil || input.ID == "" {
		return nil, domain.NewValidationError("id", "asset id is required")
	}

	asset := input.Clone()
	asset.Currency = normalizeCurrency(asset.Currency)
	asset.ValuationHistory = nil
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(asset.ID)
	defer unlock()

	existing, err := s.AssetRepo.FindByID(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	asset.OwnerID = existing.OwnerID
	asset.Version = existing.Version
	asset.ValuationHistory = existing.ValuationHistory
	if asset.AcquisitionDate == nil {
		asset.AcquisitionDate = existing.AcquisitionDate
	}

	now := s.Now()
	if valueChanged(existing.CurrentValue, asset.CurrentValue) && asset.CurrentValue.Valid {
		asset.ValuationHistory = append(asset.ValuationHistory, domain.Valuation{
			ID:            s.NewID(),
			AssetID:       asset.ID,
			Value:         asset.CurrentValue.Decimal,
			ValuationDate: now,
			Currency:      asset.Currency,
			Source:        domain.SourceManualUpdate,
		})
		s.Metrics.ValuationsAppendedTotal.WithLabelValues(domain.SourceManualUpdate).Inc()
	}
	asset.LastUpdateDate = &now

	saved, err := s.AssetRepo.Save(ctx, asset)
	if err != nil {
		return nil, err
	}

	s.Log.Debug().
		Str("asset_id", saved.ID).
		Int64("version", saved.Version).
		Int("valuations", len(saved.ValuationHistory)).
		Msg("asset updated")

	return saved, nil
}

// AddValuation appends a caller-provided valuation to an asset's history
// Logic:
//   - the valuation gets a fresh id and the asset's id
//   - date defaults to now, source to "Manual", currency to the asset currency
//   - current value and last update date follow the chronologically latest
//     valuation, so a back-dated valuation never overrides a newer one
func (s *AssetService) AddValuation(ctx context.Context, assetID string, valuation domain.Valuation) (out *domain.Asset, err error) {
	defer s.observe("add_valuation", &err)

	if assetID == "" {
		return nil, domain.NewValidationError("id", "asset id is required")
	}
	valuation.Currency = normalizeCurrency(valuation.Currency)
	if err := valuation.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(assetID)
	defer unlock()

	asset, err := s.AssetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	valuation.ID = s.NewID()
	valuation.AssetID = assetID
	if valuation.ValuationDate.IsZero() {
		valuation.ValuationDate = s.Now()
	}
	if valuation.Source == "" {
		valuation.Source = domain.SourceManual
	}
	if valuation.Currency == "" {
		valuation.Currency = asset.Currency
	}

	asset.ValuationHistory = append(asset.ValuationHistory, valuation)
	latest, _ := asset.LatestValuation()
	asset.CurrentValue = decimal.NewNullDecimal(latest.Value)
	latestDate := latest.ValuationDate
	asset.LastUpdateDate = &latestDate

	saved, err := s.AssetRepo.Save(ctx, asset)
	if err != nil {
		return nil, err
	}
	s.Metrics.ValuationsAppendedTotal.WithLabelValues(valuation.Source).Inc()

	s.Log.Debug().
		Str("asset_id", saved.ID).
		Str("valuation_id", valuation.ID).
		Str("value", valuation.Value.String()).
		Time("valuation_date", valuation.ValuationDate).
		Msg("valuation added")

	return saved, nil
}

// Delete removes an asset together with its valuation history
func (s *AssetService) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", &err)

	if id == "" {
		return domain.NewValidationError("id", "asset id is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.AssetRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.Log.Info().Str("asset_id", id).Msg("asset deleted")
	return nil
}

// AssetsByCategory groups an owner's assets by category
func (s *AssetService) AssetsByCategory(ctx context.Context, ownerID string) (map[domain.AssetCategory][]*domain.Asset, error) {
	assets, err := s.AssetRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.AssetCategory][]*domain.Asset)
	for _, a := range assets {
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	return grouped, nil
}

// AssetsByType groups an owner's assets by type
func (s *AssetService) AssetsByType(ctx context.Context, ownerID string) (map[domain.AssetType][]*domain.Asset, error) {
	assets, err := s.AssetRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[domain.AssetType][]*domain.Asset)
	for _, a := range assets {
		grouped[a.Type] = append(grouped[a.Type], a)
	}
	return grouped, nil
}

func (s *AssetService) observe(op string, err *error) {
	s.Metrics.LifecycleOpsTotal.WithLabelValues(op, metrics.Result(*err)).Inc()
}

// valueChanged treats null-vs-null as unchanged and null-vs-present as changed
func valueChanged(before, after decimal.NullDecimal) bool {
	if before.Valid != after.Valid {
		return true
	}
	if !before.Valid {
		return false
	}
	return !before.Decimal.Equal(after.Decimal)
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
