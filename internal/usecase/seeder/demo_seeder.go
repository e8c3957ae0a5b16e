package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/patrimony-backend/internal/domain"
)

// SourceDemo labels the valuations written by the seeder
const SourceDemo = "Demo"

// AssetManager is the part of the lifecycle service the seeder drives
type AssetManager interface {
	List(ctx context.Context, ownerID string) ([]*domain.Asset, error)
	Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	AddValuation(ctx context.Context, assetID string, valuation domain.Valuation) (*domain.Asset, error)
}

// DemoPoint is a past valuation, monthsAgo months before the seeding time
type DemoPoint struct {
	MonthsAgo int
	Value     string
}

// DemoAsset defines an asset of the demo portfolio
type DemoAsset struct {
	Name              string
	Type              domain.AssetType
	Category          domain.AssetCategory
	AcquiredMonthsAgo int
	AcquisitionValue  string

	// History is applied oldest first after creation; the last point becomes the current value
	History []DemoPoint
}

// DemoPortfolio is what Seed creates for an empty owner
var DemoPortfolio = []DemoAsset{
	{
		Name:              "Checking Account",
		Type:              domain.AssetTypeBankAccount,
		Category:          domain.AssetCategoryLiquid,
		AcquiredMonthsAgo: 24,
		AcquisitionValue:  "2500",
		History:           []DemoPoint{{9, "3100"}, {3, "2800"}, {0, "3400.50"}},
	},
	{
		Name:              "World ETF",
		Type:              domain.AssetTypeETF,
		Category:          domain.AssetCategoryInvestment,
		AcquiredMonthsAgo: 18,
		AcquisitionValue:  "10000",
		History:           []DemoPoint{{12, "10450"}, {6, "11200"}, {1, "12125.75"}},
	},
	{
		Name:              "Apartment",
		Type:              domain.AssetTypeRealEstate,
		Category:          domain.AssetCategoryTangible,
		AcquiredMonthsAgo: 36,
		AcquisitionValue:  "240000",
		History:           []DemoPoint{{12, "246000"}},
	},
	{
		Name:              "Mortgage",
		Type:              domain.AssetTypeLoan,
		Category:          domain.AssetCategoryLiability,
		AcquiredMonthsAgo: 36,
		AcquisitionValue:  "200000",
		History:           []DemoPoint{{12, "191500"}, {0, "184200"}},
	},
}

// DemoSeeder fills an owner's empty portfolio with DemoPortfolio
type DemoSeeder struct {
	assets AssetManager
	log    zerolog.Logger
	now    func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(assets AssetManager, log zerolog.Logger) *DemoSeeder {
	return &DemoSeeder{
		assets: assets,
		log:    log.With().Str("component", "seeder").Logger(),
		now:    time.Now,
	}
}

// Seed creates the demo portfolio for ownerID unless the owner already has assets.
// It returns the number of assets created.
func (s *DemoSeeder) Seed(ctx context.Context, ownerID string) (int, error) {
	existing, err := s.assets.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		s.log.Debug().Str("owner_id", ownerID).Int("assets", len(existing)).Msg("owner already has assets, skipping demo seed")
		return 0, nil
	}

	now := s.now()
	for _, demo := range DemoPortfolio {
		acquired := now.AddDate(0, -demo.AcquiredMonthsAgo, 0)
		acquisitionValue, err := decimal.NewFromString(demo.AcquisitionValue)
		if err != nil {
			return 0, fmt.Errorf("demo asset %s: %w", demo.Name, err)
		}

		asset := &domain.Asset{
			OwnerID:          ownerID,
			Name:             demo.Name,
			Type:             demo.Type,
			Category:         demo.Category,
			Currency:         "EUR",
			AcquisitionValue: decimal.NewNullDecimal(acquisitionValue),
			AcquisitionDate:  &acquired,
			LastUpdateDate:   &acquired,
			Attributes:       map[string]string{"demo": "true"},
		}

		created, err := s.assets.Create(ctx, asset)
		if err != nil {
			return 0, fmt.Errorf("failed to create demo asset %s: %w", demo.Name, err)
		}

		for _, point := range demo.History {
			value, err := decimal.NewFromString(point.Value)
			if err != nil {
				return 0, fmt.Errorf("demo asset %s: %w", demo.Name, err)
			}
			_, err = s.assets.AddValuation(ctx, created.ID, domain.Valuation{
				Value:         value,
				ValuationDate: now.AddDate(0, -point.MonthsAgo, 0),
				Source:        SourceDemo,
			})
			if err != nil {
				return 0, fmt.Errorf("failed to value demo asset %s: %w", demo.Name, err)
			}
		}
	}

	s.log.Info().Str("owner_id", ownerID).Int("assets", len(DemoPortfolio)).Msg("demo portfolio seeded")
	return len(DemoPortfolio), nil
}
