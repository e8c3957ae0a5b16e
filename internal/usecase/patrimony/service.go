package patrimony

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/metrics"
)

// PatrimonyService derives net worth figures from an owner's assets.
// Every operation reads the owner's assets once and computes on that snapshot.
type PatrimonyService struct {
	AssetRepo domain.AssetRepository
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Now       func() time.Time
}

// NewPatrimonyService creates a new PatrimonyService instance
func NewPatrimonyService(assetRepo domain.AssetRepository, m *metrics.Metrics, log zerolog.Logger) *PatrimonyService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &PatrimonyService{
		AssetRepo: assetRepo,
		Metrics:   m,
		Log:       log.With().Str("component", "patrimony").Logger(),
		Now:       time.Now,
	}
}

// GetNetWorth calculates the total net worth
// Logic:
//   - Total assets: sum of current values outside the LIABILITY category
//   - Total liabilities: sum of current values in the LIABILITY category
//   - Net worth: total assets - total liabilities
func (s *PatrimonyService) GetNetWorth(ctx context.Context, ownerID string) (res *NetWorthResult, err error) {
	defer s.observe("net_worth", &err)

	assets, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := CalculateNetWorth(assets, s.Now())
	return &result, nil
}

// GetDistribution calculates amounts and percentages by category and type
func (s *PatrimonyService) GetDistribution(ctx context.Context, ownerID string) (res *DistributionResult, err error) {
	defer s.observe("distribution", &err)

	assets, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := CalculateDistribution(assets, s.Now())
	return &result, nil
}

// GetEvolution reconstructs net worth over [start, end]
// Logic:
//   - end defaults to now, start to one year before end
//   - observation dates are every valuation and acquisition date in (start, end], plus start and end
//   - at each date an asset contributes its latest valuation at or before it,
//     else its acquisition value once acquired, else nothing
func (s *PatrimonyService) GetEvolution(ctx context.Context, ownerID string, start, end *time.Time) (res *EvolutionResult, err error) {
	defer s.observe("evolution", &err)

	endDate := s.Now()
	if end != nil {
		endDate = *end
	}
	startDate := endDate.AddDate(-1, 0, 0)
	if start != nil {
		startDate = *start
	}
	if startDate.After(endDate) {
		return nil, domain.NewValidationError("startDate", fmt.Sprintf(
			"start date %s is after end date %s", startDate.Format(time.RFC3339), endDate.Format(time.RFC3339)))
	}

	assets, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := CalculateEvolution(assets, startDate, endDate)
	s.Metrics.EvolutionPoints.Observe(float64(len(result.Points)))

	s.Log.Debug().
		Str("owner_id", ownerID).
		Time("start", startDate).
		Time("end", endDate).
		Int("points", len(result.Points)).
		Msg("evolution computed")

	return &result, nil
}

// GetSummary counts and totals the owner's assets
func (s *PatrimonyService) GetSummary(ctx context.Context, ownerID string) (res *SummaryResult, err error) {
	defer s.observe("summary", &err)

	assets, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := CalculateSummary(assets)
	return &result, nil
}

func (s *PatrimonyService) snapshot(ctx context.Context, ownerID string) ([]*domain.Asset, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("ownerId", "owner id is required")
	}
	assets, err := s.AssetRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets of owner %s: %w", ownerID, err)
	}
	return assets, nil
}

func (s *PatrimonyService) observe(kind string, err *error) {
	s.Metrics.AggregationsTotal.WithLabelValues(kind, metrics.Result(*err)).Inc()
}
